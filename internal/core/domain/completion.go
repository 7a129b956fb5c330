package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Completion records one day's outcome for a habit. At most one completion
// may exist per (habit, date); the repositories enforce it and the engine
// fails fast if the invariant is ever violated.
type Completion struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`

	Date      Date   `json:"date" db:"completion_date"`
	Completed bool   `json:"completed" db:"completed"`
	Value     int    `json:"value" db:"value"`
	Notes     string `json:"notes,omitempty" db:"notes"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewCompletion(habitID string, date Date, completed bool, value int) *Completion {
	now := time.Now().UTC()

	return &Completion{
		ID:        uuid.NewString(),
		HabitID:   habitID,
		Date:      date,
		Completed: completed,
		Value:     value,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Completion) Validate() error {
	if strings.TrimSpace(c.HabitID) == "" {
		return ErrHabitNotFound
	}
	if c.Date.IsZero() {
		return ErrInvalidDate
	}
	if c.Value < 0 {
		return ErrNegativeValue
	}
	return nil
}
