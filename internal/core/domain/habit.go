package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxNameLen = 100

// Tag is a closed category for grouping habits in analytics breakdowns.
type Tag string

const (
	TagHealth       Tag = "health"
	TagFitness      Tag = "fitness"
	TagProductivity Tag = "productivity"
	TagLearning     Tag = "learning"
	TagMindfulness  Tag = "mindfulness"
	TagSocial       Tag = "social"
	TagFinance      Tag = "finance"
	TagOther        Tag = "other"
)

var validTags = map[Tag]bool{
	TagHealth:       true,
	TagFitness:      true,
	TagProductivity: true,
	TagLearning:     true,
	TagMindfulness:  true,
	TagSocial:       true,
	TagFinance:      true,
	TagOther:        true,
}

func (t Tag) Valid() bool { return validTags[t] }

type Habit struct {
	ID         string
	Name       string
	Tag        Tag
	Recurrence Recurrence
	Goal       Goal

	// Denormalized snapshot maintained by the streak worker so list views
	// don't recompute over full history.
	CurrentStreak int
	LongestStreak int

	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time
}

func NewHabit(name string, tag Tag, rec Recurrence, goal Goal) (*Habit, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrHabitNameEmpty
	}
	if len(trimmed) > MaxNameLen {
		return nil, ErrHabitNameTooLong
	}

	if tag == "" {
		tag = TagOther
	}
	if !tag.Valid() {
		return nil, ErrInvalidTag
	}

	if rec == nil {
		rec = Daily{}
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	if goal == nil {
		goal = StreakGoal{}
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:         uuid.NewString(),
		Name:       trimmed,
		Tag:        tag,
		Recurrence: rec,
		Goal:       goal,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (h *Habit) IsArchived() bool { return h.ArchivedAt != nil }

func (h *Habit) Update(name string, tag Tag, rec Recurrence, goal Goal) error {
	if h.IsArchived() {
		return ErrHabitArchived
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrHabitNameEmpty
	}
	if len(trimmed) > MaxNameLen {
		return ErrHabitNameTooLong
	}
	if !tag.Valid() {
		return ErrInvalidTag
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := goal.Validate(); err != nil {
		return err
	}

	h.Name = trimmed
	h.Tag = tag
	h.Recurrence = rec
	h.Goal = goal
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) UpdateStreak(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) Archive() {
	if h.IsArchived() {
		return
	}
	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if !h.IsArchived() {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}

type habitJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Tag           Tag             `json:"tag"`
	Recurrence    json.RawMessage `json:"recurrence"`
	Goal          json.RawMessage `json:"goal"`
	CurrentStreak int             `json:"current_streak"`
	LongestStreak int             `json:"longest_streak"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	ArchivedAt    *time.Time      `json:"archived_at,omitempty"`
}

func (h Habit) MarshalJSON() ([]byte, error) {
	rec, err := EncodeRecurrence(h.Recurrence)
	if err != nil {
		return nil, err
	}
	goal, err := EncodeGoal(h.Goal)
	if err != nil {
		return nil, err
	}

	return json.Marshal(habitJSON{
		ID:            h.ID,
		Name:          h.Name,
		Tag:           h.Tag,
		Recurrence:    rec,
		Goal:          goal,
		CurrentStreak: h.CurrentStreak,
		LongestStreak: h.LongestStreak,
		Version:       h.Version,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
		ArchivedAt:    h.ArchivedAt,
	})
}

func (h *Habit) UnmarshalJSON(data []byte) error {
	var env habitJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	rec, err := DecodeRecurrence(env.Recurrence)
	if err != nil {
		return err
	}
	goal, err := DecodeGoal(env.Goal)
	if err != nil {
		return err
	}

	h.ID = env.ID
	h.Name = env.Name
	h.Tag = env.Tag
	h.Recurrence = rec
	h.Goal = goal
	h.CurrentStreak = env.CurrentStreak
	h.LongestStreak = env.LongestStreak
	h.Version = env.Version
	h.CreatedAt = env.CreatedAt
	h.UpdatedAt = env.UpdatedAt
	h.ArchivedAt = env.ArchivedAt

	return nil
}
