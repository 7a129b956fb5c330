package domain

import (
	"context"
	"time"
)

type HabitRepository interface {
	// Create persists a new habit definition.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// List retrieves all habits, optionally including archived ones.
	List(ctx context.Context, includeArchived bool) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	Update(ctx context.Context, habit *Habit) error

	// Delete permanently removes a habit.
	Delete(ctx context.Context, id string) error

	// GetChanges [SYNC] returns only the deltas occurring after a specific instant.
	GetChanges(ctx context.Context, since time.Time) ([]*Habit, error)

	// UpdateStreaks writes the denormalized streak snapshot.
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type CompletionRepository interface {
	Create(ctx context.Context, completion *Completion) error

	GetByID(ctx context.Context, id string) (*Completion, error)

	// ListByHabitID returns the full, unfiltered history for one habit.
	// Streak computation depends on the history being complete.
	ListByHabitID(ctx context.Context, habitID string) ([]*Completion, error)

	// ListAll returns every completion across all habits.
	ListAll(ctx context.Context) ([]*Completion, error)

	Update(ctx context.Context, completion *Completion) error

	Delete(ctx context.Context, id string) error

	// GetChanges [SYNC] returns only the deltas occurring after a specific instant.
	GetChanges(ctx context.Context, since time.Time) ([]*Completion, error)
}
