package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/cadence-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
)

// failingHabitRepo simulates storage failures so error propagation can be
// asserted without a real backend.
type failingHabitRepo struct {
	err error
}

func (r *failingHabitRepo) Create(ctx context.Context, habit *domain.Habit) error { return r.err }
func (r *failingHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return nil, r.err
}
func (r *failingHabitRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Habit, error) {
	return nil, r.err
}
func (r *failingHabitRepo) Update(ctx context.Context, habit *domain.Habit) error { return r.err }
func (r *failingHabitRepo) Delete(ctx context.Context, id string) error           { return r.err }
func (r *failingHabitRepo) GetChanges(ctx context.Context, since time.Time) ([]*domain.Habit, error) {
	return nil, r.err
}
func (r *failingHabitRepo) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	return r.err
}

type failingCompletionRepo struct {
	err error
}

func (r *failingCompletionRepo) Create(ctx context.Context, completion *domain.Completion) error {
	return r.err
}
func (r *failingCompletionRepo) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	return nil, r.err
}
func (r *failingCompletionRepo) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error) {
	return nil, r.err
}
func (r *failingCompletionRepo) ListAll(ctx context.Context) ([]*domain.Completion, error) {
	return nil, r.err
}
func (r *failingCompletionRepo) Update(ctx context.Context, completion *domain.Completion) error {
	return r.err
}
func (r *failingCompletionRepo) Delete(ctx context.Context, id string) error { return r.err }
func (r *failingCompletionRepo) GetChanges(ctx context.Context, since time.Time) ([]*domain.Completion, error) {
	return nil, r.err
}

func seedHabit(t *testing.T, repo domain.HabitRepository, name string, tag domain.Tag, rec domain.Recurrence, goal domain.Goal) *domain.Habit {
	t.Helper()
	habit, err := domain.NewHabit(name, tag, rec, goal)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), habit))
	return habit
}

func seedCompletion(t *testing.T, repo domain.CompletionRepository, habitID, date string, completed bool, value int) *domain.Completion {
	t.Helper()
	d, err := domain.ParseDate(date)
	require.NoError(t, err)
	c := domain.NewCompletion(habitID, d, completed, value)
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func newMemoryRepos() (*repository.InMemoryHabitRepository, *repository.InMemoryCompletionRepository) {
	return repository.NewInMemoryHabitRepository(), repository.NewInMemoryCompletionRepository()
}
