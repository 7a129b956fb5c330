package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
)

func newHabit(t *testing.T, name string) *domain.Habit {
	t.Helper()
	habit, err := domain.NewHabit(name, "", nil, nil)
	require.NoError(t, err)
	return habit
}

func TestInMemoryHabitRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: create and fetch returns a copy", func(t *testing.T) {
		repo := NewInMemoryHabitRepository()
		habit := newHabit(t, "Run")
		require.NoError(t, repo.Create(ctx, habit))

		got, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, habit.Name, got.Name)

		// Mutating the returned copy must not leak into the store.
		got.Name = "Hacked"
		again, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, "Run", again.Name)
	})

	t.Run("Fail: duplicate create conflicts", func(t *testing.T) {
		repo := NewInMemoryHabitRepository()
		habit := newHabit(t, "Run")
		require.NoError(t, repo.Create(ctx, habit))
		assert.ErrorIs(t, repo.Create(ctx, habit), domain.ErrHabitConflict)
	})

	t.Run("Success: list filters archived habits", func(t *testing.T) {
		repo := NewInMemoryHabitRepository()
		active := newHabit(t, "Active")
		archived := newHabit(t, "Archived")
		archived.Archive()

		require.NoError(t, repo.Create(ctx, active))
		require.NoError(t, repo.Create(ctx, archived))

		list, err := repo.List(ctx, false)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, active.ID, list[0].ID)

		list, err = repo.List(ctx, true)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("Success: UpdateStreaks touches only the snapshot", func(t *testing.T) {
		repo := NewInMemoryHabitRepository()
		habit := newHabit(t, "Run")
		require.NoError(t, repo.Create(ctx, habit))

		require.NoError(t, repo.UpdateStreaks(ctx, habit.ID, 4, 9))

		got, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.CurrentStreak)
		assert.Equal(t, 9, got.LongestStreak)
		assert.Equal(t, habit.Name, got.Name)
	})

	t.Run("Fail: operations on missing habits", func(t *testing.T) {
		repo := NewInMemoryHabitRepository()

		_, err := repo.GetByID(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "ghost"), domain.ErrHabitNotFound)
		assert.ErrorIs(t, repo.UpdateStreaks(ctx, "ghost", 1, 1), domain.ErrHabitNotFound)
	})
}

func TestInMemoryCompletionRepository(t *testing.T) {
	ctx := context.Background()
	date := domain.NewDate(2023, time.June, 1)

	t.Run("Fail: one completion per habit per day", func(t *testing.T) {
		repo := NewInMemoryCompletionRepository()

		first := domain.NewCompletion("h1", date, true, 0)
		require.NoError(t, repo.Create(ctx, first))

		second := domain.NewCompletion("h1", date, false, 0)
		assert.ErrorIs(t, repo.Create(ctx, second), domain.ErrDuplicateCompletion)

		// A different habit may use the same date.
		other := domain.NewCompletion("h2", date, true, 0)
		assert.NoError(t, repo.Create(ctx, other))
	})

	t.Run("Success: soft delete hides the record and frees the date", func(t *testing.T) {
		repo := NewInMemoryCompletionRepository()
		completion := domain.NewCompletion("h1", date, true, 0)
		require.NoError(t, repo.Create(ctx, completion))

		require.NoError(t, repo.Delete(ctx, completion.ID))

		_, err := repo.GetByID(ctx, completion.ID)
		assert.ErrorIs(t, err, domain.ErrCompletionNotFound)

		list, err := repo.ListByHabitID(ctx, "h1")
		require.NoError(t, err)
		assert.Empty(t, list)

		// The deleted record still surfaces in the sync delta.
		changes, err := repo.GetChanges(ctx, time.Time{})
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.NotNil(t, changes[0].DeletedAt)

		replacement := domain.NewCompletion("h1", date, true, 5)
		assert.NoError(t, repo.Create(ctx, replacement))
	})

	t.Run("Success: ListAll skips deleted records", func(t *testing.T) {
		repo := NewInMemoryCompletionRepository()

		keep := domain.NewCompletion("h1", date, true, 0)
		drop := domain.NewCompletion("h1", date.AddDays(1), true, 0)
		require.NoError(t, repo.Create(ctx, keep))
		require.NoError(t, repo.Create(ctx, drop))
		require.NoError(t, repo.Delete(ctx, drop.ID))

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, keep.ID, all[0].ID)
	})

	t.Run("Fail: update after delete", func(t *testing.T) {
		repo := NewInMemoryCompletionRepository()
		completion := domain.NewCompletion("h1", date, true, 0)
		require.NoError(t, repo.Create(ctx, completion))
		require.NoError(t, repo.Delete(ctx, completion.ID))

		assert.ErrorIs(t, repo.Update(ctx, completion), domain.ErrCompletionNotFound)
	})
}
