package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
	"github.com/comitanigiacomo/cadence-engine/internal/core/services"
)

func TestHabitService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: persists and returns the habit", func(t *testing.T) {
		repo, _ := newMemoryRepos()
		svc := services.NewHabitService(repo)

		habit, err := svc.Create(ctx, services.CreateHabitInput{
			Name:       "Morning Run",
			Tag:        domain.TagFitness,
			Recurrence: domain.NewWeekly([]time.Weekday{time.Monday, time.Wednesday, time.Friday}),
			Goal:       domain.StreakGoal{},
		})

		require.NoError(t, err)
		assert.NotEmpty(t, habit.ID)

		stored, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, "Morning Run", stored.Name)
		assert.Equal(t, 1, stored.Version)
	})

	t.Run("Fail: validation error never reaches the repo", func(t *testing.T) {
		repo, _ := newMemoryRepos()
		svc := services.NewHabitService(repo)

		_, err := svc.Create(ctx, services.CreateHabitInput{Name: "   "})
		assert.ErrorIs(t, err, domain.ErrHabitNameEmpty)

		list, err := repo.List(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Fail: repo error propagates", func(t *testing.T) {
		dbErr := errors.New("insert failed")
		svc := services.NewHabitService(&failingHabitRepo{err: dbErr})

		_, err := svc.Create(ctx, services.CreateHabitInput{Name: "Run"})
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestHabitService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: empty input fields keep current values", func(t *testing.T) {
		repo, _ := newMemoryRepos()
		svc := services.NewHabitService(repo)
		habit := seedHabit(t, repo, "Run", domain.TagFitness, domain.Daily{}, domain.StreakGoal{})

		updated, err := svc.Update(ctx, services.UpdateHabitInput{
			ID:   habit.ID,
			Name: "Evening Run",
		})

		require.NoError(t, err)
		assert.Equal(t, "Evening Run", updated.Name)
		assert.Equal(t, domain.TagFitness, updated.Tag)
		assert.Equal(t, domain.Daily{}, updated.Recurrence)
	})

	t.Run("Fail: stale version conflicts", func(t *testing.T) {
		repo, _ := newMemoryRepos()
		svc := services.NewHabitService(repo)
		habit := seedHabit(t, repo, "Run", "", nil, nil)

		_, err := svc.Update(ctx, services.UpdateHabitInput{
			ID:      habit.ID,
			Name:    "New Name",
			Version: habit.Version + 1,
		})

		assert.ErrorIs(t, err, domain.ErrHabitConflict)
	})

	t.Run("Fail: archived habit rejects updates", func(t *testing.T) {
		repo, _ := newMemoryRepos()
		svc := services.NewHabitService(repo)
		habit := seedHabit(t, repo, "Run", "", nil, nil)

		require.NoError(t, svc.Archive(ctx, habit.ID))

		_, err := svc.Update(ctx, services.UpdateHabitInput{ID: habit.ID, Name: "New"})
		assert.ErrorIs(t, err, domain.ErrHabitArchived)
	})

	t.Run("Fail: unknown habit", func(t *testing.T) {
		repo, _ := newMemoryRepos()
		svc := services.NewHabitService(repo)

		_, err := svc.Update(ctx, services.UpdateHabitInput{ID: "missing", Name: "X"})
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}

func TestHabitService_ArchiveRestore(t *testing.T) {
	ctx := context.Background()
	repo, _ := newMemoryRepos()
	svc := services.NewHabitService(repo)
	habit := seedHabit(t, repo, "Meditate", domain.TagMindfulness, nil, nil)

	require.NoError(t, svc.Archive(ctx, habit.ID))

	stored, err := repo.GetByID(ctx, habit.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsArchived())

	// Archived habits drop out of the default listing.
	list, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.Restore(ctx, habit.ID))

	list, err = svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestHabitService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, _ := newMemoryRepos()
		svc := services.NewHabitService(repo)
		habit := seedHabit(t, repo, "Run", "", nil, nil)

		require.NoError(t, svc.Delete(ctx, habit.ID))

		_, err := repo.GetByID(ctx, habit.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("Fail: unknown habit", func(t *testing.T) {
		repo, _ := newMemoryRepos()
		svc := services.NewHabitService(repo)

		assert.ErrorIs(t, svc.Delete(ctx, "missing"), domain.ErrHabitNotFound)
	})
}

func TestHabitService_GetDelta(t *testing.T) {
	ctx := context.Background()
	repo, _ := newMemoryRepos()
	svc := services.NewHabitService(repo)

	before := time.Now().UTC().Add(-time.Minute)
	habit := seedHabit(t, repo, "Run", "", nil, nil)

	changes, err := svc.GetDelta(ctx, before)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, habit.ID, changes[0].ID)

	changes, err = svc.GetDelta(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, changes)
}
