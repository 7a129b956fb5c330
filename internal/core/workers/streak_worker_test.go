package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/cadence-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
)

func seedWorkerFixture(t *testing.T) (*repository.InMemoryHabitRepository, *repository.InMemoryCompletionRepository, *domain.Habit) {
	t.Helper()
	habitRepo := repository.NewInMemoryHabitRepository()
	completionRepo := repository.NewInMemoryCompletionRepository()

	habit, err := domain.NewHabit("Run", domain.TagFitness, domain.Daily{}, domain.StreakGoal{})
	require.NoError(t, err)
	require.NoError(t, habitRepo.Create(context.Background(), habit))

	return habitRepo, completionRepo, habit
}

func addCompletion(t *testing.T, repo *repository.InMemoryCompletionRepository, habitID string, date domain.Date) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), domain.NewCompletion(habitID, date, true, 0)))
}

func TestStreakWorker_ProcessJob(t *testing.T) {
	ctx := context.Background()
	today := domain.NewDate(2023, time.January, 5)

	t.Run("Success: writes the recomputed snapshot", func(t *testing.T) {
		habitRepo, completionRepo, habit := seedWorkerFixture(t)
		addCompletion(t, completionRepo, habit.ID, today.AddDays(-2))
		addCompletion(t, completionRepo, habit.ID, today.AddDays(-1))
		addCompletion(t, completionRepo, habit.ID, today)

		w := NewStreakWorker(habitRepo, completionRepo)
		w.now = func() time.Time { return today.Time() }

		w.processJob(ctx, StreakJob{HabitID: habit.ID})

		stored, err := habitRepo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.CurrentStreak)
		assert.Equal(t, 3, stored.LongestStreak)
	})

	t.Run("Edge Case: unchanged snapshot is not rewritten", func(t *testing.T) {
		habitRepo, completionRepo, habit := seedWorkerFixture(t)

		w := NewStreakWorker(habitRepo, completionRepo)
		w.now = func() time.Time { return today.Time() }

		before, err := habitRepo.GetByID(ctx, habit.ID)
		require.NoError(t, err)

		w.processJob(ctx, StreakJob{HabitID: habit.ID})

		after, err := habitRepo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	})

	t.Run("Edge Case: missing habit is ignored", func(t *testing.T) {
		habitRepo, completionRepo, _ := seedWorkerFixture(t)

		w := NewStreakWorker(habitRepo, completionRepo)

		// Must not panic or write anything.
		w.processJob(ctx, StreakJob{HabitID: "ghost"})
	})
}

func TestStreakWorker_StartAndEnqueue(t *testing.T) {
	today := domain.NewDate(2023, time.January, 5)

	habitRepo, completionRepo, habit := seedWorkerFixture(t)
	addCompletion(t, completionRepo, habit.ID, today)

	w := NewStreakWorker(habitRepo, completionRepo)
	w.now = func() time.Time { return today.Time() }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Enqueue(habit.ID)

	assert.Eventually(t, func() bool {
		stored, err := habitRepo.GetByID(context.Background(), habit.ID)
		return err == nil && stored.CurrentStreak == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStreakWorker_EnqueueDropsWhenFull(t *testing.T) {
	habitRepo, completionRepo, habit := seedWorkerFixture(t)

	// Never started, so the buffer fills up and overflow must not block.
	w := NewStreakWorker(habitRepo, completionRepo)
	for i := 0; i < 150; i++ {
		w.Enqueue(habit.ID)
	}
}
