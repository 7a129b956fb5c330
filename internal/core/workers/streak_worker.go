package workers

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
	"github.com/comitanigiacomo/cadence-engine/internal/core/streak"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type CompletionRepository interface {
	ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker refreshes the denormalized streak snapshot on habits after
// completion writes, so list views don't recompute over full history.
type StreakWorker struct {
	habitRepo      HabitRepository
	completionRepo CompletionRepository
	jobs           chan StreakJob
	now            func() time.Time
}

func NewStreakWorker(habitRepo HabitRepository, completionRepo CompletionRepository) *StreakWorker {
	return &StreakWorker{
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		jobs:           make(chan StreakJob, 100),
		now:            time.Now,
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Streak Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak Worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("Streak Worker queue full! Dropping job for habit %s", habitID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker Error fetching habit %s: %v", job.HabitID, err)
		return
	}

	completions, err := w.completionRepo.ListByHabitID(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker Error fetching completions for %s: %v", job.HabitID, err)
		return
	}

	today := domain.DateOf(w.now().UTC())
	data, err := streak.Compute(habit, completions, today)
	if err != nil {
		log.Printf("Worker Error computing streaks for %s: %v", job.HabitID, err)
		return
	}

	if habit.CurrentStreak != data.CurrentStreak || habit.LongestStreak != data.LongestStreak {
		if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, data.CurrentStreak, data.LongestStreak); err != nil {
			log.Printf("Worker Failed to update streak for %s: %v", job.HabitID, err)
		} else {
			log.Printf("Streak updated for %s: Current=%d, Longest=%d", habit.Name, data.CurrentStreak, data.LongestStreak)
		}
	}
}
