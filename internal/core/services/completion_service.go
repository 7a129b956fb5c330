package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
	"github.com/comitanigiacomo/cadence-engine/internal/core/workers"
)

type CompletionService struct {
	repo      domain.CompletionRepository
	habitRepo domain.HabitRepository
	worker    *workers.StreakWorker
}

func NewCompletionService(repo domain.CompletionRepository, habitRepo domain.HabitRepository, worker *workers.StreakWorker) *CompletionService {
	return &CompletionService{
		repo:      repo,
		habitRepo: habitRepo,
		worker:    worker,
	}
}

type CreateCompletionInput struct {
	HabitID   string
	Date      domain.Date
	Completed bool
	Value     int
	Notes     string
}

type UpdateCompletionInput struct {
	ID        string
	Completed bool
	Value     int
	Notes     string
	Version   int
}

func (s *CompletionService) Create(ctx context.Context, input CreateCompletionInput) (*domain.Completion, error) {
	completion := domain.NewCompletion(input.HabitID, input.Date, input.Completed, input.Value)
	completion.Notes = input.Notes

	if err := completion.Validate(); err != nil {
		return nil, err
	}

	// The habit must exist before a completion references it.
	if _, err := s.habitRepo.GetByID(ctx, completion.HabitID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, completion); err != nil {
		return nil, err
	}

	s.enqueueRefresh(completion.HabitID)

	return completion, nil
}

func (s *CompletionService) Update(ctx context.Context, input UpdateCompletionInput) (*domain.Completion, error) {
	existing, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, domain.ErrCompletionConflict
	}

	if input.Value < 0 {
		return nil, domain.ErrNegativeValue
	}

	existing.Completed = input.Completed
	existing.Value = input.Value
	existing.Notes = input.Notes

	existing.Version++
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.enqueueRefresh(existing.HabitID)

	return existing, nil
}

func (s *CompletionService) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CompletionService) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error) {
	if _, err := s.habitRepo.GetByID(ctx, habitID); err != nil {
		return nil, err
	}

	return s.repo.ListByHabitID(ctx, habitID)
}

func (s *CompletionService) Delete(ctx context.Context, id string) error {
	completion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	habitID := completion.HabitID

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.enqueueRefresh(habitID)

	return nil
}

func (s *CompletionService) GetDelta(ctx context.Context, since time.Time) ([]*domain.Completion, error) {
	return s.repo.GetChanges(ctx, since)
}

func (s *CompletionService) enqueueRefresh(habitID string) {
	if s.worker != nil {
		s.worker.Enqueue(habitID)
	}
}
