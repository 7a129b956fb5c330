package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
)

type HabitService struct {
	repo domain.HabitRepository
}

func NewHabitService(repo domain.HabitRepository) *HabitService {
	return &HabitService{
		repo: repo,
	}
}

type CreateHabitInput struct {
	Name       string
	Tag        domain.Tag
	Recurrence domain.Recurrence
	Goal       domain.Goal
}

type UpdateHabitInput struct {
	ID         string
	Name       string
	Tag        domain.Tag
	Recurrence domain.Recurrence
	Goal       domain.Goal
	Version    int
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.Name, input.Tag, input.Recurrence, input.Goal)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *HabitService) List(ctx context.Context, includeArchived bool) ([]*domain.Habit, error) {
	return s.repo.List(ctx, includeArchived)
}

func (s *HabitService) GetDelta(ctx context.Context, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, lastSync)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	name := input.Name
	if name == "" {
		name = habit.Name
	}
	tag := input.Tag
	if tag == "" {
		tag = habit.Tag
	}
	rec := input.Recurrence
	if rec == nil {
		rec = habit.Recurrence
	}
	goal := input.Goal
	if goal == nil {
		goal = habit.Goal
	}

	if err := habit.Update(name, tag, rec, goal); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) Archive(ctx context.Context, id string) error {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	habit.Archive()
	return s.repo.Update(ctx, habit)
}

func (s *HabitService) Restore(ctx context.Context, id string) error {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	habit.Restore()
	return s.repo.Update(ctx, habit)
}

func (s *HabitService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}
