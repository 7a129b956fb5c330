package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
)

// In-memory repositories back tests and dev mode. They enforce the same
// invariants as the Postgres ones, including completion uniqueness per
// (habit, date).

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[habit.ID]; exists {
		return domain.ErrHabitConflict
	}

	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) List(ctx context.Context, includeArchived bool) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if !includeArchived && h.IsArchived() {
			continue
		}
		clone := *h
		habits = append(habits, &clone)
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}

	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.store, id)
	return nil
}

func (r *InMemoryHabitRepository) GetChanges(ctx context.Context, since time.Time) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.UpdatedAt.After(since) {
			clone := *h
			habits = append(habits, &clone)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].UpdatedAt.Before(habits[j].UpdatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}

	habit.CurrentStreak = current
	habit.LongestStreak = longest
	habit.UpdatedAt = time.Now().UTC()
	return nil
}

type completionKey struct {
	habitID string
	date    domain.Date
}

type InMemoryCompletionRepository struct {
	store  map[string]*domain.Completion
	byDate map[completionKey]string

	mu sync.RWMutex
}

func NewInMemoryCompletionRepository() *InMemoryCompletionRepository {
	return &InMemoryCompletionRepository{
		store:  make(map[string]*domain.Completion),
		byDate: make(map[completionKey]string),
	}
}

func (r *InMemoryCompletionRepository) Create(ctx context.Context, completion *domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := completionKey{habitID: completion.HabitID, date: completion.Date}
	if _, exists := r.byDate[key]; exists {
		return domain.ErrDuplicateCompletion
	}

	clone := *completion
	r.store[completion.ID] = &clone
	r.byDate[key] = completion.ID
	return nil
}

func (r *InMemoryCompletionRepository) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	completion, ok := r.store[id]
	if !ok || completion.DeletedAt != nil {
		return nil, domain.ErrCompletionNotFound
	}
	clone := *completion
	return &clone, nil
}

func (r *InMemoryCompletionRepository) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var completions []*domain.Completion
	for _, c := range r.store {
		if c.HabitID == habitID && c.DeletedAt == nil {
			clone := *c
			completions = append(completions, &clone)
		}
	}

	sort.Slice(completions, func(i, j int) bool {
		return completions[i].Date.Before(completions[j].Date)
	})

	return completions, nil
}

func (r *InMemoryCompletionRepository) ListAll(ctx context.Context) ([]*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var completions []*domain.Completion
	for _, c := range r.store {
		if c.DeletedAt == nil {
			clone := *c
			completions = append(completions, &clone)
		}
	}

	sort.Slice(completions, func(i, j int) bool {
		return completions[i].Date.Before(completions[j].Date)
	})

	return completions, nil
}

func (r *InMemoryCompletionRepository) Update(ctx context.Context, completion *domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[completion.ID]
	if !ok || existing.DeletedAt != nil {
		return domain.ErrCompletionNotFound
	}

	clone := *completion
	r.store[completion.ID] = &clone
	return nil
}

func (r *InMemoryCompletionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	completion, ok := r.store[id]
	if !ok || completion.DeletedAt != nil {
		return domain.ErrCompletionNotFound
	}

	now := time.Now().UTC()
	completion.DeletedAt = &now
	completion.UpdatedAt = now
	delete(r.byDate, completionKey{habitID: completion.HabitID, date: completion.Date})
	return nil
}

func (r *InMemoryCompletionRepository) GetChanges(ctx context.Context, since time.Time) ([]*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var completions []*domain.Completion
	for _, c := range r.store {
		if c.UpdatedAt.After(since) {
			clone := *c
			completions = append(completions, &clone)
		}
	}

	sort.Slice(completions, func(i, j int) bool {
		return completions[i].UpdatedAt.Before(completions[j].UpdatedAt)
	})

	return completions, nil
}
