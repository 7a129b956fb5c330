package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

// habitRow flattens the recurrence and goal sum types into JSONB columns.
type habitRow struct {
	ID            string     `db:"id"`
	Name          string     `db:"name"`
	Tag           string     `db:"tag"`
	Recurrence    []byte     `db:"recurrence"`
	Goal          []byte     `db:"goal"`
	CurrentStreak int        `db:"current_streak"`
	LongestStreak int        `db:"longest_streak"`
	Version       int        `db:"version"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	ArchivedAt    *time.Time `db:"archived_at"`
}

func toRow(h *domain.Habit) (*habitRow, error) {
	rec, err := domain.EncodeRecurrence(h.Recurrence)
	if err != nil {
		return nil, err
	}
	goal, err := domain.EncodeGoal(h.Goal)
	if err != nil {
		return nil, err
	}

	return &habitRow{
		ID:            h.ID,
		Name:          h.Name,
		Tag:           string(h.Tag),
		Recurrence:    rec,
		Goal:          goal,
		CurrentStreak: h.CurrentStreak,
		LongestStreak: h.LongestStreak,
		Version:       h.Version,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
		ArchivedAt:    h.ArchivedAt,
	}, nil
}

func (r *habitRow) toDomain() (*domain.Habit, error) {
	rec, err := domain.DecodeRecurrence(r.Recurrence)
	if err != nil {
		return nil, err
	}
	goal, err := domain.DecodeGoal(r.Goal)
	if err != nil {
		return nil, err
	}

	return &domain.Habit{
		ID:            r.ID,
		Name:          r.Name,
		Tag:           domain.Tag(r.Tag),
		Recurrence:    rec,
		Goal:          goal,
		CurrentStreak: r.CurrentStreak,
		LongestStreak: r.LongestStreak,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		ArchivedAt:    r.ArchivedAt,
	}, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	row, err := toRow(habit)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO habits (
			id, name, tag, recurrence, goal,
			current_streak, longest_streak,
			version, created_at, updated_at, archived_at
		) VALUES (
			:id, :name, :tag, :recurrence, :goal,
			:current_streak, :longest_streak,
			:version, :created_at, :updated_at, :archived_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrHabitConflict
		}
		return err
	}
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	var row habitRow
	query := `SELECT * FROM habits WHERE id = $1`

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, err
	}
	return row.toDomain()
}

func (r *PostgresHabitRepository) List(ctx context.Context, includeArchived bool) ([]*domain.Habit, error) {
	rows := []habitRow{}

	query := `SELECT * FROM habits ORDER BY created_at ASC`
	if !includeArchived {
		query = `SELECT * FROM habits WHERE archived_at IS NULL ORDER BY created_at ASC`
	}

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	habits := make([]*domain.Habit, 0, len(rows))
	for i := range rows {
		habit, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, nil
}

func (r *PostgresHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	habit.Version++
	habit.UpdatedAt = time.Now().UTC()

	row, err := toRow(habit)
	if err != nil {
		return err
	}

	query := `
		UPDATE habits
		SET name = :name,
		    tag = :tag,
		    recurrence = :recurrence,
		    goal = :goal,
		    version = :version,
		    updated_at = :updated_at,
		    archived_at = :archived_at
		WHERE id = :id
		  AND version = :version - 1  -- Optimistic Lock check`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		exists, _ := r.exists(ctx, habit.ID)
		if !exists {
			return domain.ErrHabitNotFound
		}
		return domain.ErrHabitConflict
	}

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) GetChanges(ctx context.Context, since time.Time) ([]*domain.Habit, error) {
	rows := []habitRow{}

	query := `
		SELECT * FROM habits
		WHERE updated_at > $1
		ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, err
	}

	habits := make([]*domain.Habit, 0, len(rows))
	for i := range rows {
		habit, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, nil
}

func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
		UPDATE habits
		SET current_streak = $1,
		    longest_streak = $2,
		    updated_at = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, current, longest, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM habits WHERE id = $1", id)
	return count > 0, err
}
