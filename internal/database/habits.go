package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"tracker-go/internal/model"
	"tracker-go/internal/tracker"
)

var habitColumns = []string{"id", "title", "description", "icon", "is_archived", "created_at", "updated_at"}

type habitRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Icon        string `db:"icon"`
	IsArchived  bool   `db:"is_archived"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r habitRow) toModel() (*model.Habit, error) {
	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTimestamp(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &model.Habit{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Icon:        r.Icon,
		IsArchived:  r.IsArchived,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

type completionRow struct {
	ID      string `db:"id"`
	HabitID string `db:"habit_id"`
	Date    string `db:"created_at"`
}

func (r completionRow) toModel() *model.HabitCompletion {
	return &model.HabitCompletion{ID: r.ID, HabitID: r.HabitID, Date: r.Date}
}

// InsertHabit persists a new habit.
func (s *SQLiteDatabase) InsertHabit(ctx context.Context, habit *model.Habit) error {
	_, err := execBuilt(ctx, s.db, qb.Insert("habits").
		Columns(habitColumns...).
		Values(
			habit.ID,
			habit.Title,
			habit.Description,
			habit.Icon,
			habit.IsArchived,
			formatTimestamp(habit.CreatedAt),
			formatTimestamp(habit.UpdatedAt),
		))
	if err != nil {
		return fmt.Errorf("inserting habit: %w", err)
	}
	return nil
}

// FindHabitByID returns the habit with the given id, or nil if none exists.
func (s *SQLiteDatabase) FindHabitByID(ctx context.Context, id string) (*model.Habit, error) {
	return findHabit(ctx, s.db, id)
}

func findHabit(ctx context.Context, db sqlx.QueryerContext, id string) (*model.Habit, error) {
	var row habitRow
	err := getBuilt(ctx, db, &row, qb.Select(habitColumns...).From("habits").Where(sq.Eq{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying habit: %w", err)
	}
	return row.toModel()
}

// ListHabits returns habits with the given archived flag, most recently created first.
func (s *SQLiteDatabase) ListHabits(ctx context.Context, archived bool) ([]*model.Habit, error) {
	var rows []habitRow
	err := selectBuilt(ctx, s.db, &rows, qb.Select(habitColumns...).
		From("habits").
		Where(sq.Eq{"is_archived": archived}).
		OrderBy("created_at DESC", "rowid DESC"))
	if err != nil {
		return nil, fmt.Errorf("listing habits: %w", err)
	}

	habits := make([]*model.Habit, 0, len(rows))
	for _, row := range rows {
		h, err := row.toModel()
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, nil
}

// UpdateHabit applies the fields present in patch, sets updated_at and returns
// the stored habit.
func (s *SQLiteDatabase) UpdateHabit(ctx context.Context, id string, patch model.HabitPatch, updatedAt time.Time) (*model.Habit, error) {
	var updated *model.Habit
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt := qb.Update("habits").
			Set("updated_at", formatTimestamp(updatedAt)).
			Where(sq.Eq{"id": id})
		if patch.Title != nil {
			stmt = stmt.Set("title", *patch.Title)
		}
		if patch.Description != nil {
			stmt = stmt.Set("description", *patch.Description)
		}
		if patch.Icon != nil {
			stmt = stmt.Set("icon", *patch.Icon)
		}
		if patch.IsArchived != nil {
			stmt = stmt.Set("is_archived", *patch.IsArchived)
		}

		n, err := execBuilt(ctx, tx, stmt)
		if err != nil {
			return fmt.Errorf("updating habit: %w", err)
		}
		if n == 0 {
			return tracker.NotFound("update habit", "habit", id)
		}

		updated, err = findHabit(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteHabit removes a habit; its completions go with it through the cascade.
func (s *SQLiteDatabase) DeleteHabit(ctx context.Context, id string) error {
	n, err := execBuilt(ctx, s.db, qb.Delete("habits").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("deleting habit: %w", err)
	}
	if n == 0 {
		return tracker.NotFound("delete habit", "habit", id)
	}
	return nil
}

// ToggleCompletionForDate flips the completion mark for (habitID, date).
func (s *SQLiteDatabase) ToggleCompletionForDate(ctx context.Context, habitID, date, newID string) (*model.HabitCompletion, bool, error) {
	var (
		completion *model.HabitCompletion
		created    bool
	)
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		habit, err := findHabit(ctx, tx, habitID)
		if err != nil {
			return err
		}
		if habit == nil {
			return tracker.NotFound("toggle completion", "habit", habitID)
		}

		var existing completionRow
		err = getBuilt(ctx, tx, &existing, qb.Select("id", "habit_id", "created_at").
			From("habit_completions").
			Where(sq.Eq{"habit_id": habitID, "created_at": date}))
		switch {
		case err == nil:
			if _, err := execBuilt(ctx, tx, qb.Delete("habit_completions").Where(sq.Eq{"id": existing.ID})); err != nil {
				return fmt.Errorf("deleting completion: %w", err)
			}
			completion = existing.toModel()
			return nil
		case errors.Is(err, sql.ErrNoRows):
		default:
			return fmt.Errorf("querying completion: %w", err)
		}

		if _, err := execBuilt(ctx, tx, qb.Insert("habit_completions").
			Columns("id", "habit_id", "created_at").
			Values(newID, habitID, date)); err != nil {
			return fmt.Errorf("inserting completion: %w", err)
		}
		completion = &model.HabitCompletion{ID: newID, HabitID: habitID, Date: date}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return completion, created, nil
}

// DeleteCompletion removes one completion of habitID by its id.
func (s *SQLiteDatabase) DeleteCompletion(ctx context.Context, habitID, completionID string) (*model.HabitCompletion, error) {
	var removed *model.HabitCompletion
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var row completionRow
		err := getBuilt(ctx, tx, &row, qb.Select("id", "habit_id", "created_at").
			From("habit_completions").
			Where(sq.Eq{"id": completionID, "habit_id": habitID}))
		if errors.Is(err, sql.ErrNoRows) {
			return tracker.NotFound("delete completion", "completion", completionID)
		}
		if err != nil {
			return fmt.Errorf("querying completion: %w", err)
		}

		if _, err := execBuilt(ctx, tx, qb.Delete("habit_completions").Where(sq.Eq{"id": completionID})); err != nil {
			return fmt.Errorf("deleting completion: %w", err)
		}
		removed = row.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// ListCompletions returns a habit's completions, newest date first.
// A limit of 0 returns all of them.
func (s *SQLiteDatabase) ListCompletions(ctx context.Context, habitID string, limit int) ([]*model.HabitCompletion, error) {
	q := qb.Select("id", "habit_id", "created_at").
		From("habit_completions").
		Where(sq.Eq{"habit_id": habitID}).
		OrderBy("created_at DESC", "rowid DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	var rows []completionRow
	if err := selectBuilt(ctx, s.db, &rows, q); err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}

	completions := make([]*model.HabitCompletion, 0, len(rows))
	for _, row := range rows {
		completions = append(completions, row.toModel())
	}
	return completions, nil
}
