package tracker

import (
	"context"
	"time"

	"tracker-go/internal/model"
)

// Database is the entity store behind the tracking services.
// Lookups return (nil, nil) when nothing matches; mutations addressing an
// unknown id return an ErrNotFound error. Driver failures are ErrStorage.
type Database interface {
	// Habit operations

	// InsertHabit persists a new habit.
	InsertHabit(ctx context.Context, habit *model.Habit) error

	// FindHabitByID returns the habit with the given id, or nil.
	FindHabitByID(ctx context.Context, id string) (*model.Habit, error)

	// ListHabits returns habits with the given archived flag, newest first.
	ListHabits(ctx context.Context, archived bool) ([]*model.Habit, error)

	// UpdateHabit applies the present patch fields, sets updated_at and
	// returns the stored habit, all in one transaction.
	UpdateHabit(ctx context.Context, id string, patch model.HabitPatch, updatedAt time.Time) (*model.Habit, error)

	// DeleteHabit removes a habit and, by cascade, its completions.
	DeleteHabit(ctx context.Context, id string) error

	// Completion operations

	// ToggleCompletionForDate removes the habit's completion for date if one
	// exists, otherwise inserts one with newID. created reports which happened.
	ToggleCompletionForDate(ctx context.Context, habitID, date, newID string) (completion *model.HabitCompletion, created bool, err error)

	// DeleteCompletion removes a completion by id, scoped to its habit.
	DeleteCompletion(ctx context.Context, habitID, completionID string) (*model.HabitCompletion, error)

	// ListCompletions returns completions newest date first; limit 0 means all.
	ListCompletions(ctx context.Context, habitID string, limit int) ([]*model.HabitCompletion, error)

	// Pomodoro operations

	// InsertCycle persists a new cycle.
	InsertCycle(ctx context.Context, cycle *model.PomodoroCycle) error

	// FindCycleByID returns the cycle with the given id, or nil.
	FindCycleByID(ctx context.Context, id string) (*model.PomodoroCycle, error)

	// FindLatestCycleByStatus returns the cycle with the latest started_at
	// having the given status, with its sessions attached, or nil.
	FindLatestCycleByStatus(ctx context.Context, status model.CycleStatus) (*model.PomodoroCycleWithSessions, error)

	// CountCyclesByStatus counts cycles having the given status.
	CountCyclesByStatus(ctx context.Context, status model.CycleStatus) (int, error)

	// UpdateCycle loads a cycle, lets mutate change it and, when mutate
	// reports a change, writes status, completed_at and updated_at back.
	// The stored cycle is re-read and returned inside the same transaction.
	UpdateCycle(ctx context.Context, id string, mutate func(*model.PomodoroCycle) (bool, error)) (*model.PomodoroCycle, error)

	// InsertSession persists a new session.
	InsertSession(ctx context.Context, session *model.PomodoroSession) error

	// UpdateSession loads a session, lets mutate change it, writes
	// completed_at and was_completed back and returns the stored session.
	UpdateSession(ctx context.Context, id string, mutate func(*model.PomodoroSession) error) (*model.PomodoroSession, error)

	// SumSessionMinutes sums duration_minutes over sessions matching filter.
	SumSessionMinutes(ctx context.Context, filter SessionFilter) (int, error)

	// Close closes the database connection.
	Close() error
}

// SessionFilter selects sessions for aggregation. StartedFrom and StartedTo
// are inclusive bounds compared as stored timestamp strings.
type SessionFilter struct {
	SessionType  model.SessionType
	WasCompleted bool
	StartedFrom  string
	StartedTo    string
}
