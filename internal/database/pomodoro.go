package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"tracker-go/internal/model"
	"tracker-go/internal/tracker"
)

var cycleColumns = []string{
	"id", "status", "focus_duration", "short_break_duration", "long_break_duration",
	"sessions_until_long_break", "auto_start_breaks", "auto_start_pomodoros",
	"started_at", "completed_at", "updated_at",
}

var sessionColumns = []string{
	"id", "cycle_id", "session_type", "started_at", "completed_at", "duration_minutes", "was_completed",
}

type cycleRow struct {
	ID                     string         `db:"id"`
	Status                 string         `db:"status"`
	FocusDuration          int            `db:"focus_duration"`
	ShortBreakDuration     int            `db:"short_break_duration"`
	LongBreakDuration      int            `db:"long_break_duration"`
	SessionsUntilLongBreak int            `db:"sessions_until_long_break"`
	AutoStartBreaks        bool           `db:"auto_start_breaks"`
	AutoStartPomodoros     bool           `db:"auto_start_pomodoros"`
	StartedAt              string         `db:"started_at"`
	CompletedAt            sql.NullString `db:"completed_at"`
	UpdatedAt              string         `db:"updated_at"`
}

func (r cycleRow) toModel() (*model.PomodoroCycle, error) {
	status, err := model.ParseCycleStatus(r.Status)
	if err != nil {
		return nil, err
	}
	startedAt, err := parseTimestamp(r.StartedAt)
	if err != nil {
		return nil, err
	}
	completedAt, err := parseNullTimestamp(r.CompletedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTimestamp(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &model.PomodoroCycle{
		ID:                     r.ID,
		Status:                 status,
		FocusDuration:          r.FocusDuration,
		ShortBreakDuration:     r.ShortBreakDuration,
		LongBreakDuration:      r.LongBreakDuration,
		SessionsUntilLongBreak: r.SessionsUntilLongBreak,
		AutoStartBreaks:        r.AutoStartBreaks,
		AutoStartPomodoros:     r.AutoStartPomodoros,
		StartedAt:              startedAt,
		CompletedAt:            completedAt,
		UpdatedAt:              updatedAt,
	}, nil
}

type sessionRow struct {
	ID              string         `db:"id"`
	CycleID         string         `db:"cycle_id"`
	SessionType     string         `db:"session_type"`
	StartedAt       string         `db:"started_at"`
	CompletedAt     sql.NullString `db:"completed_at"`
	DurationMinutes int            `db:"duration_minutes"`
	WasCompleted    bool           `db:"was_completed"`
}

func (r sessionRow) toModel() (*model.PomodoroSession, error) {
	sessionType, err := model.ParseSessionType(r.SessionType)
	if err != nil {
		return nil, err
	}
	startedAt, err := parseTimestamp(r.StartedAt)
	if err != nil {
		return nil, err
	}
	completedAt, err := parseNullTimestamp(r.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &model.PomodoroSession{
		ID:              r.ID,
		CycleID:         r.CycleID,
		SessionType:     sessionType,
		StartedAt:       startedAt,
		CompletedAt:     completedAt,
		DurationMinutes: r.DurationMinutes,
		WasCompleted:    r.WasCompleted,
	}, nil
}

// InsertCycle persists a new cycle.
func (s *SQLiteDatabase) InsertCycle(ctx context.Context, cycle *model.PomodoroCycle) error {
	_, err := execBuilt(ctx, s.db, qb.Insert("pomodoro_cycles").
		Columns(cycleColumns...).
		Values(
			cycle.ID,
			cycle.Status.String(),
			cycle.FocusDuration,
			cycle.ShortBreakDuration,
			cycle.LongBreakDuration,
			cycle.SessionsUntilLongBreak,
			cycle.AutoStartBreaks,
			cycle.AutoStartPomodoros,
			formatTimestamp(cycle.StartedAt),
			formatNullTimestamp(cycle.CompletedAt),
			formatTimestamp(cycle.UpdatedAt),
		))
	if err != nil {
		return fmt.Errorf("inserting cycle: %w", err)
	}
	return nil
}

// FindCycleByID returns the cycle with the given id, or nil if none exists.
func (s *SQLiteDatabase) FindCycleByID(ctx context.Context, id string) (*model.PomodoroCycle, error) {
	return findCycle(ctx, s.db, qb.Select(cycleColumns...).From("pomodoro_cycles").Where(sq.Eq{"id": id}))
}

func findCycle(ctx context.Context, db sqlx.QueryerContext, q sq.SelectBuilder) (*model.PomodoroCycle, error) {
	var row cycleRow
	err := getBuilt(ctx, db, &row, q)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cycle: %w", err)
	}
	return row.toModel()
}

// FindLatestCycleByStatus returns the most recently started cycle with status,
// its sessions attached, or nil if there is none.
func (s *SQLiteDatabase) FindLatestCycleByStatus(ctx context.Context, status model.CycleStatus) (*model.PomodoroCycleWithSessions, error) {
	var result *model.PomodoroCycleWithSessions
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		cycle, err := findCycle(ctx, tx, qb.Select(cycleColumns...).
			From("pomodoro_cycles").
			Where(sq.Eq{"status": status.String()}).
			OrderBy("started_at DESC", "rowid DESC").
			Limit(1))
		if err != nil || cycle == nil {
			return err
		}

		var rows []sessionRow
		if err := selectBuilt(ctx, tx, &rows, qb.Select(sessionColumns...).
			From("pomodoro_sessions").
			Where(sq.Eq{"cycle_id": cycle.ID}).
			OrderBy("started_at", "rowid")); err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		sessions := make([]*model.PomodoroSession, 0, len(rows))
		for _, row := range rows {
			sess, err := row.toModel()
			if err != nil {
				return err
			}
			sessions = append(sessions, sess)
		}

		result = &model.PomodoroCycleWithSessions{PomodoroCycle: *cycle, Sessions: sessions}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CountCyclesByStatus counts cycles having status.
func (s *SQLiteDatabase) CountCyclesByStatus(ctx context.Context, status model.CycleStatus) (int, error) {
	var n int
	err := getBuilt(ctx, s.db, &n, qb.Select("COUNT(*)").
		From("pomodoro_cycles").
		Where(sq.Eq{"status": status.String()}))
	if err != nil {
		return 0, fmt.Errorf("counting cycles: %w", err)
	}
	return n, nil
}

// UpdateCycle runs mutate against the stored cycle and writes back status,
// completed_at and updated_at when mutate reports a change.
func (s *SQLiteDatabase) UpdateCycle(ctx context.Context, id string, mutate func(*model.PomodoroCycle) (bool, error)) (*model.PomodoroCycle, error) {
	var updated *model.PomodoroCycle
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		byID := qb.Select(cycleColumns...).From("pomodoro_cycles").Where(sq.Eq{"id": id})

		cycle, err := findCycle(ctx, tx, byID)
		if err != nil {
			return err
		}
		if cycle == nil {
			return tracker.NotFound("update cycle", "cycle", id)
		}

		changed, err := mutate(cycle)
		if err != nil {
			return err
		}
		if !changed {
			updated = cycle
			return nil
		}

		if _, err := execBuilt(ctx, tx, qb.Update("pomodoro_cycles").
			Set("status", cycle.Status.String()).
			Set("completed_at", formatNullTimestamp(cycle.CompletedAt)).
			Set("updated_at", formatTimestamp(cycle.UpdatedAt)).
			Where(sq.Eq{"id": id})); err != nil {
			return fmt.Errorf("updating cycle: %w", err)
		}

		updated, err = findCycle(ctx, tx, byID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// InsertSession persists a new session. The cycle must exist.
func (s *SQLiteDatabase) InsertSession(ctx context.Context, session *model.PomodoroSession) error {
	_, err := execBuilt(ctx, s.db, qb.Insert("pomodoro_sessions").
		Columns(sessionColumns...).
		Values(
			session.ID,
			session.CycleID,
			session.SessionType.String(),
			formatTimestamp(session.StartedAt),
			formatNullTimestamp(session.CompletedAt),
			session.DurationMinutes,
			session.WasCompleted,
		))
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func findSession(ctx context.Context, db sqlx.QueryerContext, id string) (*model.PomodoroSession, error) {
	var row sessionRow
	err := getBuilt(ctx, db, &row, qb.Select(sessionColumns...).From("pomodoro_sessions").Where(sq.Eq{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return row.toModel()
}

// UpdateSession runs mutate against the stored session and writes back
// completed_at and was_completed.
func (s *SQLiteDatabase) UpdateSession(ctx context.Context, id string, mutate func(*model.PomodoroSession) error) (*model.PomodoroSession, error) {
	var updated *model.PomodoroSession
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		sess, err := findSession(ctx, tx, id)
		if err != nil {
			return err
		}
		if sess == nil {
			return tracker.NotFound("update session", "session", id)
		}

		if err := mutate(sess); err != nil {
			return err
		}

		if _, err := execBuilt(ctx, tx, qb.Update("pomodoro_sessions").
			Set("completed_at", formatNullTimestamp(sess.CompletedAt)).
			Set("was_completed", sess.WasCompleted).
			Where(sq.Eq{"id": id})); err != nil {
			return fmt.Errorf("updating session: %w", err)
		}

		updated, err = findSession(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SumSessionMinutes totals duration_minutes over the sessions matching filter.
func (s *SQLiteDatabase) SumSessionMinutes(ctx context.Context, filter tracker.SessionFilter) (int, error) {
	var total int
	err := getBuilt(ctx, s.db, &total, qb.Select("COALESCE(SUM(duration_minutes), 0)").
		From("pomodoro_sessions").
		Where(sq.Eq{
			"session_type":  filter.SessionType.String(),
			"was_completed": filter.WasCompleted,
		}).
		Where(sq.GtOrEq{"started_at": filter.StartedFrom}).
		Where(sq.LtOrEq{"started_at": filter.StartedTo}))
	if err != nil {
		return 0, fmt.Errorf("summing session minutes: %w", err)
	}
	return total, nil
}
