package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tracker-go/internal/model"
)

// PomodoroService drives the cycle/session state machine and focus statistics.
//
// A cycle moves IN_PROGRESS -> COMPLETED or IN_PROGRESS -> ABANDONED and never
// leaves a terminal state. At most one cycle should be IN_PROGRESS; callers
// keep that invariant by finishing the current cycle before starting another.
type PomodoroService struct {
	database Database
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewPomodoroService creates a PomodoroService with the provided dependencies.
func NewPomodoroService(database Database, logger Logger, clock Clock, idgen IDGenerator) *PomodoroService {
	return &PomodoroService{
		database: database,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// StartCycle creates a cycle in IN_PROGRESS. It does not finish an existing
// in-progress cycle; it only warns about one.
func (s *PomodoroService) StartCycle(ctx context.Context, settings model.CycleSettings) (*model.PomodoroCycle, error) {
	if err := validateSettings(settings); err != nil {
		return nil, Invalid("start cycle", err)
	}

	active, err := s.database.CountCyclesByStatus(ctx, model.StatusInProgress)
	if err != nil {
		return nil, StorageFailure("start cycle", err)
	}
	if active > 0 {
		s.logger.Warn("starting cycle while another is in progress", "in_progress", active)
	}

	now := s.clock.Now()
	cycle := &model.PomodoroCycle{
		ID:                     s.idgen.New(),
		Status:                 model.StatusInProgress,
		FocusDuration:          settings.FocusDuration,
		ShortBreakDuration:     settings.ShortBreakDuration,
		LongBreakDuration:      settings.LongBreakDuration,
		SessionsUntilLongBreak: settings.SessionsUntilLongBreak,
		AutoStartBreaks:        settings.AutoStartBreaks,
		AutoStartPomodoros:     settings.AutoStartPomodoros,
		StartedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.database.InsertCycle(ctx, cycle); err != nil {
		return nil, StorageFailure("start cycle", err)
	}

	s.logger.Info("cycle started", "id", cycle.ID, "focus_minutes", cycle.FocusDuration)
	return cycle, nil
}

func validateSettings(settings model.CycleSettings) error {
	durations := []struct {
		name  string
		value int
	}{
		{"focusDuration", settings.FocusDuration},
		{"shortBreakDuration", settings.ShortBreakDuration},
		{"longBreakDuration", settings.LongBreakDuration},
		{"sessionsUntilLongBreak", settings.SessionsUntilLongBreak},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", d.name, d.value)
		}
	}
	return nil
}

// GetCurrentCycle returns the most recently started in-progress cycle with its
// sessions, or nil when no cycle is in progress.
func (s *PomodoroService) GetCurrentCycle(ctx context.Context) (*model.PomodoroCycleWithSessions, error) {
	cycle, err := s.database.FindLatestCycleByStatus(ctx, model.StatusInProgress)
	if err != nil {
		return nil, StorageFailure("get current cycle", err)
	}
	return cycle, nil
}

// UpdateCycleStatus moves a cycle to status. Terminal statuses stamp
// completedAt; completedAt is never cleared.
func (s *PomodoroService) UpdateCycleStatus(ctx context.Context, id string, status model.CycleStatus) (*model.PomodoroCycle, error) {
	if _, err := model.ParseCycleStatus(string(status)); err != nil {
		return nil, Invalid("update cycle status", err)
	}

	now := s.clock.Now()
	cycle, err := s.database.UpdateCycle(ctx, id, func(c *model.PomodoroCycle) (bool, error) {
		return applyTransition(c, status, now)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil, Invalid("update cycle status", err)
		}
		return nil, StorageFailure("update cycle status", err)
	}

	s.logger.Info("cycle status updated", "id", id, "status", cycle.Status)
	return cycle, nil
}

// applyTransition mutates c for a move to next and reports whether anything changed.
func applyTransition(c *model.PomodoroCycle, next model.CycleStatus, now time.Time) (bool, error) {
	if c.Status.IsTerminal() {
		if c.Status == next {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
	}

	c.Status = next
	if next.IsTerminal() {
		completedAt := now
		c.CompletedAt = &completedAt
	}
	c.UpdatedAt = now
	return true, nil
}

// StartSession opens a session inside a cycle. The cycle's status is not checked.
func (s *PomodoroService) StartSession(ctx context.Context, cycleID string, sessionType model.SessionType, durationMinutes int) (*model.PomodoroSession, error) {
	if _, err := model.ParseSessionType(string(sessionType)); err != nil {
		return nil, Invalid("start session", err)
	}
	if durationMinutes <= 0 {
		return nil, Invalid("start session", fmt.Errorf("durationMinutes must be positive, got %d", durationMinutes))
	}

	session := &model.PomodoroSession{
		ID:              s.idgen.New(),
		CycleID:         cycleID,
		SessionType:     sessionType,
		StartedAt:       s.clock.Now(),
		DurationMinutes: durationMinutes,
		WasCompleted:    false,
	}

	if err := s.database.InsertSession(ctx, session); err != nil {
		return nil, StorageFailure("start session", err)
	}

	s.logger.Info("session started", "id", session.ID, "cycle_id", cycleID, "type", sessionType)
	return session, nil
}

// CompleteSession stamps completedAt and records whether the user actually
// engaged with the session. A session is completed at most once.
func (s *PomodoroService) CompleteSession(ctx context.Context, sessionID string, wasCompleted bool) (*model.PomodoroSession, error) {
	now := s.clock.Now()
	session, err := s.database.UpdateSession(ctx, sessionID, func(sess *model.PomodoroSession) error {
		if sess.CompletedAt != nil {
			return ErrSessionCompleted
		}
		sess.CompletedAt = &now
		sess.WasCompleted = wasCompleted
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSessionCompleted) {
			return nil, Invalid("complete session", err)
		}
		return nil, StorageFailure("complete session", err)
	}

	s.logger.Info("session completed", "id", sessionID, "was_completed", wasCompleted)
	return session, nil
}

// DailyFocusMinutes sums the durations of completed FOCUS sessions that started
// on date (UTC), bounds inclusive: [dateT00:00:00Z, dateT23:59:59Z].
func (s *PomodoroService) DailyFocusMinutes(ctx context.Context, date string) (int, error) {
	d, err := ParseDate(date)
	if err != nil {
		return 0, Invalid("daily focus minutes", err)
	}
	day := FormatDate(d)

	total, err := s.database.SumSessionMinutes(ctx, SessionFilter{
		SessionType:  model.SessionFocus,
		WasCompleted: true,
		StartedFrom:  day + "T00:00:00Z",
		StartedTo:    day + "T23:59:59Z",
	})
	if err != nil {
		return 0, StorageFailure("daily focus minutes", err)
	}
	return total, nil
}
