package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tracker-go/internal/model"
	"tracker-go/internal/tracker"
)

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	sqlDB, err := OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := sqlDB.Exec(Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := NewSQLiteDatabaseFromDB(sqlDB)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

var baseTime = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func newHabit(id string, createdAt time.Time) *model.Habit {
	return &model.Habit{
		ID:          id,
		Title:       "Habit " + id,
		Description: "desc",
		Icon:        "star",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func insertHabit(t *testing.T, db *SQLiteDatabase, h *model.Habit) {
	t.Helper()
	if err := db.InsertHabit(context.Background(), h); err != nil {
		t.Fatalf("InsertHabit(%s) error = %v", h.ID, err)
	}
}

func newCycle(id string, status model.CycleStatus, startedAt time.Time) *model.PomodoroCycle {
	return &model.PomodoroCycle{
		ID:                     id,
		Status:                 status,
		FocusDuration:          25,
		ShortBreakDuration:     5,
		LongBreakDuration:      15,
		SessionsUntilLongBreak: 4,
		StartedAt:              startedAt,
		UpdatedAt:              startedAt,
	}
}

func insertCycle(t *testing.T, db *SQLiteDatabase, c *model.PomodoroCycle) {
	t.Helper()
	if err := db.InsertCycle(context.Background(), c); err != nil {
		t.Fatalf("InsertCycle(%s) error = %v", c.ID, err)
	}
}

func TestSQLiteDatabase_Habits(t *testing.T) {
	ctx := context.Background()

	t.Run("find returns nil when habit not found", func(t *testing.T) {
		db := newTestDB(t)

		h, err := db.FindHabitByID(ctx, "missing")
		if err != nil {
			t.Fatalf("FindHabitByID() error = %v", err)
		}
		if h != nil {
			t.Errorf("FindHabitByID() = %v, want nil", h)
		}
	})

	t.Run("inserts and finds habit", func(t *testing.T) {
		db := newTestDB(t)
		insertHabit(t, db, newHabit("h-1", baseTime))

		got, err := db.FindHabitByID(ctx, "h-1")
		if err != nil {
			t.Fatalf("FindHabitByID() error = %v", err)
		}
		if got == nil {
			t.Fatal("FindHabitByID() returned nil, want habit")
		}
		if got.Title != "Habit h-1" || got.Description != "desc" || got.Icon != "star" {
			t.Errorf("FindHabitByID() = %+v, fields not round-tripped", got)
		}
		if got.IsArchived {
			t.Error("IsArchived = true, want false")
		}
		if !got.CreatedAt.Equal(baseTime) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, baseTime)
		}
	})

	t.Run("lists by archived flag newest first", func(t *testing.T) {
		db := newTestDB(t)
		insertHabit(t, db, newHabit("old", baseTime))
		insertHabit(t, db, newHabit("new", baseTime.Add(time.Hour)))
		archived := newHabit("gone", baseTime.Add(2*time.Hour))
		archived.IsArchived = true
		insertHabit(t, db, archived)

		active, err := db.ListHabits(ctx, false)
		if err != nil {
			t.Fatalf("ListHabits(false) error = %v", err)
		}
		if len(active) != 2 {
			t.Fatalf("len(active) = %d, want 2", len(active))
		}
		if active[0].ID != "new" || active[1].ID != "old" {
			t.Errorf("active order = [%s %s], want [new old]", active[0].ID, active[1].ID)
		}

		gone, err := db.ListHabits(ctx, true)
		if err != nil {
			t.Fatalf("ListHabits(true) error = %v", err)
		}
		if len(gone) != 1 || gone[0].ID != "gone" {
			t.Errorf("archived = %v, want [gone]", gone)
		}
	})

	t.Run("same-second habits list in reverse insertion order", func(t *testing.T) {
		db := newTestDB(t)
		insertHabit(t, db, newHabit("first", baseTime))
		insertHabit(t, db, newHabit("second", baseTime))

		habits, err := db.ListHabits(ctx, false)
		if err != nil {
			t.Fatalf("ListHabits() error = %v", err)
		}
		if len(habits) != 2 || habits[0].ID != "second" {
			t.Errorf("ListHabits() first = %v, want second", habits[0].ID)
		}
	})

	t.Run("update applies only present fields", func(t *testing.T) {
		db := newTestDB(t)
		insertHabit(t, db, newHabit("h-1", baseTime))

		title := "Read"
		archived := true
		later := baseTime.Add(time.Hour)
		got, err := db.UpdateHabit(ctx, "h-1", model.HabitPatch{Title: &title, IsArchived: &archived}, later)
		if err != nil {
			t.Fatalf("UpdateHabit() error = %v", err)
		}
		if got.Title != "Read" {
			t.Errorf("Title = %q, want %q", got.Title, "Read")
		}
		if !got.IsArchived {
			t.Error("IsArchived = false, want true")
		}
		if got.Description != "desc" || got.Icon != "star" {
			t.Errorf("absent fields changed: %+v", got)
		}
		if !got.UpdatedAt.Equal(later) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, later)
		}
		if !got.CreatedAt.Equal(baseTime) {
			t.Errorf("CreatedAt = %v, want unchanged %v", got.CreatedAt, baseTime)
		}
	})

	t.Run("update of unknown habit is not found", func(t *testing.T) {
		db := newTestDB(t)

		_, err := db.UpdateHabit(ctx, "missing", model.HabitPatch{}, baseTime)
		if !errors.Is(err, tracker.ErrNotFound) {
			t.Errorf("UpdateHabit() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete cascades to completions", func(t *testing.T) {
		db := newTestDB(t)
		insertHabit(t, db, newHabit("h-1", baseTime))
		if _, _, err := db.ToggleCompletionForDate(ctx, "h-1", "2024-03-10", "c-1"); err != nil {
			t.Fatalf("ToggleCompletionForDate() error = %v", err)
		}

		if err := db.DeleteHabit(ctx, "h-1"); err != nil {
			t.Fatalf("DeleteHabit() error = %v", err)
		}

		completions, err := db.ListCompletions(ctx, "h-1", 0)
		if err != nil {
			t.Fatalf("ListCompletions() error = %v", err)
		}
		if len(completions) != 0 {
			t.Errorf("completions after delete = %d, want 0", len(completions))
		}
	})

	t.Run("delete of unknown habit is not found", func(t *testing.T) {
		db := newTestDB(t)

		if err := db.DeleteHabit(ctx, "missing"); !errors.Is(err, tracker.ErrNotFound) {
			t.Errorf("DeleteHabit() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteDatabase_Completions(t *testing.T) {
	ctx := context.Background()

	t.Run("toggle inserts then removes", func(t *testing.T) {
		db := newTestDB(t)
		insertHabit(t, db, newHabit("h-1", baseTime))

		c, created, err := db.ToggleCompletionForDate(ctx, "h-1", "2024-03-10", "c-1")
		if err != nil {
			t.Fatalf("first toggle error = %v", err)
		}
		if !created {
			t.Error("first toggle created = false, want true")
		}
		if c.ID != "c-1" || c.Date != "2024-03-10" {
			t.Errorf("first toggle completion = %+v", c)
		}

		c, created, err = db.ToggleCompletionForDate(ctx, "h-1", "2024-03-10", "c-2")
		if err != nil {
			t.Fatalf("second toggle error = %v", err)
		}
		if created {
			t.Error("second toggle created = true, want false")
		}
		if c.ID != "c-1" {
			t.Errorf("second toggle removed %q, want c-1", c.ID)
		}

		all, _ := db.ListCompletions(ctx, "h-1", 0)
		if len(all) != 0 {
			t.Errorf("completions after double toggle = %d, want 0", len(all))
		}
	})

	t.Run("toggle for unknown habit is not found", func(t *testing.T) {
		db := newTestDB(t)

		_, _, err := db.ToggleCompletionForDate(ctx, "missing", "2024-03-10", "c-1")
		if !errors.Is(err, tracker.ErrNotFound) {
			t.Errorf("ToggleCompletionForDate() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete by id is scoped to habit", func(t *testing.T) {
		db := newTestDB(t)
		insertHabit(t, db, newHabit("h-1", baseTime))
		insertHabit(t, db, newHabit("h-2", baseTime))
		db.ToggleCompletionForDate(ctx, "h-1", "2024-03-10", "c-1")

		if _, err := db.DeleteCompletion(ctx, "h-2", "c-1"); !errors.Is(err, tracker.ErrNotFound) {
			t.Errorf("DeleteCompletion(other habit) error = %v, want ErrNotFound", err)
		}

		removed, err := db.DeleteCompletion(ctx, "h-1", "c-1")
		if err != nil {
			t.Fatalf("DeleteCompletion() error = %v", err)
		}
		if removed.Date != "2024-03-10" {
			t.Errorf("removed.Date = %q, want 2024-03-10", removed.Date)
		}
	})

	t.Run("list is newest first with limit", func(t *testing.T) {
		db := newTestDB(t)
		insertHabit(t, db, newHabit("h-1", baseTime))
		for i, date := range []string{"2024-03-08", "2024-03-10", "2024-03-09"} {
			if _, _, err := db.ToggleCompletionForDate(ctx, "h-1", date, "c-"+date); err != nil {
				t.Fatalf("toggle %d error = %v", i, err)
			}
		}

		all, err := db.ListCompletions(ctx, "h-1", 0)
		if err != nil {
			t.Fatalf("ListCompletions() error = %v", err)
		}
		want := []string{"2024-03-10", "2024-03-09", "2024-03-08"}
		if len(all) != len(want) {
			t.Fatalf("len = %d, want %d", len(all), len(want))
		}
		for i := range want {
			if all[i].Date != want[i] {
				t.Errorf("all[%d].Date = %q, want %q", i, all[i].Date, want[i])
			}
		}

		limited, err := db.ListCompletions(ctx, "h-1", 2)
		if err != nil {
			t.Fatalf("ListCompletions(limit 2) error = %v", err)
		}
		if len(limited) != 2 || limited[1].Date != "2024-03-09" {
			t.Errorf("limited = %v, want two newest", limited)
		}
	})
}

func TestSQLiteDatabase_Cycles(t *testing.T) {
	ctx := context.Background()

	t.Run("latest in-progress cycle with sessions", func(t *testing.T) {
		db := newTestDB(t)
		insertCycle(t, db, newCycle("older", model.StatusInProgress, baseTime))
		insertCycle(t, db, newCycle("latest", model.StatusInProgress, baseTime.Add(time.Hour)))
		insertCycle(t, db, newCycle("done", model.StatusCompleted, baseTime.Add(2*time.Hour)))

		for _, id := range []string{"s-1", "s-2"} {
			err := db.InsertSession(ctx, &model.PomodoroSession{
				ID: id, CycleID: "latest", SessionType: model.SessionFocus,
				StartedAt: baseTime.Add(time.Hour), DurationMinutes: 25,
			})
			if err != nil {
				t.Fatalf("InsertSession(%s) error = %v", id, err)
			}
		}

		got, err := db.FindLatestCycleByStatus(ctx, model.StatusInProgress)
		if err != nil {
			t.Fatalf("FindLatestCycleByStatus() error = %v", err)
		}
		if got == nil {
			t.Fatal("FindLatestCycleByStatus() = nil, want cycle")
		}
		if got.ID != "latest" {
			t.Errorf("ID = %q, want latest", got.ID)
		}
		if len(got.Sessions) != 2 {
			t.Errorf("len(Sessions) = %d, want 2", len(got.Sessions))
		}
		if got.CompletedAt != nil {
			t.Errorf("CompletedAt = %v, want nil", got.CompletedAt)
		}
	})

	t.Run("latest returns nil when none match", func(t *testing.T) {
		db := newTestDB(t)
		insertCycle(t, db, newCycle("done", model.StatusAbandoned, baseTime))

		got, err := db.FindLatestCycleByStatus(ctx, model.StatusInProgress)
		if err != nil {
			t.Fatalf("FindLatestCycleByStatus() error = %v", err)
		}
		if got != nil {
			t.Errorf("FindLatestCycleByStatus() = %v, want nil", got)
		}
	})

	t.Run("count by status", func(t *testing.T) {
		db := newTestDB(t)
		insertCycle(t, db, newCycle("a", model.StatusInProgress, baseTime))
		insertCycle(t, db, newCycle("b", model.StatusInProgress, baseTime))
		insertCycle(t, db, newCycle("c", model.StatusCompleted, baseTime))

		n, err := db.CountCyclesByStatus(ctx, model.StatusInProgress)
		if err != nil {
			t.Fatalf("CountCyclesByStatus() error = %v", err)
		}
		if n != 2 {
			t.Errorf("CountCyclesByStatus() = %d, want 2", n)
		}
	})

	t.Run("update writes mutated fields", func(t *testing.T) {
		db := newTestDB(t)
		insertCycle(t, db, newCycle("p-1", model.StatusInProgress, baseTime))

		done := baseTime.Add(30 * time.Minute)
		got, err := db.UpdateCycle(ctx, "p-1", func(c *model.PomodoroCycle) (bool, error) {
			c.Status = model.StatusCompleted
			c.CompletedAt = &done
			c.UpdatedAt = done
			return true, nil
		})
		if err != nil {
			t.Fatalf("UpdateCycle() error = %v", err)
		}
		if got.Status != model.StatusCompleted {
			t.Errorf("Status = %v, want COMPLETED", got.Status)
		}
		if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
			t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, done)
		}

		stored, _ := db.FindCycleByID(ctx, "p-1")
		if stored.Status != model.StatusCompleted {
			t.Errorf("stored Status = %v, want COMPLETED", stored.Status)
		}
	})

	t.Run("update rolls back when mutate fails", func(t *testing.T) {
		db := newTestDB(t)
		insertCycle(t, db, newCycle("p-1", model.StatusInProgress, baseTime))

		boom := errors.New("boom")
		_, err := db.UpdateCycle(ctx, "p-1", func(c *model.PomodoroCycle) (bool, error) {
			c.Status = model.StatusAbandoned
			return false, boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("UpdateCycle() error = %v, want boom", err)
		}

		stored, _ := db.FindCycleByID(ctx, "p-1")
		if stored.Status != model.StatusInProgress {
			t.Errorf("stored Status = %v, want IN_PROGRESS", stored.Status)
		}
	})

	t.Run("update of unknown cycle is not found", func(t *testing.T) {
		db := newTestDB(t)

		_, err := db.UpdateCycle(ctx, "missing", func(c *model.PomodoroCycle) (bool, error) { return true, nil })
		if !errors.Is(err, tracker.ErrNotFound) {
			t.Errorf("UpdateCycle() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteDatabase_Sessions(t *testing.T) {
	ctx := context.Background()

	t.Run("session for unknown cycle violates foreign key", func(t *testing.T) {
		db := newTestDB(t)

		err := db.InsertSession(ctx, &model.PomodoroSession{
			ID: "s-1", CycleID: "missing", SessionType: model.SessionFocus,
			StartedAt: baseTime, DurationMinutes: 25,
		})
		if err == nil {
			t.Error("InsertSession() expected foreign key error, got nil")
		}
	})

	t.Run("update session writes completion", func(t *testing.T) {
		db := newTestDB(t)
		insertCycle(t, db, newCycle("p-1", model.StatusInProgress, baseTime))
		db.InsertSession(ctx, &model.PomodoroSession{
			ID: "s-1", CycleID: "p-1", SessionType: model.SessionShortBreak,
			StartedAt: baseTime, DurationMinutes: 5,
		})

		done := baseTime.Add(5 * time.Minute)
		got, err := db.UpdateSession(ctx, "s-1", func(s *model.PomodoroSession) error {
			s.CompletedAt = &done
			s.WasCompleted = true
			return nil
		})
		if err != nil {
			t.Fatalf("UpdateSession() error = %v", err)
		}
		if !got.WasCompleted || got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
			t.Errorf("UpdateSession() = %+v, want completed at %v", got, done)
		}
		if got.SessionType != model.SessionShortBreak {
			t.Errorf("SessionType = %v, want SHORT_BREAK", got.SessionType)
		}
	})

	t.Run("update of unknown session is not found", func(t *testing.T) {
		db := newTestDB(t)

		_, err := db.UpdateSession(ctx, "missing", func(s *model.PomodoroSession) error { return nil })
		if !errors.Is(err, tracker.ErrNotFound) {
			t.Errorf("UpdateSession() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("sum filters by type, completion and closed interval", func(t *testing.T) {
		db := newTestDB(t)
		insertCycle(t, db, newCycle("p-1", model.StatusInProgress, baseTime))

		day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		sessions := []*model.PomodoroSession{
			{ID: "midnight", SessionType: model.SessionFocus, StartedAt: day, DurationMinutes: 25, WasCompleted: true},
			{ID: "last-second", SessionType: model.SessionFocus, StartedAt: day.Add(24*time.Hour - time.Second), DurationMinutes: 20, WasCompleted: true},
			{ID: "next-day", SessionType: model.SessionFocus, StartedAt: day.Add(24 * time.Hour), DurationMinutes: 100, WasCompleted: true},
			{ID: "not-completed", SessionType: model.SessionFocus, StartedAt: day.Add(time.Hour), DurationMinutes: 100},
			{ID: "break", SessionType: model.SessionLongBreak, StartedAt: day.Add(time.Hour), DurationMinutes: 100, WasCompleted: true},
		}
		for _, s := range sessions {
			s.CycleID = "p-1"
			if err := db.InsertSession(ctx, s); err != nil {
				t.Fatalf("InsertSession(%s) error = %v", s.ID, err)
			}
		}

		total, err := db.SumSessionMinutes(ctx, tracker.SessionFilter{
			SessionType:  model.SessionFocus,
			WasCompleted: true,
			StartedFrom:  "2024-03-10T00:00:00Z",
			StartedTo:    "2024-03-10T23:59:59Z",
		})
		if err != nil {
			t.Fatalf("SumSessionMinutes() error = %v", err)
		}
		if total != 45 {
			t.Errorf("SumSessionMinutes() = %d, want 45", total)
		}
	})

	t.Run("sum is zero with no sessions", func(t *testing.T) {
		db := newTestDB(t)

		total, err := db.SumSessionMinutes(ctx, tracker.SessionFilter{
			SessionType:  model.SessionFocus,
			WasCompleted: true,
			StartedFrom:  "2024-03-10T00:00:00Z",
			StartedTo:    "2024-03-10T23:59:59Z",
		})
		if err != nil {
			t.Fatalf("SumSessionMinutes() error = %v", err)
		}
		if total != 0 {
			t.Errorf("SumSessionMinutes() = %d, want 0", total)
		}
	})

	t.Run("deleting a cycle cascades to its sessions", func(t *testing.T) {
		db := newTestDB(t)
		insertCycle(t, db, newCycle("p-1", model.StatusInProgress, baseTime))
		db.InsertSession(ctx, &model.PomodoroSession{
			ID: "s-1", CycleID: "p-1", SessionType: model.SessionFocus,
			StartedAt: baseTime, DurationMinutes: 25,
		})

		if _, err := db.db.Exec("DELETE FROM pomodoro_cycles WHERE id = 'p-1'"); err != nil {
			t.Fatalf("delete cycle: %v", err)
		}
		var n int
		if err := db.db.Get(&n, "SELECT COUNT(*) FROM pomodoro_sessions"); err != nil {
			t.Fatalf("count sessions: %v", err)
		}
		if n != 0 {
			t.Errorf("sessions after cycle delete = %d, want 0", n)
		}
	})
}

func TestSQLiteDatabase_FileLifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tracker.db")

	db, err := NewSQLiteDatabase(path)
	if err != nil {
		t.Fatalf("NewSQLiteDatabase() error = %v", err)
	}
	insertHabit(t, db, newHabit("h-1", baseTime))

	if err := db.CheckMigrations(); err != nil {
		t.Errorf("CheckMigrations() error = %v", err)
	}

	backupPath := filepath.Join(t.TempDir(), "copy.db")
	if err := db.BackupTo(ctx, backupPath); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}
	db.Close()

	copyDB, err := NewSQLiteDatabase(backupPath)
	if err != nil {
		t.Fatalf("opening backup: %v", err)
	}
	defer copyDB.Close()

	h, err := copyDB.FindHabitByID(ctx, "h-1")
	if err != nil {
		t.Fatalf("FindHabitByID() on backup error = %v", err)
	}
	if h == nil {
		t.Error("backup is missing habit h-1")
	}
}
