package tracker

import (
	"context"
	"fmt"

	"tracker-go/internal/model"
)

// HabitService owns habit lifecycle rules, completion toggling and streaks.
type HabitService struct {
	database Database
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewHabitService creates a HabitService with the provided dependencies.
func NewHabitService(database Database, logger Logger, clock Clock, idgen IDGenerator) *HabitService {
	return &HabitService{
		database: database,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// CreateHabit stores a new, unarchived habit.
func (s *HabitService) CreateHabit(ctx context.Context, title, description, icon string) (*model.Habit, error) {
	now := s.clock.Now()
	habit := &model.Habit{
		ID:          s.idgen.New(),
		Title:       title,
		Description: description,
		Icon:        icon,
		IsArchived:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.database.InsertHabit(ctx, habit); err != nil {
		return nil, StorageFailure("create habit", err)
	}

	s.logger.Info("habit created", "id", habit.ID, "title", habit.Title)
	return habit, nil
}

// ListHabits returns active (archived=false) or archived habits, most recently created first.
func (s *HabitService) ListHabits(ctx context.Context, archived bool) ([]*model.Habit, error) {
	habits, err := s.database.ListHabits(ctx, archived)
	if err != nil {
		return nil, StorageFailure("list habits", err)
	}
	return habits, nil
}

// UpdateHabit applies the fields present in patch and always refreshes updatedAt.
func (s *HabitService) UpdateHabit(ctx context.Context, id string, patch model.HabitPatch) (*model.Habit, error) {
	habit, err := s.database.UpdateHabit(ctx, id, patch, s.clock.Now())
	if err != nil {
		return nil, StorageFailure("update habit", err)
	}

	s.logger.Info("habit updated", "id", id)
	return habit, nil
}

// DeleteHabit hard-deletes a habit together with all of its completions.
func (s *HabitService) DeleteHabit(ctx context.Context, id string) error {
	if err := s.database.DeleteHabit(ctx, id); err != nil {
		return StorageFailure("delete habit", err)
	}

	s.logger.Info("habit deleted", "id", id)
	return nil
}

// ToggleRequest identifies the completion mark to flip.
type ToggleRequest struct {
	HabitID string `json:"habitId"`
	// Date is YYYY-MM-DD. Empty or malformed means today.
	Date string `json:"createdAt,omitempty"`
	// ID names an existing completion to remove.
	ID string `json:"id,omitempty"`
}

// ToggleResult reports the outcome of a toggle.
type ToggleResult struct {
	Completed  bool                   `json:"completed"`
	Completion *model.HabitCompletion `json:"completion"`
}

// ToggleCompletion sets or unsets a habit's completion mark for one day.
//
// With an explicit completion id the row is removed. Otherwise the mark for
// the requested day flips: inserted when absent, removed when present, so
// toggling twice restores the original set. A malformed date falls back to
// today on purpose; it is logged, not reported.
func (s *HabitService) ToggleCompletion(ctx context.Context, req ToggleRequest) (*ToggleResult, error) {
	if req.ID != "" {
		removed, err := s.database.DeleteCompletion(ctx, req.HabitID, req.ID)
		if err != nil {
			return nil, StorageFailure("toggle completion", err)
		}
		s.logger.Info("completion removed", "habit_id", req.HabitID, "date", removed.Date)
		return &ToggleResult{Completed: false, Completion: removed}, nil
	}

	date := s.resolveDate(req.Date)
	completion, created, err := s.database.ToggleCompletionForDate(ctx, req.HabitID, date, s.idgen.New())
	if err != nil {
		return nil, StorageFailure("toggle completion", err)
	}

	if created {
		s.logger.Info("completion added", "habit_id", req.HabitID, "date", date)
	} else {
		s.logger.Info("completion removed", "habit_id", req.HabitID, "date", date)
	}
	return &ToggleResult{Completed: created, Completion: completion}, nil
}

// resolveDate returns the normalized YYYY-MM-DD for raw, or today's local date.
func (s *HabitService) resolveDate(raw string) string {
	today := FormatDate(s.clock.Now())
	if raw == "" {
		return today
	}
	d, err := ParseDate(raw)
	if err != nil {
		s.logger.Warn("malformed completion date, using today", "date", raw, "today", today)
		return today
	}
	return FormatDate(d)
}

// ListCompletions returns a habit's completions, newest date first.
// A nil limit returns every completion.
func (s *HabitService) ListCompletions(ctx context.Context, habitID string, limit *int) ([]*model.HabitCompletion, error) {
	n := 0
	if limit != nil {
		if *limit <= 0 {
			return nil, Invalid("list completions", fmt.Errorf("limit must be positive, got %d", *limit))
		}
		n = *limit
	}

	completions, err := s.database.ListCompletions(ctx, habitID, n)
	if err != nil {
		return nil, StorageFailure("list completions", err)
	}
	return completions, nil
}
