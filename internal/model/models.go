package model

import "time"

// Habit is a user-defined recurring activity tracked by daily completion marks.
// Archiving hides a habit without destroying it or its completions.
type Habit struct {
	ID          string    `json:"id"` // UUID
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	IsArchived  bool      `json:"isArchived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HabitCompletion records that a habit was completed on one calendar day.
// At most one completion exists per (HabitID, Date).
type HabitCompletion struct {
	ID      string `json:"id"`      // UUID
	HabitID string `json:"habitId"` // Foreign key to Habit
	Date    string `json:"date"`    // YYYY-MM-DD, no time component
}

// PomodoroCycle is one pomodoro work unit made of focus and break sessions.
// Durations are in minutes.
type PomodoroCycle struct {
	ID                     string      `json:"id"`
	Status                 CycleStatus `json:"status"`
	FocusDuration          int         `json:"focusDuration"`
	ShortBreakDuration     int         `json:"shortBreakDuration"`
	LongBreakDuration      int         `json:"longBreakDuration"`
	SessionsUntilLongBreak int         `json:"sessionsUntilLongBreak"`
	AutoStartBreaks        bool        `json:"autoStartBreaks"`
	AutoStartPomodoros     bool        `json:"autoStartPomodoros"`
	StartedAt              time.Time   `json:"startedAt"`
	CompletedAt            *time.Time  `json:"completedAt"`
	UpdatedAt              time.Time   `json:"updatedAt"`
}

// PomodoroCycleWithSessions is a cycle with every session that belongs to it.
// Session order is unspecified.
type PomodoroCycleWithSessions struct {
	PomodoroCycle
	Sessions []*PomodoroSession `json:"sessions"`
}

// PomodoroSession is one timed interval inside a cycle.
type PomodoroSession struct {
	ID              string      `json:"id"`
	CycleID         string      `json:"cycleId"` // Foreign key to PomodoroCycle
	SessionType     SessionType `json:"sessionType"`
	StartedAt       time.Time   `json:"startedAt"`
	CompletedAt     *time.Time  `json:"completedAt"`
	DurationMinutes int         `json:"durationMinutes"`
	WasCompleted    bool        `json:"wasCompleted"`
}

// CycleSettings are the user preferences a cycle is started with.
type CycleSettings struct {
	FocusDuration          int  `json:"focusDuration"`
	ShortBreakDuration     int  `json:"shortBreakDuration"`
	LongBreakDuration      int  `json:"longBreakDuration"`
	SessionsUntilLongBreak int  `json:"sessionsUntilLongBreak"`
	AutoStartBreaks        bool `json:"autoStartBreaks"`
	AutoStartPomodoros     bool `json:"autoStartPomodoros"`
}

// HabitPatch carries a partial habit update. Nil fields are left untouched.
type HabitPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	IsArchived  *bool   `json:"isArchived,omitempty"`
}

// IsEmpty reports whether the patch changes no habit field.
func (p HabitPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Icon == nil && p.IsArchived == nil
}
