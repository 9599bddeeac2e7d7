package model

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is returned when text does not name a known enum variant.
var ErrUnknownValue = errors.New("unrecognized value")

// CycleStatus is the lifecycle state of a pomodoro cycle.
// COMPLETED and ABANDONED are terminal.
type CycleStatus string

const (
	StatusInProgress CycleStatus = "IN_PROGRESS"
	StatusCompleted  CycleStatus = "COMPLETED"
	StatusAbandoned  CycleStatus = "ABANDONED"
)

// ParseCycleStatus converts stored or user-supplied text to a CycleStatus.
func ParseCycleStatus(s string) (CycleStatus, error) {
	switch CycleStatus(s) {
	case StatusInProgress, StatusCompleted, StatusAbandoned:
		return CycleStatus(s), nil
	}
	return "", fmt.Errorf("%w: cycle status %q", ErrUnknownValue, s)
}

// IsTerminal reports whether no transition may leave this status.
func (s CycleStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

func (s CycleStatus) String() string { return string(s) }

func (s CycleStatus) MarshalText() ([]byte, error) { return []byte(s), nil }

func (s *CycleStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseCycleStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SessionType identifies what kind of interval a session is.
type SessionType string

const (
	SessionFocus      SessionType = "FOCUS"
	SessionShortBreak SessionType = "SHORT_BREAK"
	SessionLongBreak  SessionType = "LONG_BREAK"
)

// ParseSessionType converts stored or user-supplied text to a SessionType.
func ParseSessionType(s string) (SessionType, error) {
	switch SessionType(s) {
	case SessionFocus, SessionShortBreak, SessionLongBreak:
		return SessionType(s), nil
	}
	return "", fmt.Errorf("%w: session type %q", ErrUnknownValue, s)
}

func (t SessionType) String() string { return string(t) }

func (t SessionType) MarshalText() ([]byte, error) { return []byte(t), nil }

func (t *SessionType) UnmarshalText(text []byte) error {
	parsed, err := ParseSessionType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
