package tracker

import (
	"errors"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrNotFound means a lookup, update or delete addressed an unknown id.
	// Callers treat it as "nothing changed".
	ErrNotFound = errors.New("not found")
	// ErrValidation means the request itself was malformed.
	ErrValidation = errors.New("invalid request")
	// ErrStorage means the embedded store failed (connection, constraint, scan).
	ErrStorage = errors.New("storage failure")
	// ErrRemote means an entitlement or checkout call failed or returned garbage.
	ErrRemote = errors.New("remote failure")
)

// Validation failures with a fixed meaning.
var (
	ErrInvalidTransition = errors.New("cycle status cannot leave a terminal state")
	ErrSessionCompleted  = errors.New("session already completed")
	ErrInvalidDate       = errors.New("date must be formatted YYYY-MM-DD")
)

// Error carries the kind of failure plus enough context for a human-readable message.
type Error struct {
	Kind   error  // One of ErrNotFound, ErrValidation, ErrStorage, ErrRemote
	Op     string // Operation that failed, e.g. "update habit"
	Entity string // Entity involved, e.g. "habit"
	ID     string // Entity id, if known
	Err    error  // Underlying cause
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Entity != "" && e.ID != "" {
		parts = append(parts, e.Entity+" "+e.ID)
	}
	switch {
	case e.Err != nil:
		parts = append(parts, e.Err.Error())
	case e.Kind != nil:
		parts = append(parts, e.Kind.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error kind as well as anything in the wrapped chain.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NotFound builds an ErrNotFound error for an entity id.
func NotFound(op, entity, id string) error {
	return &Error{Kind: ErrNotFound, Op: op, Entity: entity, ID: id}
}

// Invalid builds an ErrValidation error wrapping cause.
func Invalid(op string, cause error) error {
	return &Error{Kind: ErrValidation, Op: op, Err: cause}
}

// StorageFailure wraps a store error. Errors that already carry a kind pass through.
func StorageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	return &Error{Kind: ErrStorage, Op: op, Err: err}
}

// RemoteFailure wraps an entitlement gateway error.
func RemoteFailure(op string, err error) error {
	return &Error{Kind: ErrRemote, Op: op, Err: err}
}

// IsNotFound reports whether err is an ErrNotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
