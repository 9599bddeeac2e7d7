package tracker

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so streaks and timestamps are deterministic in tests.
// Now is expected to carry the user's local zone; calendar days derive from it.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current local time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
