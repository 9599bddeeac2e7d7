package backup

import (
	"context"
	"io"
)

// Vault stores named database snapshots.
// All operations stream through io.Reader/io.Writer.
type Vault interface {
	// Put stores a snapshot under name, replacing any existing one.
	// size is the number of bytes that will be read from r.
	Put(ctx context.Context, name string, r io.Reader, size int64) error

	// Get writes the snapshot stored under name to w.
	// It returns an error wrapping ErrSnapshotNotFound when there is none.
	Get(ctx context.Context, name string, w io.Writer) error

	// List returns the names of all stored snapshots in no particular order.
	List(ctx context.Context) ([]string, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup(ctx context.Context) error
}
