// Package backup snapshots the tracker database into a vault and restores it.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tracker-go/internal/tracker"
)

const (
	namePrefix = "tracker-"
	nameSuffix = ".db"
	// nameTimeLayout sorts lexically in time order.
	nameTimeLayout = "20060102T150405Z"
)

var (
	// ErrSnapshotNotFound is wrapped by vaults when a snapshot name is unknown.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrDestinationExists is returned by Restore instead of overwriting a file.
	ErrDestinationExists = errors.New("restore destination already exists")
	// ErrEncryptionNotConfigured means keys were never generated.
	ErrEncryptionNotConfigured = errors.New("encryption keys are not configured (run 'tracker backup keygen')")

	errRestoreAborted = errors.New("restore aborted")
)

// Snapshotter writes a consistent copy of the live database to a file.
type Snapshotter interface {
	BackupTo(ctx context.Context, destPath string) error
}

// Service takes and restores database snapshots.
type Service struct {
	db        Snapshotter
	vault     Vault
	encryptor Encryptor
	logger    tracker.Logger
	clock     tracker.Clock
}

// NewService creates a backup Service.
func NewService(db Snapshotter, vault Vault, encryptor Encryptor, logger tracker.Logger, clock tracker.Clock) *Service {
	return &Service{
		db:        db,
		vault:     vault,
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
	}
}

// Backup snapshots the database, seals it and stores it in the vault.
// It returns the snapshot name.
func (s *Service) Backup(ctx context.Context) (string, error) {
	if !s.encryptor.IsConfigured() {
		return "", ErrEncryptionNotConfigured
	}

	tmpDir, err := os.MkdirTemp("", "tracker-backup-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshotPath := filepath.Join(tmpDir, "snapshot.db")
	if err := s.db.BackupTo(ctx, snapshotPath); err != nil {
		return "", err
	}

	sealedPath := snapshotPath + ".sealed"
	if err := sealFile(s.encryptor, snapshotPath, sealedPath); err != nil {
		return "", err
	}

	name := namePrefix + s.clock.Now().UTC().Format(nameTimeLayout) + nameSuffix + s.encryptor.Extension()
	if err := putFile(ctx, s.vault, name, sealedPath); err != nil {
		return "", fmt.Errorf("storing snapshot %s: %w", name, err)
	}

	s.logger.Info("backup stored", "name", name)
	return name, nil
}

// List returns the stored snapshot names, newest first.
func (s *Service) List(ctx context.Context) ([]string, error) {
	names, err := s.vault.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	var snapshots []string
	for _, n := range names {
		if strings.HasPrefix(n, namePrefix) && strings.Contains(n, nameSuffix) {
			snapshots = append(snapshots, n)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(snapshots)))
	return snapshots, nil
}

// Restore fetches snapshot name, unseals it with passphrase and writes the
// database file to dest. dest must not exist yet.
func (s *Service) Restore(ctx context.Context, name, passphrase, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dest)
	}
	if ext := s.encryptor.Extension(); !strings.HasSuffix(name, nameSuffix+ext) {
		return fmt.Errorf("snapshot %s was not sealed with the configured encryption", name)
	}

	dec, err := s.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating restore directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".restore-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	pr, pw := io.Pipe()
	fetched := make(chan error, 1)
	go func() {
		err := s.vault.Get(ctx, name, pw)
		pw.CloseWithError(err)
		fetched <- err
	}()

	_, err = unseal(dec, pr, tmp)
	pr.CloseWithError(errRestoreAborted)
	if fetchErr := <-fetched; fetchErr != nil && !errors.Is(fetchErr, errRestoreAborted) {
		tmp.Close()
		return fmt.Errorf("fetching %s: %w", name, fetchErr)
	}
	if err != nil {
		tmp.Close()
		return fmt.Errorf("restoring %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing restored file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("moving restored file: %w", err)
	}

	s.logger.Info("backup restored", "name", name, "dest", dest)
	return nil
}

// unseal decrypts r into w, then drains r so a vault error that arrives after
// the last decrypted byte still surfaces.
func unseal(dec DecryptionContext, r io.Reader, w io.Writer) (int64, error) {
	if err := dec.Decrypt(r, w); err != nil {
		return 0, err
	}
	return io.Copy(io.Discard, r)
}

func sealFile(enc Encryptor, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating sealed snapshot: %w", err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	return out.Close()
}

func putFile(ctx context.Context, v Vault, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return v.Put(ctx, name, f, info.Size())
}
