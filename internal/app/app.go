package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"tracker-go/internal/backup"
	"tracker-go/internal/config"
	"tracker-go/internal/database"
	"tracker-go/internal/database/migrations"
	"tracker-go/internal/encryption"
	"tracker-go/internal/entitlement"
	"tracker-go/internal/keyring"
	"tracker-go/internal/tracker"
	"tracker-go/internal/vault"
)

// TrackerApp is the application layer between the CLI and the tracking services.
// It constructs all dependencies from config and manages the DB lifecycle on Close.
type TrackerApp struct {
	cfg     *config.Config
	db      *database.SQLiteDatabase
	logger  tracker.Logger
	logFile io.Closer
	clock   tracker.Clock

	habits   *tracker.HabitService
	pomodoro *tracker.PomodoroService
	licenses *tracker.LicenseService
	dispatch *Dispatcher

	backups *backup.Service
}

// NewTrackerApp creates a fully wired TrackerApp from the given config.
// Pending schema migrations are applied. Warnings go to console.
// The caller must call Close when done.
func NewTrackerApp(cfg *config.Config, console io.Writer) (*TrackerApp, error) {
	runID := time.Now().UTC().Format("20060102T150405Z")
	sl, logFile, err := newLogger(cfg.LogDir, runID, cfg.Debug, console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: sl}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store, err := keyring.NewLicenseStore(cfg.Entitlement.LicenseStore, cfg.Entitlement.KeyringService)
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating license store: %w", err)
	}

	clock := tracker.RealClock{}
	ids := tracker.UUIDGenerator{}
	habits := tracker.NewHabitService(db, logger, clock, ids)
	pomodoro := tracker.NewPomodoroService(db, logger, clock, ids)
	licenses := tracker.NewLicenseService(entitlement.NewClientFromConfig(cfg.Entitlement), store, logger, cfg.Entitlement.InstanceName)

	logger.Debug("app started", "database", db.Path())

	return &TrackerApp{
		cfg:      cfg,
		db:       db,
		logger:   logger,
		logFile:  logFile,
		clock:    clock,
		habits:   habits,
		pomodoro: pomodoro,
		licenses: licenses,
		dispatch: NewDispatcher(habits, pomodoro, licenses),
	}, nil
}

// Habits returns the habit tracking service.
func (a *TrackerApp) Habits() *tracker.HabitService { return a.habits }

// Pomodoro returns the pomodoro service.
func (a *TrackerApp) Pomodoro() *tracker.PomodoroService { return a.pomodoro }

// Licenses returns the license service.
func (a *TrackerApp) Licenses() *tracker.LicenseService { return a.licenses }

// Operations lists everything Call accepts.
func (a *TrackerApp) Operations() []Operation { return a.dispatch.Operations() }

// Call runs one named operation with a JSON argument object.
func (a *TrackerApp) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	result, err := a.dispatch.Call(ctx, name, args)
	if err != nil {
		a.logger.Error("operation failed", "op", name, "err", err)
		return nil, err
	}
	return result, nil
}

// DatabaseStatus reports the database location and its schema version.
func (a *TrackerApp) DatabaseStatus() (string, *migrations.Status, error) {
	status, err := a.db.MigrationStatus()
	if err != nil {
		return "", nil, err
	}
	return a.db.Path(), status, nil
}

// backupService builds the vault and encryptor on first use so that commands
// that never touch backups don't depend on the vault being reachable.
func (a *TrackerApp) backupService(ctx context.Context) (*backup.Service, error) {
	if a.backups != nil {
		return a.backups, nil
	}

	v, err := vault.NewVaultFromConfig(ctx, a.cfg.Backup.Vault)
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}
	if err := v.ValidateSetup(ctx); err != nil {
		return nil, fmt.Errorf("vault %s: %w", a.cfg.Backup.Vault.Name, err)
	}

	enc, err := encryption.NewEncryptorFromConfig(a.cfg.Backup.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	a.backups = backup.NewService(a.db, v, enc, a.logger, a.clock)
	return a.backups, nil
}

// Backup snapshots the database into the configured vault and returns the
// snapshot name.
func (a *TrackerApp) Backup(ctx context.Context) (string, error) {
	svc, err := a.backupService(ctx)
	if err != nil {
		return "", err
	}
	return svc.Backup(ctx)
}

// ListBackups returns the snapshot names in the vault, newest first.
func (a *TrackerApp) ListBackups(ctx context.Context) ([]string, error) {
	svc, err := a.backupService(ctx)
	if err != nil {
		return nil, err
	}
	return svc.List(ctx)
}

// BackupsEncrypted reports whether snapshots are sealed and restores need a passphrase.
func (a *TrackerApp) BackupsEncrypted() bool {
	return a.cfg.Backup.Encryption.Type != "none"
}

// RestoreBackup writes snapshot name to dest. The live database is not touched.
func (a *TrackerApp) RestoreBackup(ctx context.Context, name, passphrase, dest string) error {
	svc, err := a.backupService(ctx)
	if err != nil {
		return err
	}
	return svc.Restore(ctx, name, passphrase, dest)
}

// Close closes the database and the log file.
func (a *TrackerApp) Close() error {
	var firstErr error
	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// GenerateKeys creates the backup key pair described by cfg, protecting the
// private key with passphrase.
func GenerateKeys(cfg config.EncryptionConfig, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg)
	if err != nil {
		return err
	}
	return enc.Setup(passphrase)
}
