package database

import (
	"fmt"
	"os"
	"path/filepath"

	"tracker-go/internal/config"
)

// DatabaseFileName is the SQLite file created inside data_dir.
const DatabaseFileName = "tracker.db"

// NewDatabaseFromConfig creates a SQLiteDatabase based on the database config type.
// Pending migrations are applied before it is returned.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data_dir: %w", err)
		}
		return NewSQLiteDatabase(filepath.Join(cfg.DataDir, DatabaseFileName))
	case "memory":
		return NewSQLiteDatabase(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
