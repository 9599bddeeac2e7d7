package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/tracker",
		LogDir:  "/home/user/.local/share/tracker/log",
		Debug:   true,
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: "/home/user/.local/share/tracker/db",
		},
		Entitlement: EntitlementConfig{
			BaseURL:        "https://licenses.example.com",
			TimeoutSeconds: 5,
			APIKey:         "secret",
			InstanceName:   "laptop",
			LicenseStore:   "memory",
		},
		Backup: BackupConfig{
			Vault: VaultConfig{Type: "s3", Name: "offsite", S3Bucket: "tracker-backups", S3Prefix: "me/", S3Region: "eu-west-1"},
			Encryption: EncryptionConfig{
				Type:           "age",
				PublicKeyPath:  "/keys/tracker.pub",
				PrivateKeyPath: "/keys/tracker.key",
			},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if !got.Debug {
		t.Error("Debug = false, want true")
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if got.Entitlement != original.Entitlement {
		t.Errorf("Entitlement = %+v, want %+v", got.Entitlement, original.Entitlement)
	}
	if got.Backup.Vault != original.Backup.Vault {
		t.Errorf("Backup.Vault = %+v, want %+v", got.Backup.Vault, original.Backup.Vault)
	}
	if got.Backup.Encryption != original.Backup.Encryption {
		t.Errorf("Backup.Encryption = %+v, want %+v", got.Backup.Encryption, original.Backup.Encryption)
	}
}

func TestManager_Read_InvalidTOML(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("database = [unterminated")); err == nil {
		t.Fatal("Read() expected error for malformed TOML")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/tracker")

	if cfg.BaseDir != "/data/tracker" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/tracker")
	}
	if cfg.LogDir != "/data/tracker/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/tracker/log")
	}
	if cfg.Database.Type != "sqlite" || cfg.Database.DataDir != "/data/tracker/db" {
		t.Errorf("Database = %+v, want sqlite in /data/tracker/db", cfg.Database)
	}
	if cfg.Entitlement.InstanceName == "" {
		t.Error("Entitlement.InstanceName is empty")
	}
	if cfg.Entitlement.LicenseStore != "keyring" {
		t.Errorf("Entitlement.LicenseStore = %q, want %q", cfg.Entitlement.LicenseStore, "keyring")
	}
	if cfg.Backup.Encryption.PublicKeyPath != "/data/tracker/keys/tracker.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Backup.Encryption.PublicKeyPath, "/data/tracker/keys/tracker.pub")
	}
	if cfg.Backup.Vault.FSVaultRoot != "/data/tracker/backups" {
		t.Errorf("Vault.FSVaultRoot = %q, want %q", cfg.Backup.Vault.FSVaultRoot, "/data/tracker/backups")
	}
}

func TestEntitlementConfig_Timeout(t *testing.T) {
	tests := []struct {
		seconds int
		want    time.Duration
	}{
		{0, DefaultRemoteTimeout},
		{-3, DefaultRemoteTimeout},
		{3, 3 * time.Second},
	}
	for _, tt := range tests {
		got := EntitlementConfig{TimeoutSeconds: tt.seconds}.Timeout()
		if got != tt.want {
			t.Errorf("Timeout() with %d seconds = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "tracker.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tracker.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tracker.toml")
		cfg := NewConfig(dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
		if got.BaseDir != dir {
			t.Errorf("BaseDir = %q, want %q", got.BaseDir, dir)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/tracker.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
