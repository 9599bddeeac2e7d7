package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults are the paths tracker uses when the config says nothing else.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - TRACKER_CONFIG_PATH: config file location (default: ~/.config/tracker.toml)
//   - TRACKER_HOME: base directory for tracker data (default: ~/.local/share/tracker)
func GetDefaults() (*Defaults, error) {
	configPath, err := fromEnvOrHome("TRACKER_CONFIG_PATH", ".config", "tracker.toml")
	if err != nil {
		return nil, err
	}

	baseDir, err := fromEnvOrHome("TRACKER_HOME", ".local", "share", "tracker")
	if err != nil {
		return nil, err
	}

	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// fromEnvOrHome returns the value of env, or the home-relative path built from elem.
func fromEnvOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
