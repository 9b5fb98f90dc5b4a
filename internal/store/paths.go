// Package store provides persistent storage for façade settings and trap
// builder checkpoints, grounded on the teacher's internal/storage/paths.go
// platform-directory idiom.
package store

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "morrispdb"

// GetDataDir returns the platform-specific data directory for the
// application:
//   - macOS: ~/Library/Application Support/morrispdb/
//   - Linux: ~/.local/share/morrispdb/
//   - Windows: %APPDATA%/morrispdb/
func GetDataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// GetDatabaseDir returns the directory for the BadgerDB-backed settings and
// checkpoint store (distinct from the perfect-database sector files
// themselves, which live wherever perfect_database_path points).
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	return dbDir, nil
}

// GetCheckpointDir returns the directory for trap builder checkpoint files
// (§4.10's atomic-rename checkpoint writer), separate from the badger store
// so checkpoints remain plain files an operator can inspect or copy.
func GetCheckpointDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	ckptDir := filepath.Join(dataDir, "checkpoints")
	if err := os.MkdirAll(ckptDir, 0755); err != nil {
		return "", err
	}
	return ckptDir, nil
}
