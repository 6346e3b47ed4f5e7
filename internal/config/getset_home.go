package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetsetHomeEnv overrides the getset home directory.
const GetsetHomeEnv = "GETSET_HOME"

// GetGetsetHome returns the getset home directory
// Priority order:
//  1. GETSET_HOME environment variable (if set)
//  2. .getset in the current working directory
//
// The directory is created if it doesn't exist
func GetGetsetHome() (string, error) {
	if home := os.Getenv(GetsetHomeEnv); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create getset home directory: %w", err)
		}
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	home := filepath.Join(cwd, ".getset")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create getset home directory: %w", err)
	}

	return home, nil
}

// HistoryDBPath returns the history database path. An explicit db_path wins;
// otherwise it is $GETSET_HOME/history/runs.db. The parent directory is
// created if needed.
func (c *Config) HistoryDBPath() (string, error) {
	path := c.History.DBPath
	if path == "" {
		home, err := GetGetsetHome()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, "history", "runs.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create history directory: %w", err)
	}
	return path, nil
}
