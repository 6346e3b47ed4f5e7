// Package config loads getset tool settings from .getset/config.yaml and
// merges them with command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrison/getset/internal/executor"
	"github.com/harrison/getset/internal/logger"
)

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database; empty means
	// $GETSET_HOME/history/runs.db
	DBPath string `yaml:"db_path"`
}

// Config represents getset configuration options
type Config struct {
	// LogLevel sets the diagnostic verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written; empty disables file logging
	LogDir string `yaml:"log_dir"`

	// Shell is the program that receives "-c <command>"
	Shell string `yaml:"shell"`

	// PTY selects the execution mode: auto, always or never
	PTY string `yaml:"pty"`

	// MaxLineLength limits a single relayed output line in piped mode
	MaxLineLength int `yaml:"max_line_length"`

	// TelemetryEndpoint receives telemetry events; empty uses the built-in endpoint
	TelemetryEndpoint string `yaml:"telemetry_endpoint"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		LogDir:        "",
		Shell:         executor.DefaultShell,
		PTY:           executor.ModeAuto.String(),
		MaxLineLength: executor.DefaultMaxLineLength,
		History: HistoryConfig{
			Enabled: false,
			DBPath:  "",
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}
	if fileCfg.Shell != "" {
		cfg.Shell = fileCfg.Shell
	}
	if fileCfg.PTY != "" {
		cfg.PTY = fileCfg.PTY
	}
	if fileCfg.TelemetryEndpoint != "" {
		cfg.TelemetryEndpoint = fileCfg.TelemetryEndpoint
	}

	// Nested and numeric keys are applied when present, even if zero, so
	// that Validate can reject them.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["max_line_length"]; exists {
			cfg.MaxLineLength = fileCfg.MaxLineLength
		}
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			historyMap, _ := historySection.(map[string]interface{})
			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = fileCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = fileCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .getset/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".getset", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel *string, logDir *string, shell *string, pty *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if shell != nil {
		c.Shell = *shell
	}
	if pty != nil {
		c.PTY = *pty
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Shell == "" {
		return fmt.Errorf("shell cannot be empty")
	}

	if _, err := executor.ParseMode(c.PTY); err != nil {
		return fmt.Errorf("invalid pty: %w", err)
	}

	if c.MaxLineLength <= 0 {
		return fmt.Errorf("max_line_length must be > 0, got %d", c.MaxLineLength)
	}

	return nil
}
