package models

import (
	"fmt"
	"strings"
)

// CommandEntry is a single named shell command from a command file.
// The command text is handed to the shell verbatim.
type CommandEntry struct {
	Title   string `yaml:"title" toml:"title"`
	Command string `yaml:"command" toml:"command"`
}

// Validate checks that both title and command are present.
func (c CommandEntry) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("command title is required")
	}
	if strings.TrimSpace(c.Command) == "" {
		return fmt.Errorf("command %q: command text is required", c.Title)
	}
	return nil
}

// TelemetryConfig holds the optional event beacon settings found in a command file.
// The parsers require secret_key to be present, but it may be empty.
type TelemetryConfig struct {
	SecretKey      string `yaml:"secret_key" toml:"secret_key"`
	EventNamespace string `yaml:"event_namespace" toml:"event_namespace"`
}

// Namespace returns the configured event namespace or "getset".
func (t TelemetryConfig) Namespace() string {
	if t.EventNamespace == "" {
		return "getset"
	}
	return t.EventNamespace
}

// CommandFile is the parsed content of a command file.
type CommandFile struct {
	Commands  []CommandEntry   `yaml:"commands" toml:"commands"`
	Telemetry *TelemetryConfig `yaml:"platformx" toml:"platformx"`

	// FilePath is the file the commands were loaded from.
	FilePath string `yaml:"-" toml:"-"`
}

// Validate checks the command list. An empty platformx secret_key is allowed.
func (f *CommandFile) Validate() error {
	if len(f.Commands) == 0 {
		return fmt.Errorf("no commands defined")
	}
	for i, c := range f.Commands {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("command %d: %w", i+1, err)
		}
	}
	return nil
}
