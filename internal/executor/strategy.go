package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/harrison/getset/internal/models"
	"github.com/mattn/go-isatty"
)

// DefaultShell interprets command text when none is configured.
const DefaultShell = "sh"

// Strategy runs one command's text in a shell and reports the outcome.
// A non-zero exit is reported through the outcome, not the error; the error
// is reserved for processes that could not be spawned or waited on.
type Strategy interface {
	Execute(ctx context.Context, command string) (models.ExecutionOutcome, error)
}

// Mode selects how commands are attached to the terminal.
type Mode int

const (
	// ModeAuto uses a pseudo-terminal when stdout is a terminal.
	ModeAuto Mode = iota
	// ModePTY always tries a pseudo-terminal first.
	ModePTY
	// ModePiped always captures output through pipes.
	ModePiped
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModePTY:
		return "always"
	case ModePiped:
		return "never"
	default:
		return "unknown"
	}
}

// ParseMode converts a config value (auto, always, never) into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "always", "pty":
		return ModePTY, nil
	case "never", "piped":
		return ModePiped, nil
	default:
		return ModeAuto, fmt.Errorf("invalid pty mode %q, must be one of: auto, always, never", s)
	}
}

// StrategyConfig describes the process streams and shell used by a Strategy.
type StrategyConfig struct {
	Mode          Mode
	Shell         string
	MaxLineLength int
	Stdin         *os.File
	Stdout        *os.File
	Stderr        *os.File

	// OnFallback is called when a pseudo-terminal could not be used.
	OnFallback func(err error)
}

// NewStrategy picks the strategy for cfg. In auto mode the decision is made
// once, from whether cfg.Stdout is attached to a terminal.
func NewStrategy(cfg StrategyConfig) Strategy {
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	piped := &PipedStrategy{
		Shell:         cfg.Shell,
		Stdin:         cfg.Stdin,
		Stdout:        cfg.Stdout,
		Stderr:        cfg.Stderr,
		MaxLineLength: cfg.MaxLineLength,
	}

	usePTY := false
	switch cfg.Mode {
	case ModePTY:
		usePTY = true
	case ModeAuto:
		usePTY = IsTerminal(cfg.Stdout)
	}

	if !usePTY {
		return piped
	}

	return &PTYStrategy{
		Shell:      cfg.Shell,
		Stdin:      cfg.Stdin,
		Stdout:     cfg.Stdout,
		Stderr:     cfg.Stderr,
		Fallback:   piped,
		OnFallback: cfg.OnFallback,
	}
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PipedStrategy captures stdout and stderr through pipes and relays each
// line to the matching writer as it arrives.
type PipedStrategy struct {
	Shell         string
	Stdin         io.Reader
	Stdout        io.Writer
	Stderr        io.Writer
	MaxLineLength int
}

// Execute runs command via "<shell> -c" and waits for it to exit.
func (p *PipedStrategy) Execute(ctx context.Context, command string) (models.ExecutionOutcome, error) {
	shell := shellOrDefault(p.Shell)
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Stdin = p.Stdin

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return models.ExecutionOutcome{ExitCode: -1}, &SpawnError{Op: "spawn", Shell: shell, Err: err}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return models.ExecutionOutcome{ExitCode: -1}, &SpawnError{Op: "spawn", Shell: shell, Err: err}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return models.ExecutionOutcome{Elapsed: time.Since(start), ExitCode: -1},
			&SpawnError{Op: "spawn", Shell: shell, Err: err}
	}

	// Wait closes the pipes, so the relay must be drained first.
	for line := range Relay(stdoutPipe, stderrPipe, p.MaxLineLength) {
		w := p.Stdout
		if line.Stream == StreamStderr {
			w = p.Stderr
		}
		if w != nil {
			fmt.Fprintln(w, line.Text)
		}
	}

	return waitOutcome(cmd, shell, start)
}

// waitOutcome waits for cmd and turns its exit into an outcome.
func waitOutcome(cmd *exec.Cmd, shell string, start time.Time) (models.ExecutionOutcome, error) {
	err := cmd.Wait()
	outcome := models.ExecutionOutcome{Elapsed: time.Since(start)}

	if err == nil {
		outcome.Success = true
		return outcome, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
		return outcome, nil
	}

	outcome.ExitCode = -1
	return outcome, &SpawnError{Op: "wait", Shell: shell, Err: err}
}

func shellOrDefault(shell string) string {
	if shell == "" {
		return DefaultShell
	}
	return shell
}
