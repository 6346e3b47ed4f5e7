package executor

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoMatch indicates a step filter selected no commands.
	ErrNoMatch = errors.New("no steps matched")

	// ErrCommandFailed indicates a command exited with non-zero status.
	ErrCommandFailed = errors.New("command failed")
)

// NoMatchError reports the filter that selected nothing.
type NoMatchError struct {
	Filter string
}

// Error implements the error interface for NoMatchError.
func (e *NoMatchError) Error() string {
	return fmt.Sprintf("No steps found matching '%s'", e.Filter)
}

// Is lets errors.Is match ErrNoMatch.
func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// SpawnError represents a shell process that could not be started or waited on.
type SpawnError struct {
	Op    string // "spawn" or "wait"
	Shell string
	Err   error
}

// Error implements the error interface for SpawnError.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to %s command via %s: %v", e.Op, e.Shell, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// CommandFailedError is returned when a command does not succeed.
// It carries what reporting and telemetry need.
type CommandFailedError struct {
	Title     string        // Title of the failing command
	Status    string        // Exit status description
	Duration  time.Duration // Elapsed time of the attempt
	Err       error         // Underlying error (optional)
	Timestamp time.Time     // When the failure was observed
}

// NewCommandFailedError creates a CommandFailedError with the current timestamp.
func NewCommandFailedError(title, status string, duration time.Duration, err error) *CommandFailedError {
	return &CommandFailedError{
		Title:     title,
		Status:    status,
		Duration:  duration,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface for CommandFailedError.
func (e *CommandFailedError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("command %q failed: %s", e.Title, e.Status))
	if e.Err != nil && e.Err.Error() != e.Status {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *CommandFailedError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrCommandFailed.
func (e *CommandFailedError) Is(target error) bool {
	return target == ErrCommandFailed
}

// exitStatus describes a process exit code the way os/exec does.
func exitStatus(code int) string {
	if code < 0 {
		return "terminated by signal"
	}
	return fmt.Sprintf("exit status %d", code)
}

// IsNoMatchError checks if the error is or wraps a NoMatchError.
func IsNoMatchError(err error) bool {
	if err == nil {
		return false
	}
	var ne *NoMatchError
	return errors.As(err, &ne)
}

// IsSpawnError checks if the error is or wraps a SpawnError.
func IsSpawnError(err error) bool {
	if err == nil {
		return false
	}
	var se *SpawnError
	return errors.As(err, &se)
}

// IsCommandFailedError checks if the error is or wraps a CommandFailedError.
func IsCommandFailedError(err error) bool {
	if err == nil {
		return false
	}
	var ce *CommandFailedError
	return errors.As(err, &ce)
}
