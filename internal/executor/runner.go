package executor

import (
	"context"
	"time"

	"github.com/harrison/getset/internal/models"
)

// StepRunner runs a single command entry end-to-end.
type StepRunner interface {
	Run(ctx context.Context, entry models.CommandEntry, verbose bool) (time.Duration, error)
}

// CommandRunner wraps a Strategy with start and finish markers.
type CommandRunner struct {
	strategy Strategy
	logger   Logger
}

// NewCommandRunner creates a CommandRunner. A nil logger discards markers.
func NewCommandRunner(strategy Strategy, logger Logger) *CommandRunner {
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &CommandRunner{strategy: strategy, logger: logger}
}

// Run prints the start marker, executes entry, then prints the finish marker.
// It returns the elapsed time on success and a *CommandFailedError otherwise.
func (r *CommandRunner) Run(ctx context.Context, entry models.CommandEntry, verbose bool) (time.Duration, error) {
	r.logger.LogCommandStart(entry, verbose)

	outcome, err := r.strategy.Execute(ctx, entry.Command)
	if err != nil {
		outcome.Success = false
	}

	r.logger.LogCommandResult(entry, outcome)

	if err != nil {
		return outcome.Elapsed, NewCommandFailedError(entry.Title, err.Error(), outcome.Elapsed, err)
	}
	if !outcome.Success {
		return outcome.Elapsed, NewCommandFailedError(entry.Title, exitStatus(outcome.ExitCode), outcome.Elapsed, nil)
	}

	return outcome.Elapsed, nil
}
