package executor

import (
	"context"
	"time"

	"github.com/harrison/getset/internal/models"
)

// Logger receives the user-visible progress of a run.
type Logger interface {
	LogCommandStart(entry models.CommandEntry, verbose bool)
	LogCommandResult(entry models.CommandEntry, outcome models.ExecutionOutcome)
	LogMatches(filter string, matches []models.CommandEntry)
	LogFailure(err error, verbose bool)
	LogSummary(summary models.RunSummary, report bool)
	LogDebug(message string)
}

// Notifier is the optional telemetry collaborator. Its errors never affect a run.
type Notifier interface {
	NotifyStart(ctx context.Context) error
	NotifyError(ctx context.Context, elapsed time.Duration, message string) error
	NotifyComplete(ctx context.Context, elapsed time.Duration) error
}

type noopLogger struct{}

func (noopLogger) LogCommandStart(models.CommandEntry, bool)                     {}
func (noopLogger) LogCommandResult(models.CommandEntry, models.ExecutionOutcome) {}
func (noopLogger) LogMatches(string, []models.CommandEntry)                      {}
func (noopLogger) LogFailure(error, bool)                                        {}
func (noopLogger) LogSummary(models.RunSummary, bool)                            {}
func (noopLogger) LogDebug(string)                                               {}
