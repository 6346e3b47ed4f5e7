package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/harrison/getset/internal/models"
)

// RunOptions controls a single orchestrated run.
type RunOptions struct {
	Filter  string // Case-insensitive substring matched against titles
	Verbose bool   // Echo command text and failure details
	Report  bool   // Print per-command durations after completion
}

// Orchestrator runs command entries strictly in sequence and stops at the
// first failure.
type Orchestrator struct {
	runner   StepRunner
	logger   Logger
	notifier Notifier
}

// NewOrchestrator creates a new Orchestrator instance.
// The logger and notifier parameters are optional and can be nil.
func NewOrchestrator(runner StepRunner, logger Logger, notifier Notifier) *Orchestrator {
	if runner == nil {
		panic("step runner cannot be nil")
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &Orchestrator{
		runner:   runner,
		logger:   logger,
		notifier: notifier,
	}
}

// FilterEntries returns the entries whose title contains filter, ignoring
// case, in their original order. An empty filter selects everything.
func FilterEntries(entries []models.CommandEntry, filter string) ([]models.CommandEntry, error) {
	if filter == "" {
		return entries, nil
	}

	needle := strings.ToLower(filter)
	var matches []models.CommandEntry
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Title), needle) {
			matches = append(matches, entry)
		}
	}

	if len(matches) == 0 {
		return nil, &NoMatchError{Filter: filter}
	}
	return matches, nil
}

// Run executes the selected entries one at a time. SIGINT and SIGTERM cancel
// the command in flight and stop the sequence.
//
// The returned summary is nil only when the filter matched nothing.
func (o *Orchestrator) Run(ctx context.Context, entries []models.CommandEntry, opts RunOptions) (*models.RunSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			o.logger.LogDebug("received interrupt signal, stopping")
			cancel()
		case <-ctx.Done():
		}
	}()

	o.notify(func() error { return o.notifier.NotifyStart(ctx) })

	selected, err := FilterEntries(entries, opts.Filter)
	if err != nil {
		return nil, err
	}
	if opts.Filter != "" && len(selected) > 1 {
		o.logger.LogMatches(opts.Filter, selected)
	}

	summary := &models.RunSummary{}
	for _, entry := range selected {
		if ctx.Err() != nil {
			// The next command never started, so there is no failing step.
			summary.Interrupted = true
			return summary, o.fail(ctx, summary, nil, ctx.Err(), opts.Verbose)
		}

		summary.Attempted++
		elapsed, err := o.runner.Run(ctx, entry, opts.Verbose)
		summary.Total += elapsed

		if err != nil {
			status := err.Error()
			var ce *CommandFailedError
			if errors.As(err, &ce) {
				status = ce.Status
			}
			failure := &models.RunFailure{
				Title:    entry.Title,
				Status:   status,
				Duration: elapsed,
			}
			return summary, o.fail(ctx, summary, failure, err, opts.Verbose)
		}

		summary.Results = append(summary.Results, models.RunResult{
			Title:    entry.Title,
			Duration: elapsed,
		})
	}

	o.logger.LogSummary(*summary, opts.Report)
	o.notify(func() error { return o.notifier.NotifyComplete(ctx, summary.Total) })

	return summary, nil
}

// fail records failure (nil for an interrupted run) on summary, reports err
// and notifies telemetry.
func (o *Orchestrator) fail(ctx context.Context, summary *models.RunSummary, failure *models.RunFailure, err error, verbose bool) error {
	summary.Failed = failure

	o.logger.LogFailure(err, verbose)

	// Telemetry still goes out for an interrupted run.
	notifyCtx := context.WithoutCancel(ctx)
	o.notify(func() error { return o.notifier.NotifyError(notifyCtx, summary.Total, err.Error()) })

	return err
}

// notify calls fn when a notifier is configured and swallows its error.
func (o *Orchestrator) notify(fn func() error) {
	if o.notifier == nil {
		return
	}
	if err := fn(); err != nil {
		o.logger.LogDebug(fmt.Sprintf("telemetry: %v", err))
	}
}
