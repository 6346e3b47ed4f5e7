package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harrison/getset/internal/models"
)

// recordingLogger captures every logger call as a short event string.
type recordingLogger struct {
	mu      sync.Mutex
	events  []string
	summary *models.RunSummary
	report  bool
}

func (l *recordingLogger) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) LogCommandStart(entry models.CommandEntry, verbose bool) {
	l.add("start:%s", entry.Title)
}

func (l *recordingLogger) LogCommandResult(entry models.CommandEntry, outcome models.ExecutionOutcome) {
	l.add("finish:%s:%t", entry.Title, outcome.Success)
}

func (l *recordingLogger) LogMatches(filter string, matches []models.CommandEntry) {
	l.add("matches:%s:%d", filter, len(matches))
}

func (l *recordingLogger) LogFailure(err error, verbose bool) {
	l.add("failure")
}

func (l *recordingLogger) LogSummary(summary models.RunSummary, report bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.summary = &summary
	l.report = report
	l.events = append(l.events, "summary")
}

func (l *recordingLogger) LogDebug(message string) {
	l.add("debug:%s", message)
}

func (l *recordingLogger) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

func (l *recordingLogger) count(prefix string) int {
	n := 0
	for _, e := range l.Events() {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// fakeStrategy returns scripted outcomes keyed by command text.
type fakeStrategy struct {
	mu       sync.Mutex
	outcomes map[string]models.ExecutionOutcome
	errs     map[string]error
	commands []string
}

func newFakeStrategy() *fakeStrategy {
	return &fakeStrategy{
		outcomes: make(map[string]models.ExecutionOutcome),
		errs:     make(map[string]error),
	}
}

func (f *fakeStrategy) Execute(ctx context.Context, command string) (models.ExecutionOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, command)
	if err, ok := f.errs[command]; ok {
		return models.ExecutionOutcome{ExitCode: -1}, err
	}
	if outcome, ok := f.outcomes[command]; ok {
		return outcome, nil
	}
	return models.ExecutionOutcome{Success: true, Elapsed: time.Millisecond}, nil
}

func (f *fakeStrategy) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	copy(out, f.commands)
	return out
}

// fakeNotifier records telemetry calls and can be told to fail.
type fakeNotifier struct {
	mu     sync.Mutex
	calls  []string
	fail   bool
	errMsg string
}

func (n *fakeNotifier) record(call string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, call)
	if n.fail {
		return errors.New("telemetry down")
	}
	return nil
}

func (n *fakeNotifier) NotifyStart(ctx context.Context) error {
	return n.record("start")
}

func (n *fakeNotifier) NotifyError(ctx context.Context, elapsed time.Duration, message string) error {
	n.mu.Lock()
	n.errMsg = message
	n.mu.Unlock()
	return n.record("error")
}

func (n *fakeNotifier) NotifyComplete(ctx context.Context, elapsed time.Duration) error {
	return n.record("complete")
}

func (n *fakeNotifier) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.calls))
	copy(out, n.calls)
	return out
}
