// Package logger provides logging implementations for getset runs.
//
// ConsoleLogger renders the user-facing progress of a run (start and finish
// markers, filter matches, the completion line and the optional report) and
// leveled diagnostic messages. FileLogger keeps a plain-text log per run.
// Implementations are safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/getset/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Markers used by the run output.
const (
	markerStart  = "===>"
	markerFinish = "└──▶"
	markerRow    = "├──▶"
	markerTotal  = "└─▶"
	glyphSuccess = "✓"
	glyphFailure = "✗"
)

// reportBarWidth is the width of the per-command share bar in the report.
const reportBarWidth = 10

// ConsoleLogger writes run progress to writer and diagnostics to errWriter.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	errWriter   io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	scheme      *colorScheme
}

// NewConsoleLogger creates a ConsoleLogger that writes everything to writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return NewConsoleLoggerWithErr(writer, writer, logLevel)
}

// NewConsoleLoggerWithErr creates a ConsoleLogger that sends failures and
// leveled diagnostics to errWriter.
func NewConsoleLoggerWithErr(writer, errWriter io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		errWriter:   errWriter,
		logLevel:    normalizeLogLevel(logLevel),
		mutex:       sync.Mutex{},
		colorOutput: isTerminal(writer),
		scheme:      newColorScheme(),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns true for os.Stdout and os.Stderr when they are TTYs.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}

	if w == os.Stdout || w == os.Stderr {
		// This will return false if NO_COLOR env var is set
		return !color.NoColor
	}

	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if IsValidLevel(normalized) {
		return normalized
	}
	return "info"
}

// IsValidLevel reports whether level is one of trace, debug, info, warn, error.
func IsValidLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
// Format: "[HH:MM:SS] [DEBUG] <message>"
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.errWriter == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	fmt.Fprintf(cl.errWriter, "[%s] [%s] %s\n", timestamp(), cl.levelLabel(level), message)
}

func (cl *ConsoleLogger) levelLabel(level string) string {
	if !cl.colorOutput {
		return level
	}

	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return cl.scheme.warn.Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

func (cl *ConsoleLogger) style(c *color.Color, s string) string {
	return paint(cl.colorOutput, c, s)
}

// LogCommandStart prints the start marker, and the command text when verbose.
// Format: "===> <title>"
func (cl *ConsoleLogger) LogCommandStart(entry models.CommandEntry, verbose bool) {
	if cl.writer == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	fmt.Fprintf(cl.writer, "%s %s\n", cl.style(cl.scheme.header, markerStart), cl.style(cl.scheme.header, entry.Title))
	if verbose {
		fmt.Fprintln(cl.writer, cl.style(cl.scheme.command, entry.Command))
	}
}

// LogCommandResult prints the finish marker.
// Format: "└──▶ ✓ <title> (1.23s)"
func (cl *ConsoleLogger) LogCommandResult(entry models.CommandEntry, outcome models.ExecutionOutcome) {
	if cl.writer == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	glyph := cl.style(cl.scheme.success, glyphSuccess)
	if !outcome.Success {
		glyph = cl.style(cl.scheme.fail, glyphFailure)
	}

	fmt.Fprintf(cl.writer, "%s %s %s %s\n",
		cl.style(cl.scheme.muted, markerFinish),
		glyph,
		cl.style(cl.scheme.title, entry.Title),
		cl.style(cl.scheme.muted, "("+FormatSeconds(outcome.Elapsed)+")"),
	)
}

// LogMatches lists the commands selected by a filter that matched more than one.
func (cl *ConsoleLogger) LogMatches(filter string, matches []models.CommandEntry) {
	if cl.writer == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	fmt.Fprintf(cl.writer, "%s Found %d steps matching '%s':\n", cl.style(cl.scheme.label, "Info:"), len(matches), filter)
	for i, m := range matches {
		fmt.Fprintf(cl.writer, "  %d. %s\n", i+1, cl.style(cl.scheme.label, m.Title))
	}
	fmt.Fprintln(cl.writer)
}

// LogFailure reports that the run stopped on a failing command. The error
// text is only shown when verbose.
func (cl *ConsoleLogger) LogFailure(err error, verbose bool) {
	if cl.errWriter == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	fmt.Fprintf(cl.errWriter, "\n%s A command failed\n", cl.style(cl.scheme.fail, "Error:"))
	if verbose && err != nil {
		fmt.Fprintln(cl.errWriter, cl.style(cl.scheme.fail, err.Error()))
	}
}

// LogSummary prints the completion line and, when report is set, one row per
// successful command followed by the total.
func (cl *ConsoleLogger) LogSummary(summary models.RunSummary, report bool) {
	if cl.writer == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	fmt.Fprintf(cl.writer, "\n🎯 All set! %s\n", cl.style(cl.scheme.muted, "("+FormatSeconds(summary.Total)+")"))

	if !report {
		return
	}

	fmt.Fprintf(cl.writer, "\n%s\n", cl.style(cl.scheme.title, "📊 Report"))
	for _, r := range summary.Results {
		bar := NewProgressBar(summary.Total.Milliseconds(), reportBarWidth, cl.colorOutput)
		bar.Update(r.Duration.Milliseconds())
		fmt.Fprintf(cl.writer, "%s %s %s %s\n",
			cl.style(cl.scheme.muted, markerRow),
			cl.style(cl.scheme.muted, FormatSeconds(r.Duration)),
			bar.Render(),
			r.Title,
		)
	}
	fmt.Fprintf(cl.writer, "%s %s %s\n",
		cl.style(cl.scheme.muted, markerTotal),
		cl.style(cl.scheme.header, FormatSeconds(summary.Total)),
		cl.style(cl.scheme.title, "Total"),
	)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// FormatSeconds renders d with two decimals, e.g. "1.23s".
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// FormatDuration converts a time.Duration to a coarse human-readable string.
// Examples: "5s", "1m30s", "2h15m"
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	}
}
