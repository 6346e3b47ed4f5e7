package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/getset/internal/models"
)

// FileLogger writes a plain-text log of each run to <logDir>/run-*.log and
// maintains a latest.log symlink pointing to the most recent run.
// It is thread-safe and implements the executor.Logger interface.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir using the "info" level.
func NewFileLogger(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithLevel(logDir, "info")
}

// NewFileLoggerWithLevel creates the log directory if needed, opens a
// timestamped run log and repoints latest.log at it.
func NewFileLoggerWithLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Generate timestamped filename: run-YYYYMMDD-HHMMSS.log
	ts := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", ts))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== getset run log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// Path returns the run log file path.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogCommandStart records the command title and its text.
func (fl *FileLogger) LogCommandStart(entry models.CommandEntry, verbose bool) {
	if !fl.shouldLog("info") {
		return
	}

	message := fmt.Sprintf("[%s] START %s\n", timestamp(), entry.Title)
	for _, line := range strings.Split(strings.TrimRight(entry.Command, "\n"), "\n") {
		message += fmt.Sprintf("[%s]   $ %s\n", timestamp(), line)
	}
	fl.writeRunLog(message)
}

// LogCommandResult records the outcome and elapsed time of one command.
func (fl *FileLogger) LogCommandResult(entry models.CommandEntry, outcome models.ExecutionOutcome) {
	if !fl.shouldLog("info") {
		return
	}

	status := "PASS"
	if !outcome.Success {
		status = fmt.Sprintf("FAIL (exit code %d)", outcome.ExitCode)
	}
	fl.writeRunLog(fmt.Sprintf("[%s] %s %s in %s\n", timestamp(), status, entry.Title, FormatSeconds(outcome.Elapsed)))
}

// LogMatches records which commands a filter selected.
func (fl *FileLogger) LogMatches(filter string, matches []models.CommandEntry) {
	if !fl.shouldLog("info") {
		return
	}

	titles := make([]string, len(matches))
	for i, m := range matches {
		titles[i] = m.Title
	}
	fl.writeRunLog(fmt.Sprintf("[%s] Filter %q matched %d steps: %s\n", timestamp(), filter, len(matches), strings.Join(titles, ", ")))
}

// LogFailure records the error that stopped the run. The file log always
// keeps the full error text.
func (fl *FileLogger) LogFailure(err error, verbose bool) {
	if err == nil {
		return
	}
	fl.logWithLevel("ERROR", err.Error())
}

// LogSummary records the run summary with per-command durations.
func (fl *FileLogger) LogSummary(summary models.RunSummary, report bool) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	message := fmt.Sprintf("\n[%s] === RUN SUMMARY ===\n", ts)
	message += fmt.Sprintf("[%s] Commands:     %d\n", ts, summary.Attempted)
	for _, r := range summary.Results {
		message += fmt.Sprintf("[%s]   %8s  %s\n", ts, FormatSeconds(r.Duration), r.Title)
	}
	message += fmt.Sprintf("[%s] Total time:   %s\n", ts, FormatSeconds(summary.Total))
	message += fmt.Sprintf("[%s] Completed at: %s\n", ts, time.Now().Format(time.RFC3339))

	fl.writeRunLog(message)
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		// Flush after each write for real-time logging
		fl.runLog.Sync()
	}
}
