package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrison/getset/internal/models"
)

func readLog(t *testing.T, fl *FileLogger) string {
	t.Helper()
	if err := fl.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	data, err := os.ReadFile(fl.Path())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return string(data)
}

func TestNewFileLogger_CreatesRunLogAndSymlink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	fl, err := NewFileLogger(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fl.Close()

	if !strings.HasPrefix(filepath.Base(fl.Path()), "run-") {
		t.Errorf("unexpected run log name %q", fl.Path())
	}

	target, err := os.Readlink(filepath.Join(dir, "latest.log"))
	if err != nil {
		t.Fatalf("latest.log missing: %v", err)
	}
	if target != filepath.Base(fl.Path()) {
		t.Errorf("latest.log points to %q, want %q", target, filepath.Base(fl.Path()))
	}
}

func TestNewFileLogger_ReplacesSymlink(t *testing.T) {
	dir := t.TempDir()
	if err := os.Symlink("old.log", filepath.Join(dir, "latest.log")); err != nil {
		t.Fatal(err)
	}

	fl, err := NewFileLogger(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fl.Close()

	target, _ := os.Readlink(filepath.Join(dir, "latest.log"))
	if target == "old.log" {
		t.Error("latest.log was not updated")
	}
}

func TestFileLogger_RecordsRun(t *testing.T) {
	fl, err := NewFileLoggerWithLevel(t.TempDir(), "info")
	if err != nil {
		t.Fatal(err)
	}

	entry := models.CommandEntry{Title: "Build", Command: "make\nmake test"}
	fl.LogCommandStart(entry, false)
	fl.LogCommandResult(entry, models.ExecutionOutcome{Success: true, Elapsed: 1500 * time.Millisecond})
	fl.LogMatches("bu", []models.CommandEntry{entry, {Title: "Bundle"}})
	fl.LogSummary(models.RunSummary{
		Results:   []models.RunResult{{Title: "Build", Duration: 1500 * time.Millisecond}},
		Attempted: 1,
		Total:     1500 * time.Millisecond,
	}, false)
	fl.LogDebug("hidden at info")

	out := readLog(t, fl)
	for _, want := range []string{
		"=== getset run log ===",
		"START Build",
		"$ make",
		"$ make test",
		"PASS Build in 1.50s",
		`Filter "bu" matched 2 steps: Build, Bundle`,
		"=== RUN SUMMARY ===",
		"Total time:   1.50s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden at info") {
		t.Error("debug message should be filtered at info level")
	}
}

func TestFileLogger_RecordsFailure(t *testing.T) {
	fl, err := NewFileLoggerWithLevel(t.TempDir(), "debug")
	if err != nil {
		t.Fatal(err)
	}

	entry := models.CommandEntry{Title: "Fail", Command: "exit 1"}
	fl.LogCommandResult(entry, models.ExecutionOutcome{ExitCode: 1})
	fl.LogFailure(errors.New(`command "Fail" failed: exit status 1`), false)
	fl.LogDebug("telemetry: down")

	out := readLog(t, fl)
	for _, want := range []string{
		"FAIL (exit code 1) Fail",
		`[ERROR] command "Fail" failed: exit status 1`,
		"[DEBUG] telemetry: down",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log:\n%s", want, out)
		}
	}
}

func TestFileLogger_CloseTwice(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	// Writes after close are dropped.
	fl.LogInfo("ignored")
}
