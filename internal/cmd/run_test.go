package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/getset/internal/executor"
	"github.com/harrison/getset/internal/logger"
)

func TestRunCommand_Success(t *testing.T) {
	dir := inTempDir(t)
	file := writeTestFile(t, filepath.Join(dir, "steps.toml"), echoFile)

	stdout, stderr, err := execute(t, file)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	order := []string{"===> Echo1", "one", "└──▶ ✓ Echo1", "===> Echo2", "two", "└──▶ ✓ Echo2", "🎯 All set!"}
	last := -1
	for _, want := range order {
		idx := strings.Index(stdout, want)
		require.GreaterOrEqual(t, idx, 0, "missing %q in:\n%s", want, stdout)
		assert.Greater(t, idx, last, "%q out of order in:\n%s", want, stdout)
		last = idx
	}
	assert.NotContains(t, stdout, "📊 Report")
}

func TestRunCommand_DefaultFile(t *testing.T) {
	dir := inTempDir(t)
	writeTestFile(t, filepath.Join(dir, "getset.toml"), echoFile)

	stdout, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "===> Echo2")
}

func TestRunCommand_Failure(t *testing.T) {
	dir := inTempDir(t)
	file := writeTestFile(t, filepath.Join(dir, "getset.toml"), failingFile)

	stdout, stderr, err := execute(t, file)
	require.Error(t, err)
	assert.True(t, IsReported(err), "failure should already be reported")
	assert.True(t, executor.IsCommandFailedError(err))

	assert.Contains(t, stdout, "===> Fail")
	assert.Contains(t, stdout, "before")
	assert.Contains(t, stdout, "└──▶ ✗ Fail")
	assert.NotContains(t, stdout, "===> Never")
	assert.NotContains(t, stdout, "All set")

	assert.Contains(t, stderr, "Error: A command failed")
	assert.NotContains(t, stderr, "exit status 3", "details are only shown when verbose")
}

func TestRunCommand_VerboseFailure(t *testing.T) {
	dir := inTempDir(t)
	file := writeTestFile(t, filepath.Join(dir, "getset.toml"), failingFile)

	stdout, stderr, err := execute(t, "--verbose", file)
	require.Error(t, err)

	assert.Contains(t, stdout, "echo before; exit 3", "verbose prints the command text")
	assert.Contains(t, stderr, "exit status 3")
}

func TestRunCommand_StepFilter(t *testing.T) {
	dir := inTempDir(t)
	file := writeTestFile(t, filepath.Join(dir, "getset.toml"), `
[[commands]]
title = "Deploy staging"
command = "echo staging"

[[commands]]
title = "Build"
command = "echo build"

[[commands]]
title = "deploy production"
command = "echo production"
`)

	t.Run("multiple matches are listed", func(t *testing.T) {
		stdout, _, err := execute(t, "--step", "DEPLOY", file)
		require.NoError(t, err)

		assert.Contains(t, stdout, "Info: Found 2 steps matching 'DEPLOY':")
		assert.Contains(t, stdout, "  1. Deploy staging")
		assert.Contains(t, stdout, "  2. deploy production")
		assert.NotContains(t, stdout, "===> Build")
	})

	t.Run("single match is not listed", func(t *testing.T) {
		stdout, _, err := execute(t, "--step", "build", file)
		require.NoError(t, err)

		assert.NotContains(t, stdout, "Info: Found")
		assert.Contains(t, stdout, "===> Build")
		assert.Equal(t, 1, strings.Count(stdout, "===>"))
	})

	t.Run("no match", func(t *testing.T) {
		stdout, _, err := execute(t, "--step", "zzz", file)
		require.Error(t, err)

		assert.False(t, IsReported(err), "the entry point prints a no-match error")
		assert.True(t, executor.IsNoMatchError(err))
		assert.Equal(t, "No steps found matching 'zzz'", err.Error())
		assert.NotContains(t, stdout, "===>")
	})
}

func TestRunCommand_Report(t *testing.T) {
	dir := inTempDir(t)
	file := writeTestFile(t, filepath.Join(dir, "getset.toml"), echoFile)

	stdout, _, err := execute(t, "--report", file)
	require.NoError(t, err)

	report := stdout[strings.Index(stdout, "📊 Report"):]
	assert.Contains(t, report, "Echo1")
	assert.Contains(t, report, "Echo2")
	assert.Contains(t, report, "Total")
	assert.Less(t, strings.Index(report, "Echo1"), strings.Index(report, "Echo2"))
}

func TestRunCommand_LoadErrors(t *testing.T) {
	dir := inTempDir(t)

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, filepath.Join(dir, "missing.toml"))
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "Error reading file"))
		assert.False(t, IsReported(err))
	})

	t.Run("malformed file", func(t *testing.T) {
		file := writeTestFile(t, filepath.Join(dir, "bad.toml"), "[[commands]\n")
		_, _, err := execute(t, file)
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "Error parsing TOML"))
	})

	t.Run("invalid pty flag", func(t *testing.T) {
		file := writeTestFile(t, filepath.Join(dir, "ok.toml"), echoFile)
		_, _, err := execute(t, "--pty", "sometimes", file)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestRunCommand_ShellFlag(t *testing.T) {
	if _, err := os.Stat("/bin/bash"); err != nil {
		t.Skip("bash not available")
	}
	dir := inTempDir(t)
	file := writeTestFile(t, filepath.Join(dir, "getset.toml"), `
[[commands]]
title = "Which shell"
command = "echo ${BASH_VERSION:+bash}"
`)

	stdout, _, err := execute(t, "--shell", "/bin/bash", file)
	require.NoError(t, err)
	assert.Contains(t, stdout, "\nbash\n")
}

func TestRunCommand_LogDir(t *testing.T) {
	dir := inTempDir(t)
	file := writeTestFile(t, filepath.Join(dir, "getset.toml"), echoFile)
	logDir := filepath.Join(dir, "logs")

	_, _, err := execute(t, "--log-dir", logDir, file)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "START Echo1")
	assert.Contains(t, string(data), "PASS Echo2")
}

func TestRunCommand_ConfigFile(t *testing.T) {
	dir := inTempDir(t)
	file := writeTestFile(t, filepath.Join(dir, "getset.toml"), echoFile)
	logDir := filepath.Join(dir, "from-config")
	writeTestFile(t, filepath.Join(dir, ".getset", "config.yaml"), "log_dir: "+logDir+"\npty: never\n")

	_, _, err := execute(t, file)
	require.NoError(t, err)

	_, err = os.Lstat(filepath.Join(logDir, "latest.log"))
	assert.NoError(t, err, "log_dir from .getset/config.yaml should be used")
}

func TestRunCommand_Telemetry(t *testing.T) {
	var mu sync.Mutex
	var names []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		names = append(names, body.Name)
		mu.Unlock()
	}))
	defer server.Close()

	dir := inTempDir(t)
	cfgPath := writeTestFile(t, filepath.Join(dir, "config.yaml"), "telemetry_endpoint: "+server.URL+"\n")
	file := writeTestFile(t, filepath.Join(dir, "getset.toml"), failingFile+`
[platformx]
secret_key = "test"
event_namespace = "ci"
`)

	_, _, err := execute(t, "--config", cfgPath, file)
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ci.start", "ci.error"}, names)
}

func TestRunCommand_TelemetryDisabled(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	dir := inTempDir(t)
	cfgPath := writeTestFile(t, filepath.Join(dir, "config.yaml"), "telemetry_endpoint: "+server.URL+"\n")
	file := writeTestFile(t, filepath.Join(dir, "getset.toml"), echoFile+"\n[platformx]\nsecret_key = \"k\"\n")

	_, stderr, err := execute(t, "--config", cfgPath, "--no-telemetry", file)
	require.NoError(t, err)
	assert.False(t, called)
	assert.Contains(t, stderr, "[INFO] telemetry disabled by --no-telemetry")
}

func TestRunCommand_TelemetryFailureIgnored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dir := inTempDir(t)
	cfgPath := writeTestFile(t, filepath.Join(dir, "config.yaml"), "telemetry_endpoint: "+server.URL+"\n")
	file := writeTestFile(t, filepath.Join(dir, "getset.toml"), echoFile+"\n[platformx]\nsecret_key = \"k\"\n")

	stdout, _, err := execute(t, "--config", cfgPath, file)
	require.NoError(t, err)
	assert.Contains(t, stdout, "🎯 All set!")
}

func TestMultiLogger(t *testing.T) {
	a, b := &countingLogger{}, &countingLogger{}
	ml := &multiLogger{loggers: []executor.Logger{a, b}}

	ml.LogDebug("x")
	ml.LogFailure(nil, false)

	assert.Equal(t, 2, a.calls)
	assert.Equal(t, 2, b.calls)
}

func TestMultiLogger_FansOut(t *testing.T) {
	a, b := &countingLogger{}, &countingLogger{}
	ml := &multiLogger{loggers: []executor.Logger{a, b}}

	orch := executor.NewOrchestrator(executor.NewCommandRunner(&executor.PipedStrategy{}, ml), ml, nil)
	_, err := orch.Run(t.Context(), nil, executor.RunOptions{})
	require.NoError(t, err)

	// An empty run still prints the completion line.
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, a.calls, b.calls)
}

func TestMultiLogger_LeveledMessages(t *testing.T) {
	var buf bytes.Buffer
	counting := &countingLogger{}
	ml := &multiLogger{loggers: []executor.Logger{logger.NewConsoleLogger(&buf, "info"), counting}}

	ml.LogInfo("telemetry disabled")
	ml.LogError("history unavailable")

	assert.Contains(t, buf.String(), "[INFO] telemetry disabled")
	assert.Contains(t, buf.String(), "[ERROR] history unavailable")
	assert.Equal(t, 0, counting.calls, "loggers without levels are skipped")
}
