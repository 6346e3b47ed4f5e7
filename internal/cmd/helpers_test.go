package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/getset/internal/models"
)

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// inTempDir switches to a fresh working directory so no stray
// .getset/config.yaml or getset.toml is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GETSET_HOME", filepath.Join(dir, ".getset"))
	return dir
}

func writeTestFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

const echoFile = `
[[commands]]
title = "Echo1"
command = "echo one"

[[commands]]
title = "Echo2"
command = "echo two"
`

const failingFile = `
[[commands]]
title = "Fail"
command = "echo before; exit 3"

[[commands]]
title = "Never"
command = "echo never"
`

type countingLogger struct {
	calls int
}

func (c *countingLogger) LogCommandStart(models.CommandEntry, bool)                     { c.calls++ }
func (c *countingLogger) LogCommandResult(models.CommandEntry, models.ExecutionOutcome) { c.calls++ }
func (c *countingLogger) LogMatches(string, []models.CommandEntry)                      { c.calls++ }
func (c *countingLogger) LogFailure(error, bool)                                        { c.calls++ }
func (c *countingLogger) LogSummary(models.RunSummary, bool)                            { c.calls++ }
func (c *countingLogger) LogDebug(string)                                               { c.calls++ }
