package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/harrison/getset/internal/models"
)

// errPTYUnavailable marks failures that send a command to the piped fallback.
var errPTYUnavailable = errors.New("pseudo-terminal unavailable")

// drainGrace bounds how long terminal output is read after the child exits.
const drainGrace = 200 * time.Millisecond

// PTYStrategy gives the child a pseudo-terminal as its controlling terminal
// while it inherits the real stdin, stdout and stderr, so prompts and
// progress bars render as they would in an interactive shell. Output written
// directly to the terminal device is copied to Stdout.
//
// If the pseudo-terminal cannot be allocated or the child cannot be spawned
// on it, the command is run from scratch by Fallback.
type PTYStrategy struct {
	Shell    string
	Stdin    *os.File
	Stdout   *os.File
	Stderr   *os.File
	Fallback Strategy

	// OnFallback is called with the reason before the fallback runs.
	OnFallback func(err error)

	// open allocates the pseudo-terminal pair; nil means openPTY.
	open func() (ptmx *os.File, tty *os.File, err error)
}

// Execute runs command on a pseudo-terminal, falling back when unavailable.
func (s *PTYStrategy) Execute(ctx context.Context, command string) (models.ExecutionOutcome, error) {
	outcome, err := s.executeWithPTY(ctx, command)
	if err == nil || !errors.Is(err, errPTYUnavailable) || s.Fallback == nil {
		return outcome, err
	}

	if s.OnFallback != nil {
		s.OnFallback(err)
	}
	return s.Fallback.Execute(ctx, command)
}

func (s *PTYStrategy) executeWithPTY(ctx context.Context, command string) (models.ExecutionOutcome, error) {
	open := s.open
	if open == nil {
		open = openPTY
	}

	ptmx, tty, err := open()
	if err != nil {
		return models.ExecutionOutcome{ExitCode: -1}, fmt.Errorf("%w: failed to open PTY: %v", errPTYUnavailable, err)
	}
	defer ptmx.Close()

	shell := shellOrDefault(s.Shell)
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	// A nil *os.File must not reach exec as a non-nil interface.
	if s.Stdin != nil {
		cmd.Stdin = s.Stdin
	}
	if s.Stdout != nil {
		cmd.Stdout = s.Stdout
	}
	if s.Stderr != nil {
		cmd.Stderr = s.Stderr
	}
	cmd.ExtraFiles = []*os.File{tty}
	cmd.SysProcAttr = ptySysProcAttr(3)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		tty.Close()
		return models.ExecutionOutcome{ExitCode: -1}, fmt.Errorf("%w: failed to spawn command: %v", errPTYUnavailable, err)
	}
	// The child holds its own copy of the subordinate side.
	tty.Close()

	// Whatever the child writes to /dev/tty must be read, or a full tty
	// buffer blocks it forever.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		var w io.Writer = io.Discard
		if s.Stdout != nil {
			w = s.Stdout
		}
		_, _ = io.Copy(w, ptmx)
	}()

	outcome, err := waitOutcome(cmd, shell, start)

	// A background process may keep the subordinate side open.
	select {
	case <-drained:
	case <-time.After(drainGrace):
	}
	return outcome, err
}
