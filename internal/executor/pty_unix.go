//go:build !windows

package executor

import (
	"os"
	"syscall"

	"github.com/creack/pty"
)

func openPTY() (*os.File, *os.File, error) {
	return pty.Open()
}

// ptySysProcAttr starts the child in a new session whose controlling
// terminal is the child's file descriptor ctty.
func ptySysProcAttr(ctty int) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		Ctty:    ctty,
	}
}
