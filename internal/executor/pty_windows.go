//go:build windows

package executor

import (
	"errors"
	"os"
	"syscall"
)

func openPTY() (*os.File, *os.File, error) {
	return nil, nil, errors.New("pseudo-terminals are not supported on windows")
}

func ptySysProcAttr(int) *syscall.SysProcAttr {
	return nil
}
