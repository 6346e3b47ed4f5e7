// Package filelock serialises writers of shared getset files (the history
// database, generated command files) across processes.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrExists is returned by WriteFile when the target exists and overwrite is false.
var ErrExists = errors.New("file already exists")

// retryDelay is how often LockContext polls a held lock.
const retryDelay = 50 * time.Millisecond

// FileLock is an advisory exclusive lock backed by a lock file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock backed by the file at path. The file is
// created on first use.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// LockContext polls for the lock until it is acquired or ctx is done.
func (fl *FileLock) LockContext(ctx context.Context) error {
	acquired, err := fl.flock.TryLockContext(ctx, retryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	if !acquired {
		return fmt.Errorf("failed to acquire lock on %s", fl.path)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// WithLock runs fn while holding the lock file lockPath.
func WithLock(ctx context.Context, lockPath string, fn func() error) error {
	lock := NewFileLock(lockPath)
	if err := lock.LockContext(ctx); err != nil {
		return err
	}
	defer lock.Unlock()

	return fn()
}

// AtomicWrite writes data to path through a temp file in the same directory
// and a rename, so readers never see a partial file. Parent directories are
// created as needed.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Renamed; nothing to clean up.
	tempFile = nil
	return nil
}

// WriteFile atomically writes data to path while holding path+".lock".
// Unless overwrite is set, an existing target yields ErrExists. The lock
// file is removed afterwards.
func WriteFile(ctx context.Context, path string, data []byte, overwrite bool) error {
	lockPath := path + ".lock"
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	defer os.Remove(lockPath)

	return WithLock(ctx, lockPath, func() error {
		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s: %w", path, ErrExists)
			}
		}
		return AtomicWrite(path, data, 0644)
	})
}
