// Package lock serializes publish runs that share a merged root.
//
// Two runs writing the same merged root would race on the recreate step, so
// the CLI holds an exclusive, non-blocking file lock for the whole run. The
// lock file sits beside the merged root, never inside it, since every run
// removes the merged root.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Suffix is appended to the guarded path to name its lock file.
const Suffix = ".lock"

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another run holds the lock")

// Lock is a held run lock.
type Lock struct {
	path string
	file *os.File
}

// PathFor returns the lock file guarding target.
func PathFor(target string) string {
	return filepath.Clean(target) + Suffix
}

// Acquire takes the lock guarding target without blocking. target itself
// need not exist; its parent directory is created.
func Acquire(target string) (*Lock, error) {
	path := PathFor(target)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := lockFile(file); err != nil {
		_ = file.Close()
		if errors.Is(err, errWouldBlock) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}

	return &Lock{path: path, file: file}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. The lock file itself is left in place.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	err := unlockFile(l.file)
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}
