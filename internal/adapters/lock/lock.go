package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockDirMode = 0o700

var ErrAlreadyRunning = errors.New("another instance is already running")

// Guard is an exclusive, process-wide lock on a file.
type Guard struct {
	lock *flock.Flock
}

// Acquire takes the lock at path without waiting. It returns
// ErrAlreadyRunning when another process holds it.
func Acquire(path string) (*Guard, error) {
	if err := os.MkdirAll(filepath.Dir(path), lockDirMode); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fileLock := flock.New(path)
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
	}

	return &Guard{lock: fileLock}, nil
}

func (g *Guard) Path() string {
	return g.lock.Path()
}

// Release drops the lock. It is safe to call on a nil guard and more than
// once.
func (g *Guard) Release() error {
	if g == nil || g.lock == nil {
		return nil
	}

	if err := g.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", g.lock.Path(), err)
	}

	return nil
}
