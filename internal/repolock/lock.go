package repolock

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockFileName is the lock file created under the git common directory.
// Using the common directory (not the per-worktree git dir) makes the lock
// repository-wide.
const LockFileName = "twig.lock"

// retryDelay is the poll interval while waiting for a held lock.
const retryDelay = 100 * time.Millisecond

// ErrLockHeld is returned by TryAcquire when another process holds the
// repository lock.
var ErrLockHeld = errors.New("repository lock is held by another process")

// Lock is a repository-scoped advisory lock. It is not safe for concurrent
// use by multiple goroutines; each command invocation creates its own.
type Lock struct {
	fl *flock.Flock
}

// New creates a lock rooted in the repository's git common directory. The
// lock is not acquired until Acquire or TryAcquire is called.
func New(gitCommonDir string) *Lock {
	return &Lock{fl: flock.New(filepath.Join(gitCommonDir, LockFileName))}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// TryAcquire attempts to take the lock without blocking. It returns
// ErrLockHeld (wrapped) when another process has it.
func (l *Lock) TryAcquire() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.fl.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", l.fl.Path(), ErrLockHeld)
	}
	return nil
}

// Acquire blocks until the lock is taken or ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	ok, err := l.fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.fl.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", l.fl.Path(), ErrLockHeld)
	}
	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
