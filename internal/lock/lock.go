// Package lock serializes mutating commands on one project across processes.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrTimeout is returned when another process keeps the project locked
// longer than the caller is willing to wait.
var ErrTimeout = errors.New("lock: timeout waiting for project lock")

const retryDelay = 100 * time.Millisecond

// Project is an exclusive advisory lock on a project directory.
type Project struct {
	f *flock.Flock
}

// Acquire takes the lock at path, waiting up to timeout. The caller must
// Release it.
func Acquire(ctx context.Context, path string, timeout time.Duration) (*Project, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	f := flock.New(path)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := f.TryLockContext(ctx, retryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, path)
		}
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrTimeout, path)
	}
	return &Project{f: f}, nil
}

func (p *Project) Path() string { return p.f.Path() }

func (p *Project) Release() error {
	return p.f.Unlock()
}
