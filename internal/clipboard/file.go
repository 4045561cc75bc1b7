package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/petrijr/proctree/pkg/api"
)

// ErrBusy is returned when another process holds the clipboard file lock
// longer than the context allows.
var ErrBusy = errors.New("clipboard: file is locked by another process")

const lockRetry = 50 * time.Millisecond

// File persists the payload in a file so separate command invocations share
// one clipboard. Access is serialized with an advisory file lock.
type File struct {
	path string
	lock *flock.Flock
}

var _ api.Clipboard = (*File)(nil)

func NewFile(path string) *File {
	return &File{path: path, lock: flock.New(path + ".lock")}
}

func (c *File) Set(ctx context.Context, p api.Payload) error {
	data, err := encodePayload(p)
	if err != nil {
		return fmt.Errorf("clipboard: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}

	locked, err := c.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("clipboard: lock: %w", err)
	}
	if !locked {
		return ErrBusy
	}
	defer func() { _ = c.lock.Unlock() }()

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("clipboard: write: %w", err)
	}
	return os.Rename(tmp, c.path)
}

func (c *File) Get(ctx context.Context) (api.Payload, bool, error) {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return api.Payload{}, false, fmt.Errorf("clipboard: %w", err)
	}
	locked, err := c.lock.TryRLockContext(ctx, lockRetry)
	if err != nil {
		return api.Payload{}, false, fmt.Errorf("clipboard: lock: %w", err)
	}
	if !locked {
		return api.Payload{}, false, ErrBusy
	}
	defer func() { _ = c.lock.Unlock() }()

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return api.Payload{}, false, nil
	}
	if err != nil {
		return api.Payload{}, false, fmt.Errorf("clipboard: read: %w", err)
	}
	p, err := decodePayload(data)
	if err != nil {
		return api.Payload{}, false, &api.InvalidClipboardData{Reason: "unreadable clipboard file", Err: err}
	}
	return p, true, nil
}
