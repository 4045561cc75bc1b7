package lock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquire_ExcludesSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "proctree.lock")
	ctx := context.Background()

	first, err := Acquire(ctx, path, time.Second)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	_, err = Acquire(ctx, path, 150*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	second, err := Acquire(ctx, path, time.Second)
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	defer second.Release()

	if second.Path() != path {
		t.Fatalf("unexpected lock path %q", second.Path())
	}
}
