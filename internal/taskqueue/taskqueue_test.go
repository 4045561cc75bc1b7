package taskqueue

import (
	"errors"
	"testing"

	"github.com/petrijr/proctree/pkg/tree"
)

func TestQueue_FIFOWithoutDuplicates(t *testing.T) {
	q := New()
	t1, t2, t3 := tree.NewTask("1"), tree.NewTask("2"), tree.NewTask("3")

	for _, task := range []*tree.Node{t1, t2, t3} {
		if err := q.Enqueue(task); err != nil {
			t.Fatalf("Enqueue %s failed: %v", task.Name(), err)
		}
	}
	if err := q.Enqueue(t2); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if q.Len() != 3 {
		t.Fatalf("expected Len 3, got %d", q.Len())
	}

	for _, want := range []*tree.Node{t1, t2, t3} {
		if got := q.Pop(); got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
	if q.Pop() != nil {
		t.Fatalf("expected empty queue")
	}
}

func TestQueue_ReorderAndRemove(t *testing.T) {
	q := New()
	t1, t2, t3 := tree.NewTask("1"), tree.NewTask("2"), tree.NewTask("3")
	for _, task := range []*tree.Node{t1, t2, t3} {
		_ = q.Enqueue(task)
	}

	if !q.MoveUp(t3) || q.MoveUp(t1) {
		t.Fatalf("unexpected MoveUp result")
	}
	if got := q.Snapshot(); got[1] != t3 || got[2] != t2 {
		t.Fatalf("unexpected order after MoveUp: %v", got)
	}
	if !q.MoveDown(t1) || q.MoveDown(t2) {
		t.Fatalf("unexpected MoveDown result")
	}
	if got := q.Snapshot(); got[0] != t3 || got[1] != t1 {
		t.Fatalf("unexpected order after MoveDown: %v", got)
	}

	if !q.Remove(t1) || q.Remove(t1) || q.Contains(t1) {
		t.Fatalf("Remove did not drop the task exactly once")
	}
	if cleared := q.Clear(); len(cleared) != 2 || q.Len() != 0 {
		t.Fatalf("Clear returned %v", cleared)
	}
}
