// Package taskqueue holds the tasks waiting for the execution resource.
package taskqueue

import (
	"errors"
	"slices"
	"sync"

	"github.com/petrijr/proctree/pkg/tree"
)

// ErrDuplicate is returned when a task is enqueued twice.
var ErrDuplicate = errors.New("taskqueue: task already queued")

// Queue is a FIFO of tasks without duplicates. It is safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items []*tree.Node
}

func New() *Queue { return &Queue{} }

// Enqueue appends t.
func (q *Queue) Enqueue(t *tree.Node) error {
	if t == nil {
		return tree.ErrNilNode
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if slices.Contains(q.items, t) {
		return ErrDuplicate
	}
	q.items = append(q.items, t)
	return nil
}

// Pop removes and returns the head of the queue, or nil when empty.
func (q *Queue) Pop() *tree.Node {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t
}

func (q *Queue) Contains(t *tree.Node) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Contains(q.items, t)
}

// Remove drops t from the queue and reports whether it was queued.
func (q *Queue) Remove(t *tree.Node) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := slices.Index(q.items, t)
	if i < 0 {
		return false
	}
	q.items = slices.Delete(q.items, i, i+1)
	return true
}

// MoveUp swaps t with its predecessor. It reports whether t moved.
func (q *Queue) MoveUp(t *tree.Node) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := slices.Index(q.items, t)
	if i <= 0 {
		return false
	}
	q.items[i-1], q.items[i] = q.items[i], q.items[i-1]
	return true
}

// MoveDown swaps t with its successor. It reports whether t moved.
func (q *Queue) MoveDown(t *tree.Node) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := slices.Index(q.items, t)
	if i < 0 || i == len(q.items)-1 {
		return false
	}
	q.items[i+1], q.items[i] = q.items[i], q.items[i+1]
	return true
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns the queued tasks in order.
func (q *Queue) Snapshot() []*tree.Node {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Clear empties the queue and returns what it held.
func (q *Queue) Clear() []*tree.Node {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
