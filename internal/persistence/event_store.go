package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/petrijr/proctree/pkg/api"
)

// EventFilter selects events. Empty fields mean "no filter" for that field.
type EventFilter struct {
	ComponentUUID string
	Type          api.EventType
	// Limit caps the number of returned events, newest last. Zero means all.
	Limit int
}

func (f EventFilter) matches(ev api.Event) bool {
	if f.ComponentUUID != "" && ev.ComponentUUID != f.ComponentUUID {
		return false
	}
	return f.Type == "" || ev.Type == f.Type
}

// EventStore is an append-only history store for execution and edit events.
type EventStore interface {
	AppendEvent(ctx context.Context, ev api.Event) error
	ListEvents(ctx context.Context, filter EventFilter) ([]api.Event, error)
}

// NoopEventStore discards all events.
type NoopEventStore struct{}

func (NoopEventStore) AppendEvent(ctx context.Context, ev api.Event) error { return nil }
func (NoopEventStore) ListEvents(ctx context.Context, filter EventFilter) ([]api.Event, error) {
	return nil, nil
}

// InMemoryEventStore keeps events in a slice.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events []api.Event
}

var _ EventStore = (*InMemoryEventStore)(nil)

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{}
}

func (s *InMemoryEventStore) AppendEvent(ctx context.Context, ev api.Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryEventStore) ListEvents(ctx context.Context, filter EventFilter) ([]api.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []api.Event
	for _, ev := range s.events {
		if filter.matches(ev) {
			out = append(out, ev)
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out, nil
}
