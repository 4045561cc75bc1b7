package persistence

import (
	"context"
	"slices"
	"sync"
)

// InMemoryStore is a simple, goroutine-safe ProjectStore backed by a map.
type InMemoryStore struct {
	mu     sync.RWMutex
	groups map[string]GroupRecord
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		groups: make(map[string]GroupRecord),
	}
}

// Ensure InMemoryStore implements the interface.
var _ ProjectStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) SaveGroup(ctx context.Context, rec GroupRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Snapshot = slices.Clone(rec.Snapshot)
	s.groups[rec.Name] = rec
	return nil
}

func (s *InMemoryStore) GetGroup(ctx context.Context, name string) (GroupRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.groups[name]
	if !ok {
		return GroupRecord{}, ErrGroupNotFound
	}
	rec.Snapshot = slices.Clone(rec.Snapshot)
	return rec, nil
}

func (s *InMemoryStore) ListGroups(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.groups))
	for name := range s.groups {
		out = append(out, name)
	}
	slices.Sort(out)
	return out, nil
}

func (s *InMemoryStore) DeleteGroup(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[name]; !ok {
		return ErrGroupNotFound
	}
	delete(s.groups, name)
	return nil
}
