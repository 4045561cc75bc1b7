package persistence

// Persistence bundles the store interfaces so callers can depend on a single
// abstraction.
type Persistence struct {
	Projects ProjectStore
	Events   EventStore
}

// NewInMemoryPersistence returns non-durable stores, useful for tests.
func NewInMemoryPersistence() Persistence {
	return Persistence{
		Projects: NewInMemoryStore(),
		Events:   NewInMemoryEventStore(),
	}
}
