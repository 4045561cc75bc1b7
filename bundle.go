package proctree

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/petrijr/proctree/internal/coordinator"
	"github.com/petrijr/proctree/internal/editor"
	"github.com/petrijr/proctree/internal/engine"
	"github.com/petrijr/proctree/internal/persistence"
	"github.com/petrijr/proctree/pkg/api"
	workerpkg "github.com/petrijr/proctree/pkg/worker"
)

// EventFilter selects history events.
type EventFilter = persistence.EventFilter

// Bundle wires together an Executor, an Editor, a Coordinator and a Worker
// around durable stores: process groups are saved as snapshots and every
// execution and edit event is appended to a history table.
//
// For now, we only provide a SQLite-backed bundle.
type Bundle struct {
	Executor    *Executor
	Editor      *Editor
	Coordinator *Coordinator
	Worker      *workerpkg.Worker

	// Journal records committed edit transactions.
	Journal *editor.Journal

	registry   *Registry
	serializer api.Serializer
	projects   persistence.ProjectStore
	events     persistence.EventStore
}

// NewSQLiteBundle constructs a bundle whose process groups and history are
// persisted in the provided *sql.DB.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:proctree.db?_journal=WAL")
//	bundle, err := proctree.NewSQLiteBundle(db, worker.Config{})
//	group, err := bundle.LoadGroup(ctx, "project")
func NewSQLiteBundle(db *sql.DB, cfg workerpkg.Config) (*Bundle, error) {
	projects, err := persistence.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	events, err := persistence.NewSQLiteEventStore(db)
	if err != nil {
		return nil, err
	}
	return newBundle(persistence.Persistence{Projects: projects, Events: events}, cfg), nil
}

func newBundle(p persistence.Persistence, cfg workerpkg.Config) *Bundle {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := engine.NewDefaultRegistry()
	obs := api.NewCompositeObserver(
		engine.NewHistoryObserver(p.Events, logger),
		api.NewLoggingObserver(logger),
	)
	journal := editor.NewJournal(logger)
	ser := persistence.GobSerializer{}

	exec := engine.NewExecutor(engine.Config{Registry: reg, Observer: obs, Logger: logger})
	cfg.Logger = logger

	return &Bundle{
		Executor:    exec,
		Editor:      editor.New(editor.Config{Serializer: ser, Factory: reg, Transactions: journal, Observer: obs, Logger: logger}),
		Coordinator: coordinator.New(exec, logger),
		Worker:      workerpkg.NewWithConfig(exec, cfg),
		Journal:     journal,
		registry:    reg,
		serializer:  ser,
		projects:    p.Projects,
		events:      p.Events,
	}
}

// Registry returns the component classes known to the bundle.
func (b *Bundle) Registry() *Registry {
	return b.registry
}

// SaveGroup stores a snapshot of group under its name.
func (b *Bundle) SaveGroup(ctx context.Context, group *Node) error {
	return persistence.SaveGroup(ctx, b.projects, b.serializer, group)
}

// LoadGroup restores the process group stored under name. Components of
// unknown classes come back as placeholders.
func (b *Bundle) LoadGroup(ctx context.Context, name string) (*Node, error) {
	return persistence.LoadGroup(ctx, b.projects, b.serializer, name, b.registry)
}

// Groups lists the stored process group names.
func (b *Bundle) Groups(ctx context.Context) ([]string, error) {
	return b.projects.ListGroups(ctx)
}

// History returns recorded events matching filter, oldest first.
func (b *Bundle) History(ctx context.Context, filter EventFilter) ([]Event, error) {
	return b.events.ListEvents(ctx, filter)
}
