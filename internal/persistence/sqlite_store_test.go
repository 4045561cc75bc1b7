package persistence

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/petrijr/proctree/pkg/api"
)

func newTestSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	// a second connection would see a different in-memory database
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(newTestSQLiteDB(t))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	exerciseProjectStore(t, store)
}

func TestSQLiteEventStore(t *testing.T) {
	store, err := NewSQLiteEventStore(newTestSQLiteDB(t))
	if err != nil {
		t.Fatalf("NewSQLiteEventStore failed: %v", err)
	}
	exerciseEventStore(t, store)
}

func exerciseEventStore(t *testing.T, store EventStore) {
	t.Helper()
	ctx := context.Background()

	events := []api.Event{
		{ComponentUUID: "t1", Type: api.EventTaskQueued, Component: "T1"},
		{ComponentUUID: "t1", Type: api.EventTaskStarted, Component: "T1"},
		{ComponentUUID: "t2", Type: api.EventTaskQueued, Component: "T2"},
		{ComponentUUID: "t1", Type: api.EventTaskFinished, Component: "T1", State: "FINISHED"},
	}
	for _, ev := range events {
		if err := store.AppendEvent(ctx, ev); err != nil {
			t.Fatalf("AppendEvent failed: %v", err)
		}
	}

	got, err := store.ListEvents(ctx, EventFilter{ComponentUUID: "t1"})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events for t1, got %d", len(got))
	}
	if got[0].Type != api.EventTaskQueued || got[2].Type != api.EventTaskFinished || got[2].State != "FINISHED" {
		t.Fatalf("unexpected order or content: %+v", got)
	}
	if got[0].At.IsZero() {
		t.Fatalf("expected timestamp to be filled in")
	}

	queued, err := store.ListEvents(ctx, EventFilter{Type: api.EventTaskQueued})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(queued) != 2 {
		t.Fatalf("expected 2 queued events, got %d", len(queued))
	}

	last, err := store.ListEvents(ctx, EventFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(last) != 2 || last[1].Type != api.EventTaskFinished || last[0].ComponentUUID != "t2" {
		t.Fatalf("expected the two newest events, got %+v", last)
	}
}
