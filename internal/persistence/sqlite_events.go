package persistence

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/petrijr/proctree/pkg/api"
)

// SQLiteEventStore stores history events in SQLite.
type SQLiteEventStore struct {
	db *sql.DB
}

// Ensure SQLiteEventStore implements the interface.
var _ EventStore = (*SQLiteEventStore)(nil)

func NewSQLiteEventStore(db *sql.DB) (*SQLiteEventStore, error) {
	s := &SQLiteEventStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteEventStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS process_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			component_uuid TEXT NOT NULL,
			at INTEGER NOT NULL,
			type TEXT NOT NULL,
			component TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_process_events_component ON process_events(component_uuid, id);
	`)
	return err
}

func (s *SQLiteEventStore) AppendEvent(ctx context.Context, ev api.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO process_events (component_uuid, at, type, component, state, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ComponentUUID,
		at.UnixNano(),
		string(ev.Type),
		ev.Component,
		ev.State,
		ev.Detail,
	)
	return err
}

func (s *SQLiteEventStore) ListEvents(ctx context.Context, filter EventFilter) ([]api.Event, error) {
	var (
		where []string
		args  []any
	)
	if filter.ComponentUUID != "" {
		where = append(where, "component_uuid = ?")
		args = append(args, filter.ComponentUUID)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}

	query := `SELECT component_uuid, at, type, component, state, detail FROM process_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.Event
	for rows.Next() {
		var (
			ev  api.Event
			atN int64
			typ string
		)
		if err := rows.Scan(&ev.ComponentUUID, &atN, &typ, &ev.Component, &ev.State, &ev.Detail); err != nil {
			return nil, err
		}
		ev.At = time.Unix(0, atN)
		ev.Type = api.EventType(typ)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest last
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
