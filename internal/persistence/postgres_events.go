package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/petrijr/proctree/pkg/api"
)

// PostgresEventStore stores history events in PostgreSQL. Like
// PostgresStore it expects a database opened with a PostgreSQL driver.
type PostgresEventStore struct {
	db *sql.DB
}

var _ EventStore = (*PostgresEventStore)(nil)

func NewPostgresEventStore(db *sql.DB) (*PostgresEventStore, error) {
	s := &PostgresEventStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresEventStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS process_events (
			id BIGSERIAL PRIMARY KEY,
			component_uuid TEXT NOT NULL,
			at TIMESTAMPTZ NOT NULL,
			type TEXT NOT NULL,
			component TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_process_events_component ON process_events(component_uuid, id);
	`)
	return err
}

func (s *PostgresEventStore) AppendEvent(ctx context.Context, ev api.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO process_events (component_uuid, at, type, component, state, detail)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ComponentUUID, at.UTC(), string(ev.Type), ev.Component, ev.State, ev.Detail,
	)
	return err
}

func (s *PostgresEventStore) ListEvents(ctx context.Context, filter EventFilter) ([]api.Event, error) {
	var (
		where []string
		args  []any
	)
	if filter.ComponentUUID != "" {
		args = append(args, filter.ComponentUUID)
		where = append(where, fmt.Sprintf("component_uuid = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}

	query := `SELECT component_uuid, at, type, component, state, detail FROM process_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
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
			typ string
		)
		if err := rows.Scan(&ev.ComponentUUID, &ev.At, &typ, &ev.Component, &ev.State, &ev.Detail); err != nil {
			return nil, err
		}
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
