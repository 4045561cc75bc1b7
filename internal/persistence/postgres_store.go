package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresStore is a ProjectStore backed by PostgreSQL.
//
// It expects an *sql.DB that uses a PostgreSQL driver, for example
// "github.com/jackc/pgx/v5/stdlib".
//
// The caller is responsible for:
//   - importing the driver for its side effects, e.g.:
//     _ "github.com/jackc/pgx/v5/stdlib"
//   - providing a DSN via sql.Open("pgx", dsn).
type PostgresStore struct {
	db *sql.DB
}

// Ensure PostgresStore implements ProjectStore.
var _ ProjectStore = (*PostgresStore)(nil)

// NewPostgresStore initializes the required schema in the given database and
// returns a new PostgresStore.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS process_groups (
			name TEXT PRIMARY KEY,
			snapshot BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func (s *PostgresStore) SaveGroup(ctx context.Context, rec GroupRecord) error {
	at := rec.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO process_groups (name, snapshot, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			snapshot   = EXCLUDED.snapshot,
			updated_at = EXCLUDED.updated_at
	`, rec.Name, rec.Snapshot, at.UTC())
	return err
}

func (s *PostgresStore) GetGroup(ctx context.Context, name string) (GroupRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, snapshot, updated_at FROM process_groups WHERE name = $1
	`, name)

	var rec GroupRecord
	if err := row.Scan(&rec.Name, &rec.Snapshot, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GroupRecord{}, ErrGroupNotFound
		}
		return GroupRecord{}, err
	}
	return rec, nil
}

func (s *PostgresStore) ListGroups(ctx context.Context) ([]string, error) {
	return listNames(ctx, s.db, `SELECT name FROM process_groups ORDER BY name ASC`)
}

func (s *PostgresStore) DeleteGroup(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM process_groups WHERE name = $1`, name)
	return checkDeleted(res, err)
}
