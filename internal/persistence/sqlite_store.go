package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteStore is a ProjectStore backed by SQLite.
//
// It expects an *sql.DB opened with the "sqlite" driver, e.g. by importing
// _ "modernc.org/sqlite".
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements ProjectStore.
var _ ProjectStore = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the required schema and returns a new store.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS process_groups (
			name TEXT PRIMARY KEY,
			snapshot BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	return err
}

func (s *SQLiteStore) SaveGroup(ctx context.Context, rec GroupRecord) error {
	at := rec.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO process_groups (name, snapshot, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at
	`, rec.Name, rec.Snapshot, at.UnixNano())
	return err
}

func (s *SQLiteStore) GetGroup(ctx context.Context, name string) (GroupRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, snapshot, updated_at FROM process_groups WHERE name = ?
	`, name)

	var (
		rec GroupRecord
		atN int64
	)
	if err := row.Scan(&rec.Name, &rec.Snapshot, &atN); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GroupRecord{}, ErrGroupNotFound
		}
		return GroupRecord{}, err
	}
	rec.UpdatedAt = time.Unix(0, atN)
	return rec, nil
}

func (s *SQLiteStore) ListGroups(ctx context.Context) ([]string, error) {
	return listNames(ctx, s.db, `SELECT name FROM process_groups ORDER BY name ASC`)
}

func (s *SQLiteStore) DeleteGroup(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM process_groups WHERE name = ?`, name)
	return checkDeleted(res, err)
}

func listNames(ctx context.Context, db *sql.DB, query string) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func checkDeleted(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGroupNotFound
	}
	return nil
}
