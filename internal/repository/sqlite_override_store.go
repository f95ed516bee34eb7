package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domrepo "LimesMS/internal/domain/repository"
	"LimesMS/pkg/sqlite"
)

const overrideSchema = `
CREATE TABLE IF NOT EXISTS human_overrides (
    client_id  TEXT PRIMARY KEY,
    value      REAL NOT NULL CHECK (value >= 0 AND value <= 5),
    updated_at INTEGER NOT NULL
)`

// SQLiteOverrideStore keeps human overrides in a local SQLite file so they
// survive restarts without Redis.
type SQLiteOverrideStore struct {
	db  *sqlite.Database
	now func() time.Time
}

func NewSQLiteOverrideStore(ctx context.Context, path string) (*SQLiteOverrideStore, error) {
	db, err := sqlite.Open(ctx, path, overrideSchema)
	if err != nil {
		return nil, err
	}
	return &SQLiteOverrideStore{db: db, now: time.Now}, nil
}

func (s *SQLiteOverrideStore) Get(ctx context.Context, clientID string) (float64, error) {
	var v float64
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT value FROM human_overrides WHERE client_id = ?`, clientID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domrepo.ErrOverrideNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get override: %w", err)
	}
	return v, nil
}

func (s *SQLiteOverrideStore) Set(ctx context.Context, clientID string, value float64) error {
	_, err := s.db.DB.ExecContext(ctx, `
        INSERT INTO human_overrides (client_id, value, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(client_id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		clientID, value, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set override: %w", err)
	}
	return nil
}

func (s *SQLiteOverrideStore) Delete(ctx context.Context, clientID string) error {
	res, err := s.db.DB.ExecContext(ctx, `DELETE FROM human_overrides WHERE client_id = ?`, clientID)
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domrepo.ErrOverrideNotFound
	}
	return nil
}

func (s *SQLiteOverrideStore) Close() error { return s.db.Close() }

var _ domrepo.OverrideStore = (*SQLiteOverrideStore)(nil)
