// Package store is the client's persistence layer: a small SQLite-backed
// key-value store for credential and onboarding blobs, plus the append-only
// completed-quiz history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a key has no persisted value. Callers treat
// it as "absent", not as a failure.
var ErrNotFound = errors.New("store: key not found")

// KV is the minimal persistence interface the state machines depend on.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
}

// SQLStore implements KV and the history store on top of SQLite.
type SQLStore struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the store at path and applies pending
// schema migrations.
func Open(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}
	// SQLite allows a single writer; the store is only touched from one
	// process, so a single connection avoids lock contention.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(db.DB); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLStore{db: db}, nil
}

// NewWithDB wraps an existing connection. The caller is responsible for
// the schema; used by tests.
func NewWithDB(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Load implements KV. A missing key yields ErrNotFound.
func (s *SQLStore) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_entries WHERE key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load key %s: %w", key, err)
	}
	return value, nil
}

// Save implements KV, inserting or replacing the value for key.
func (s *SQLStore) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save key %s: %w", key, err)
	}
	return nil
}

// Clear implements KV. Clearing an absent key is a no-op.
func (s *SQLStore) Clear(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to clear key %s: %w", key, err)
	}
	return nil
}
