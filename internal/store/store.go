// Package store provides SQLite-based persistence for the contact ledger and round history.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

const currentSchemaVersion = 1

// Store provides access to the SQLite database.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used to stamp contacts and evaluate recency.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens the ledger at the given path, creating the schema if needed.
// Open fails unless the database answers a liveness probe; there is no degraded mode.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer, and :memory: databases are per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := s.Ping(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// OpenMemory opens an in-memory database for testing.
func OpenMemory(opts ...Option) (*Store, error) {
	return Open(":memory:", opts...)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping asks the database engine for its current time.
func (s *Store) Ping(ctx context.Context) (string, error) {
	var now string
	if err := s.db.GetContext(ctx, &now, "SELECT datetime('now')"); err != nil {
		return "", fmt.Errorf("probe database: %w", err)
	}
	return now, nil
}

// Now returns the store clock's current time in UTC, truncated to ledger precision.
func (s *Store) Now() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// migrate runs schema migrations.
func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		// Table doesn't exist, create fresh schema
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	// Forward-only. The ledger must survive upgrades, so there is no drop-and-recreate path.
	if version < currentSchemaVersion {
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("upgrade schema: %w", err)
		}
		if _, err := s.db.Exec("DELETE FROM schema_version WHERE version < ?", currentSchemaVersion); err != nil {
			return fmt.Errorf("upgrade schema: %w", err)
		}
	}

	return nil
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}
