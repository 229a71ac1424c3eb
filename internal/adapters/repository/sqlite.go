package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/okian/rosterquiz/pkg/metrics"

	// Registers the pure-Go "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at INTEGER NOT NULL
)`

// SQLiteStore persists values in a single SQLite table so game state
// survives process restarts.
type SQLiteStore struct {
	mu          sync.RWMutex
	sqlDB       *sql.DB
	busyTimeout time.Duration
	now         func() time.Time
}

// OpenSQLite opens (creating if needed) a SQLite store at path and applies
// the schema.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	s := &SQLiteStore{
		busyTimeout: defaultBusyTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	sqlDB, err := sql.Open("sqlite", s.dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps read-modify-write callers from interleaving at the driver.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s.sqlDB = sqlDB
	return s, nil
}

// dsn builds a file: URI for path. The path is escaped so characters such
// as '?' and '#' stay part of the file name.
func (s *SQLiteStore) dsn(path string) string {
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.Clean(path),
		OmitHost: true,
		RawQuery: fmt.Sprintf("_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
			s.busyTimeout.Milliseconds()),
	}
	return u.String()
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(key) == "" {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sqlDB == nil {
		return nil, ErrStoreClosed
	}

	var value []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordStoreOperation("get", "miss", msSince(start))
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreOperation("get", "error", msSince(start))
		metrics.RecordErrorByComponent("repository", "sqlite_get")
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	metrics.RecordStoreOperation("get", "ok", msSince(start))
	return clone(value), nil
}

// Set upserts value under key.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return ErrStoreClosed
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, clone(value), s.now().UTC().UnixMilli(),
	)
	if err != nil {
		metrics.RecordStoreOperation("set", "error", msSince(start))
		metrics.RecordErrorByComponent("repository", "sqlite_set")
		return fmt.Errorf("set %q: %w", key, err)
	}
	metrics.RecordStoreOperation("set", "ok", msSince(start))
	return nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return nil
	}
	err := s.sqlDB.Close()
	s.sqlDB = nil
	return err
}
