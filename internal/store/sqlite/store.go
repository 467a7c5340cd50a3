// Package sqlite provides the SQLite-backed implementation of store.Store.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/productlabel/productlabel-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var _ store.Store = (*Store)(nil)

// Store provides SQLite-backed persistence for labels and catalog data.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	mu              sync.RWMutex
	singleStoreMode bool
}

// Open creates a new SQLite store at the given path.
// Per-connection pragmas go through the DSN so every pooled connection gets
// them; transactions begin IMMEDIATE so label writes are serialized.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec pragma journal_mode: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SetSingleStoreMode toggles single-store mode. In that mode every label is
// treated as default scope by the uniqueness check.
func (s *Store) SetSingleStoreMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.singleStoreMode = enabled
}

// IsSingleStoreMode returns whether single-store mode is enabled.
func (s *Store) IsSingleStoreMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.singleStoreMode
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// inClause returns "?,?,?" for n values together with the args slice.
func inClause(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
