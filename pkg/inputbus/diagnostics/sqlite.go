package diagnostics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrSinkClosed indicates the sink has been closed.
var ErrSinkClosed = errors.New("diagnostics sink closed")

// SQLiteSink persists diagnostics to SQLite as an audit trail.
// Safe for concurrent use.
type SQLiteSink struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteSink opens (or creates) the diagnostics database at path.
// Use ":memory:" for a throwaway store.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS diagnostics (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			event TEXT NOT NULL,
			context TEXT NOT NULL,
			message TEXT NOT NULL,
			at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_diagnostics_kind
		ON diagnostics(kind, seq)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Emit implements Sink.
func (s *SQLiteSink) Emit(ctx context.Context, d Diagnostic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diagnostics (id, seq, kind, event, context, message, at)
		VALUES (
			?,
			COALESCE((SELECT MAX(seq) FROM diagnostics), 0) + 1,
			?, ?, ?, ?, ?
		)
	`, d.ID, string(d.Kind), d.Event, d.Context, d.Message, d.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save diagnostic: %w", err)
	}
	return nil
}

// List returns up to limit diagnostics in emission order. An empty kind
// matches every kind; limit <= 0 means no limit.
func (s *SQLiteSink) List(ctx context.Context, kind Kind, limit int) ([]Diagnostic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrSinkClosed
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, event, context, message, at
		FROM diagnostics
		WHERE ? = '' OR kind = ?
		ORDER BY seq
		LIMIT ?
	`, string(kind), string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("list diagnostics: %w", err)
	}
	defer rows.Close()

	var out []Diagnostic
	for rows.Next() {
		var d Diagnostic
		var k, at string
		if err := rows.Scan(&d.ID, &k, &d.Event, &d.Context, &d.Message, &at); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		d.Kind = Kind(k)
		d.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}
	return out, nil
}

// Count returns the number of stored diagnostics grouped by kind.
func (s *SQLiteSink) Count(ctx context.Context) (map[Kind]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrSinkClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM diagnostics GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count diagnostics: %w", err)
	}
	defer rows.Close()

	counts := make(map[Kind]int)
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[Kind(k)] = n
	}
	return counts, rows.Err()
}

// Close releases the database. Safe to call more than once.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
