// Package history keeps an audit log of continuation requests. Only request
// metadata and outcomes are recorded; documents themselves are never
// persisted.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one continuation request outcome.
type Record struct {
	ID          int64
	Created     time.Time
	Provider    string
	PromptChars int
	MaxTokens   int
	// Status is "ok" or "failed".
	Status      string
	Reason      string
	OutputChars int
	Duration    time.Duration
}

// Statuses for Record.Status.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Store is a sqlite-backed continuation log.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS continuations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	created      TEXT NOT NULL,
	provider     TEXT NOT NULL,
	prompt_chars INTEGER NOT NULL,
	max_tokens   INTEGER NOT NULL,
	status       TEXT NOT NULL,
	reason       TEXT NOT NULL DEFAULT '',
	output_chars INTEGER NOT NULL DEFAULT 0,
	duration_ms  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_continuations_created ON continuations(created);
`

// Open opens (creating if needed) the continuation log under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}
	path := filepath.Join(dataDir, "history.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records one continuation outcome.
func (s *Store) Append(rec Record) error {
	created := rec.Created
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO continuations
		 (created, provider, prompt_chars, max_tokens, status, reason, output_chars, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		created.UTC().Format(time.RFC3339Nano),
		rec.Provider, rec.PromptChars, rec.MaxTokens,
		rec.Status, rec.Reason, rec.OutputChars,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording continuation: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, created, provider, prompt_chars, max_tokens, status, reason, output_chars, duration_ms
		 FROM continuations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var created string
		var durationMs int64
		if err := rows.Scan(&rec.ID, &created, &rec.Provider, &rec.PromptChars,
			&rec.MaxTokens, &rec.Status, &rec.Reason, &rec.OutputChars, &durationMs); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.Created, _ = time.Parse(time.RFC3339Nano, created)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the total number of recorded continuations.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM continuations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}
