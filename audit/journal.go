// Package audit keeps a SQLite journal of executed operations: one row per call
// that reached a registered operation, with its outcome and duration.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skosovsky/opsy"
)

// Status is the outcome of a recorded call.
type Status string

const (
	StatusOK      Status = "ok"
	StatusInvalid Status = "invalid" // rejected by argument validation
	StatusError   Status = "error"   // the handler failed
)

// StatusOf classifies a call result.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case opsy.IsClientError(err):
		return StatusInvalid
	default:
		return StatusError
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS operation_calls (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    call_id     TEXT NOT NULL DEFAULT '',
    operation   TEXT NOT NULL,
    status      TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL,
    created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_operation_calls_operation ON operation_calls(operation);
`

// Entry is one journal row.
type Entry struct {
	ID        int64
	CallID    string
	Operation string
	Status    Status
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

// Journal is the operation call journal. It is safe for concurrent use.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Journal.
type Option func(*Journal)

// WithLogger sets the logger used for hook failures.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// Open opens (creating if needed) the journal database at path. ":memory:" keeps
// the journal in memory.
func Open(ctx context.Context, path string, opts ...Option) (*Journal, error) {
	if path == "" {
		return nil, errors.New("audit: database path cannot be empty")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database at %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	j := &Journal{db: db, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends one entry. CreatedAt defaults to now.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = j.now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO operation_calls (call_id, operation, status, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.CallID, e.Operation, string(e.Status), e.Error, e.Duration.Milliseconds(), e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Operation, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, call_id, operation, status, error, duration_ms, created_at
		FROM operation_calls ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			status     string
			durationMS int64
			createdAt  int64
		)
		if err := rows.Scan(&e.ID, &e.CallID, &e.Operation, &status, &e.Error, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Status = Status(status)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns how many calls were recorded per status.
func (j *Journal) Count(ctx context.Context) (map[Status]int, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM operation_calls GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	defer rows.Close()

	out := make(map[Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[Status(status)] = n
	}
	return out, rows.Err()
}

// Hook returns a registry hook (see opsy.WithOnAfterExecute) that records every
// call. Write failures are logged, never returned to the caller.
func (j *Journal) Hook() func(context.Context, opsy.Call, opsy.Result, time.Duration) {
	return func(ctx context.Context, call opsy.Call, res opsy.Result, d time.Duration) {
		e := Entry{
			CallID:    call.ID,
			Operation: call.Operation,
			Status:    StatusOf(res.Error),
			Duration:  d,
		}
		if res.Error != nil {
			e.Error = res.Error.Error()
		}
		if err := j.Record(context.WithoutCancel(ctx), e); err != nil {
			j.logger.WarnContext(ctx, "audit record failed", "operation", call.Operation, "error", err)
		}
	}
}
