// Package history records proof verification runs in a SQLite database.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/leapstack-labs/leapproof/pkg/proof"
)

// DefaultLimit is the number of runs ListRuns returns for a non-positive limit.
const DefaultLimit = 20

// timeFormat is fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// LineFailure is one line that did not check out.
type LineFailure struct {
	Line    int    `json:"line"`
	Failure string `json:"failure"`
}

// Run is one recorded verification of a proof file.
type Run struct {
	ID        string        `json:"id"`
	File      string        `json:"file"`
	SHA256    string        `json:"sha256"`
	OK        bool          `json:"ok"`
	Failed    int           `json:"failed"`
	Goal      string        `json:"goal"`
	Lines     []LineFailure `json:"lines,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

// NewRun summarizes a verification of the file with the given content.
func NewRun(file string, content []byte, report proof.Report) Run {
	sum := sha256.Sum256(content)
	run := Run{
		File:   file,
		SHA256: hex.EncodeToString(sum[:]),
		OK:     report.OK(),
		Failed: report.FailedCount(),
		Goal:   report.Goal.String(),
	}
	for _, l := range report.Failed() {
		run.Lines = append(run.Lines, LineFailure{Line: l.Number, Failure: l.Failure.String()})
	}
	return run
}

// Store is a SQLite-backed run history.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open opens the database at path, creating its directory if needed.
// Use ":memory:" for an in-memory database.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}

	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
		dsn += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s.db = db
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores run and returns its ID. A missing ID or timestamp is
// filled in.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CheckedAt.IsZero() {
		run.CheckedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, file, sha256, ok, failed, goal, checked_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.File, run.SHA256, run.OK, run.Failed, run.Goal, run.CheckedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	for _, l := range run.Lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_lines (run_id, line, failure) VALUES (?, ?, ?)`,
			run.ID, l.Line, l.Failure,
		)
		if err != nil {
			return "", fmt.Errorf("failed to record line %d: %w", l.Line, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Debug("recorded run", slog.String("id", run.ID), slog.String("file", run.File), slog.Bool("ok", run.OK))
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, sha256, ok, failed, goal, checked_at FROM runs ORDER BY checked_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		var checkedAt string
		if err := rows.Scan(&run.ID, &run.File, &run.SHA256, &run.OK, &run.Failed, &run.Goal, &checkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CheckedAt, err = time.Parse(timeFormat, checkedAt)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp %q: %w", run.ID, checkedAt, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	for i := range runs {
		lines, err := s.lines(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Lines = lines
	}
	return runs, nil
}

func (s *Store) lines(ctx context.Context, runID string) ([]LineFailure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT line, failure FROM run_lines WHERE run_id = ? ORDER BY line`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lines of run %s: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []LineFailure
	for rows.Next() {
		var l LineFailure
		if err := rows.Scan(&l.Line, &l.Failure); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
