// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records compression runs in a local SQLite database.
// Implements: prd004-run-history (R1-R4);
//
//	docs/ARCHITECTURE § Run History.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

// DefaultMaxResults caps run listings when the configuration names no limit.
const DefaultMaxResults = 20

// timeLayout is RFC 3339 with fixed-width nanoseconds. Timestamps are stored
// as TEXT, and only zero-padded fractions keep lexicographic ORDER BY
// chronological within the same second.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the run history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the history database at path. Parent directories and
// the schema are created as needed.
func Open(path string, maxResults int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			source_dir TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			ghostscript TEXT,
			compressed INTEGER NOT NULL DEFAULT 0,
			copied INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			bytes_in INTEGER NOT NULL DEFAULT 0,
			bytes_out INTEGER NOT NULL DEFAULT 0,
			emailed INTEGER NOT NULL DEFAULT 0,
			cleaned INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS run_files (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			output TEXT,
			status TEXT NOT NULL,
			bytes_in INTEGER NOT NULL DEFAULT 0,
			bytes_out INTEGER NOT NULL DEFAULT 0,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_files_run_id ON run_files(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	SourceDir   string    `json:"source_dir"`
	OutputDir   string    `json:"output_dir"`
	Ghostscript string    `json:"ghostscript,omitempty"`
	Compressed  int       `json:"compressed"`
	Copied      int       `json:"copied"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	BytesIn     int64     `json:"bytes_in"`
	BytesOut    int64     `json:"bytes_out"`
	Emailed     bool      `json:"emailed"`
	Cleaned     bool      `json:"cleaned"`
}

// FileRecord is one per-file row of a recorded run.
type FileRecord struct {
	Source   string `json:"source"`
	Output   string `json:"output,omitempty"`
	Status   string `json:"status"`
	BytesIn  int64  `json:"bytes_in"`
	BytesOut int64  `json:"bytes_out"`
	Error    string `json:"error,omitempty"`
}

// RecordRun stores a run manifest and its per-file entries in a single
// transaction. Recording the same run ID twice is an error.
func (s *Store) RecordRun(ctx context.Context, m *types.Manifest, emailed, cleaned bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, source_dir, output_dir, ghostscript,
			compressed, copied, skipped, failed, bytes_in, bytes_out, emailed, cleaned)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.StartedAt.UTC().Format(timeLayout),
		m.FinishedAt.UTC().Format(timeLayout),
		m.SourceDir, m.OutDir, m.Ghostscript,
		m.Compressed, m.Copied, m.Skipped, m.Failed,
		m.SourceBytes, m.OutputBytes, emailed, cleaned,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", m.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_files (run_id, source, output, status, bytes_in, bytes_out, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range m.Files {
		_, err := stmt.ExecContext(ctx,
			m.ID, f.Source, f.Output, string(f.Status), f.SourceBytes, f.OutputBytes, f.Error)
		if err != nil {
			return fmt.Errorf("inserting file %s: %w", f.Source, err)
		}
	}

	return tx.Commit()
}

// MarkEmailed flags a recorded run as e-mailed.
func (s *Store) MarkEmailed(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET emailed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("run %s is not recorded", id)
	}
	return nil
}

// ResolveRun expands a run ID prefix to the full ID. A prefix matching no
// run or more than one run is an error.
func (s *Store) ResolveRun(ctx context.Context, prefix string) (string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE id LIKE ? || '%' LIMIT 2`, prefix)
	if err != nil {
		return "", fmt.Errorf("resolving run %q: %w", prefix, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("resolving run %q: %w", prefix, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolving run %q: %w", prefix, err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no run matches %q", prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("run id %q is ambiguous", prefix)
	}
}

// ListRuns returns the most recent runs, newest first. A limit below 1 means
// the store's configured maximum.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, source_dir, output_dir, ghostscript,
			compressed, copied, skipped, failed, bytes_in, bytes_out, emailed, cleaned
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// RunFiles returns the run summary and per-file rows for a run ID or unique
// ID prefix.
func (s *Store) RunFiles(ctx context.Context, idOrPrefix string) (RunSummary, []FileRecord, error) {
	id, err := s.ResolveRun(ctx, idOrPrefix)
	if err != nil {
		return RunSummary{}, nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, source_dir, output_dir, ghostscript,
			compressed, copied, skipped, failed, bytes_in, bytes_out, emailed, cleaned
		 FROM runs WHERE id = ?`, id)
	summary, err := scanRun(row)
	if err != nil {
		return RunSummary{}, nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source, output, status, bytes_in, bytes_out, error
		 FROM run_files WHERE run_id = ? ORDER BY source`, id)
	if err != nil {
		return RunSummary{}, nil, fmt.Errorf("loading files for run %s: %w", id, err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var output, errText sql.NullString
		if err := rows.Scan(&f.Source, &output, &f.Status, &f.BytesIn, &f.BytesOut, &errText); err != nil {
			return RunSummary{}, nil, fmt.Errorf("loading files for run %s: %w", id, err)
		}
		f.Output = output.String
		f.Error = errText.String
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return RunSummary{}, nil, fmt.Errorf("loading files for run %s: %w", id, err)
	}
	return summary, files, nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunSummary, error) {
	var r RunSummary
	var started, finished string
	var ghostscript sql.NullString
	err := row.Scan(&r.ID, &started, &finished, &r.SourceDir, &r.OutputDir, &ghostscript,
		&r.Compressed, &r.Copied, &r.Skipped, &r.Failed, &r.BytesIn, &r.BytesOut,
		&r.Emailed, &r.Cleaned)
	if err != nil {
		return RunSummary{}, err
	}
	r.Ghostscript = ghostscript.String
	if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return RunSummary{}, fmt.Errorf("parsing started_at: %w", err)
	}
	if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return RunSummary{}, fmt.Errorf("parsing finished_at: %w", err)
	}
	return r, nil
}
