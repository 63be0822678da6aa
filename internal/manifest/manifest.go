// Package manifest writes a SQLite record of every placement made by a run.
// The database is recreated on each run and never read back by eventsort.
package manifest

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"eventsort/internal/placement"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// Placement statuses.
const (
	StatusCopied  = "copied"
	StatusPlanned = "planned"
	StatusFailed  = "failed"
)

// Run describes the run that owns the recorded placements.
type Run struct {
	ID        string
	SourceDir string
	TargetDir string
	StartedAt time.Time
	DryRun    bool
}

// Store wraps the manifest database.
type Store struct {
	db    *sql.DB
	path  string
	runID string
}

// Create removes any manifest at path and opens a fresh one for run.
func Create(ctx context.Context, path string, run Run) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure manifest directory: %w", err)
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove previous manifest: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, runID: run.ID}
	if err := store.createSchema(ctx, run); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) createSchema(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, source_dir, target_dir, started_at, dry_run) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.SourceDir, run.TargetDir, run.StartedAt.UTC().Format(time.RFC3339Nano), boolInt(run.DryRun),
	); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return tx.Commit()
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Record inserts one row per placement in a single transaction.
func (s *Store) Record(ctx context.Context, placements []placement.Placement, dryRun bool) error {
	if len(placements) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin manifest tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO placements (
            run_id, source, destination, kind, cluster_label, date_label, status, overwrote, error
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare manifest insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range placements {
		status := StatusCopied
		var errText sql.NullString
		switch {
		case p.Err != nil:
			status = StatusFailed
			errText = sql.NullString{String: p.Err.Error(), Valid: true}
		case dryRun:
			status = StatusPlanned
		}
		var label sql.NullInt64
		if p.Kind == placement.KindCluster {
			label = sql.NullInt64{Int64: int64(p.Label), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			s.runID, p.Source, p.Destination, p.Kind.String(), label, p.DateLabel, status, boolInt(p.Overwrote), errText,
		); err != nil {
			return fmt.Errorf("insert placement %s: %w", p.Source, err)
		}
	}
	return tx.Commit()
}

// Finish stamps the run's completion time.
func (s *Store) Finish(ctx context.Context, at time.Time) error {
	_, err := s.db.ExecContext(ctx, "UPDATE runs SET finished_at = ? WHERE run_id = ?",
		at.UTC().Format(time.RFC3339Nano), s.runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Counts returns the number of recorded placements per status.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(1) FROM placements WHERE run_id = ? GROUP BY status", s.runID)
	if err != nil {
		return nil, fmt.Errorf("count placements: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan placement count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
