package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one row of run history.
type Run struct {
	RunID          string    `json:"run_id"`
	Mode           string    `json:"mode"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Catalog        string    `json:"catalog"`
	Total          int       `json:"total"`
	AlreadyLocal   int       `json:"already_local"`
	Resolved       int       `json:"resolved"`
	Unresolved     int       `json:"unresolved"`
	Changed        int       `json:"changed"`
	ResolutionRate float64   `json:"resolution_rate"`
	Committed      bool      `json:"committed"`
	BackupPath     string    `json:"backup_path,omitempty"`
	ReportPath     string    `json:"report_path,omitempty"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts or replaces the row for run.RunID.
func (s *Store) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO runs (
    run_id, mode, started_at, finished_at, catalog, total, already_local,
    resolved, unresolved, changed, resolution_rate, committed, backup_path,
    report_path, error_kind, error_message
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Mode, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.Catalog,
		run.Total, run.AlreadyLocal, run.Resolved, run.Unresolved, run.Changed, run.ResolutionRate,
		boolToInt(run.Committed), run.BackupPath, run.ReportPath, run.ErrorKind, run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.RunID, err)
	}
	return nil
}

// List returns the newest runs first. limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `
SELECT run_id, mode, started_at, finished_at, catalog, total, already_local,
       resolved, unresolved, changed, resolution_rate, committed, backup_path,
       report_path, error_kind, error_message
FROM runs ORDER BY started_at DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			started   string
			finished  string
			committed int
		)
		if err := rows.Scan(&run.RunID, &run.Mode, &started, &finished, &run.Catalog, &run.Total,
			&run.AlreadyLocal, &run.Resolved, &run.Unresolved, &run.Changed, &run.ResolutionRate,
			&committed, &run.BackupPath, &run.ReportPath, &run.ErrorKind, &run.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		run.Committed = committed != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Prune keeps the newest keep runs and deletes the rest. keep <= 0 is a no-op.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
DELETE FROM runs WHERE run_id NOT IN (
    SELECT run_id FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?
)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
