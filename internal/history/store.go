// Package history records conversion outcomes in SQLite for later inspection.
//
// The store is an audit log, not a work queue: rows are appended when a
// conversion finishes and never drive scheduling. The PDF directory remains
// the source of truth for what exists; history answers "what happened and
// when".
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dwfx2pdf/internal/config"
	"dwfx2pdf/internal/convert"
)

// Store persists conversion outcomes backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "history.db"))
}

// OpenPath opens the history database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Record appends one finished conversion to the log.
func (s *Store) Record(ctx context.Context, submitter Submitter, outcome convert.Outcome) (*Entry, error) {
	now := time.Now().UTC()

	var (
		failureKind  any
		errorMessage any
	)
	if outcome.Err != nil {
		failureKind = string(outcome.Err.Kind)
		errorMessage = outcome.Err.Message
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversions (
            source_path, output_path, submitter, success, skipped,
            failure_kind, error_message, duration_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.Source,
		nullableString(outcome.Output),
		string(submitter),
		boolToInt(outcome.Success),
		boolToInt(outcome.Skipped),
		failureKind,
		errorMessage,
		outcome.Duration.Milliseconds(),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversion: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches one entry by identifier. A missing id yields nil, nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM conversions WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM conversions ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Failures returns the newest failed entries, most recent first.
func (s *Store) Failures(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM conversions
         WHERE success = 0 AND skipped = 0 ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Stats aggregates totals over the whole log.
func (s *Store) Stats(ctx context.Context) (Summary, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COALESCE(SUM(CASE WHEN success = 1 AND skipped = 0 THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(skipped), 0),
               COALESCE(SUM(CASE WHEN success = 0 AND skipped = 0 THEN 1 ELSE 0 END), 0)
        FROM conversions`)

	var summary Summary
	if err := row.Scan(&summary.Total, &summary.Succeeded, &summary.Skipped, &summary.Failed); err != nil {
		return Summary{}, fmt.Errorf("history stats: %w", err)
	}
	return summary, nil
}

// Prune removes entries older than cutoff and reports how many were deleted.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM conversions WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

const entryColumns = "id, source_path, output_path, submitter, success, skipped, failure_kind, error_message, duration_ms, created_at"

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id           int64
		sourcePath   string
		outputPath   sql.NullString
		submitter    string
		success      int
		skipped      int
		failureKind  sql.NullString
		errorMessage sql.NullString
		durationMs   int64
		createdRaw   string
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&outputPath,
		&submitter,
		&success,
		&skipped,
		&failureKind,
		&errorMessage,
		&durationMs,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:           id,
		Source:       sourcePath,
		Output:       outputPath.String,
		Submitter:    Submitter(submitter),
		Success:      success != 0,
		Skipped:      skipped != 0,
		FailureKind:  convert.FailureKind(failureKind.String),
		ErrorMessage: errorMessage.String,
		Duration:     time.Duration(durationMs) * time.Millisecond,
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
