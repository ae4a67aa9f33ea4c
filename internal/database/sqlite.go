package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"q2stage/internal/database/migrations"
	"q2stage/internal/stage"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteHistory implements stage.History using SQLite.
type SQLiteHistory struct {
	db   *sql.DB
	path string
}

// NewSQLiteHistory opens (creating if needed) the history database at path and
// brings its schema up to date. path can be a file path or ":memory:".
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	if err := migrations.CheckDBMigrationStatus(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history schema out of date: %w", err)
	}

	return &SQLiteHistory{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer per invocation; a single connection also keeps ":memory:" coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// RecordRun appends a finished run.
func (h *SQLiteHistory) RecordRun(run *stage.Run) error {
	_, err := h.db.Exec(`
		INSERT INTO staging_runs (
			run_id, configuration, source_path, destination_path,
			size, checksum, status, error, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Configuration, run.SourcePath, run.DestinationPath,
		run.Size, run.Checksum, run.Status, run.Error,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting staging run: %w", err)
	}
	return nil
}

// ListRuns returns at most limit runs, newest first. A non-positive limit returns all runs.
func (h *SQLiteHistory) ListRuns(limit int) ([]*stage.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.db.Query(`
		SELECT run_id, configuration, source_path, destination_path,
		       size, checksum, status, error, started_at, finished_at
		FROM staging_runs
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying staging runs: %w", err)
	}
	defer rows.Close()

	var runs []*stage.Run
	for rows.Next() {
		var r stage.Run
		if err := rows.Scan(
			&r.ID, &r.Configuration, &r.SourcePath, &r.DestinationPath,
			&r.Size, &r.Checksum, &r.Status, &r.Error, &r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning staging run: %w", err)
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating staging runs: %w", err)
	}
	return runs, nil
}

// Close closes the database connection.
func (h *SQLiteHistory) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteHistory implements stage.History interface
var _ stage.History = (*SQLiteHistory)(nil)
