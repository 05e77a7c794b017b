package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// FileName is the name of the history database inside its directory.
const FileName = "history.db"

// timestampLayout is fixed width so that stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB provides SQLite-based storage for cleaning runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per cleaning run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		fingerprint TEXT,
		timestamp TEXT NOT NULL,
		rows_before INTEGER NOT NULL,
		columns_before INTEGER NOT NULL,
		rows_after INTEGER NOT NULL,
		columns_after INTEGER NOT NULL,
		removed_rows INTEGER NOT NULL,
		removed_columns INTEGER NOT NULL,
		cancelled INTEGER NOT NULL DEFAULT 0,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- Per-column statistics of a run
	CREATE TABLE IF NOT EXISTS column_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		origin TEXT NOT NULL,
		name TEXT,
		removed INTEGER NOT NULL DEFAULT 0,
		type_before TEXT,
		type_after TEXT,
		valid_before REAL,
		valid_after REAL,
		nonconforming_found INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_column_stats_run ON column_stats(run_id);

	-- Audit trail of a run
	CREATE TABLE IF NOT EXISTS cleaning_operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		step TEXT NOT NULL,
		column_name TEXT,
		operation TEXT NOT NULL,
		reason TEXT,
		cells INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_operations_run ON cleaning_operations(run_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is a cleaning run to be stored.
type Run struct {
	// ID is assigned by SaveRun when empty.
	ID string

	// Fingerprint is the SHA3-256 digest of the input, if known.
	Fingerprint string

	// Summary is the run summary. Its Source and GeneratedAt identify the
	// input and the time of the run.
	Summary *model.Summary
}

// SaveRun stores a run with its column statistics and operations in one
// transaction and returns the run ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *Run) (string, error) {
	s := run.Summary
	if s == nil {
		return "", errors.New("run has no summary")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	summaryJSON, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, source, fingerprint, timestamp, rows_before, columns_before,
		rows_after, columns_after, removed_rows, removed_columns, cancelled, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		s.Source,
		run.Fingerprint,
		s.GeneratedAt.UTC().Format(timestampLayout),
		s.RowsBefore,
		s.ColumnsBefore,
		s.RowsAfter,
		s.ColumnsAfter,
		s.RemovedRows,
		s.RemovedColumns,
		s.Cancelled,
		string(summaryJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, c := range s.Columns {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO column_stats (run_id, origin, name, removed, type_before, type_after,
			valid_before, valid_after, nonconforming_found)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID, c.Origin, c.Name, c.Removed, string(c.TypeBefore), string(c.TypeAfter),
			c.ValidBefore, c.ValidAfter, c.NonconformingFound,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert column stats for %s: %w", c.Origin, err)
		}
	}

	for i, op := range s.Operations {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO cleaning_operations (run_id, seq, step, column_name, operation, reason, cells)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID, i, op.Step, op.Column, op.Operation, op.Reason, op.Cells,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert operation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.ID, nil
}

// RunMetadata contains summary information about a stored run.
// This is used for listing history without loading the full summary.
type RunMetadata struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Fingerprint    string    `json:"fingerprint,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	RowsBefore     int       `json:"rows_before"`
	RowsAfter      int       `json:"rows_after"`
	ColumnsBefore  int       `json:"columns_before"`
	ColumnsAfter   int       `json:"columns_after"`
	RemovedRows    int       `json:"removed_rows"`
	RemovedColumns int       `json:"removed_columns"`
	Cancelled      bool      `json:"cancelled"`
}

// ListRuns returns run metadata, newest first. When source is not empty
// only runs of that source are returned.
func (hdb *HistoryDB) ListRuns(ctx context.Context, source string) ([]RunMetadata, error) {
	query := `
	SELECT id, source, fingerprint, timestamp, rows_before, rows_after,
		columns_before, columns_after, removed_rows, removed_columns, cancelled
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0, 1)

	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}

	query += " ORDER BY timestamp DESC, rowid DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var fingerprint sql.NullString
		var timestamp string

		err := rows.Scan(
			&meta.ID,
			&meta.Source,
			&fingerprint,
			&timestamp,
			&meta.RowsBefore,
			&meta.RowsAfter,
			&meta.ColumnsBefore,
			&meta.ColumnsAfter,
			&meta.RemovedRows,
			&meta.RemovedColumns,
			&meta.Cancelled,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		meta.Fingerprint = fingerprint.String
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// FindByFingerprint returns the runs whose input had the given fingerprint,
// newest first.
func (hdb *HistoryDB) FindByFingerprint(ctx context.Context, fingerprint string) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT id FROM runs WHERE fingerprint = ? ORDER BY timestamp DESC, rowid DESC
	`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to find runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetRun retrieves the summary of a run by ID. It returns nil without an
// error when no such run exists.
func (hdb *HistoryDB) GetRun(ctx context.Context, id string) (*model.Summary, error) {
	var summaryJSON string
	err := hdb.db.QueryRowContext(ctx, `SELECT summary_json FROM runs WHERE id = ?`, id).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var summary model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return &summary, nil
}

// Operations returns the audit trail of a run in the order it was recorded.
func (hdb *HistoryDB) Operations(ctx context.Context, runID string) ([]model.CleaningOperation, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT step, column_name, operation, reason, cells
	FROM cleaning_operations
	WHERE run_id = ?
	ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get operations: %w", err)
	}
	defer rows.Close()

	var ops []model.CleaningOperation
	for rows.Next() {
		var op model.CleaningOperation
		var column, reason sql.NullString
		if err := rows.Scan(&op.Step, &column, &op.Operation, &reason, &op.Cells); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		op.Column = column.String
		op.Reason = reason.String
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// ColumnHistory is one column's statistics in one run.
type ColumnHistory struct {
	RunID       string         `json:"run_id"`
	Origin      string         `json:"origin"`
	Name        string         `json:"name,omitempty"`
	Removed     bool           `json:"removed"`
	TypeBefore  model.DataType `json:"type_before"`
	TypeAfter   model.DataType `json:"type_after,omitempty"`
	ValidBefore float64        `json:"valid_before_pct"`
	ValidAfter  float64        `json:"valid_after_pct"`
}

// ColumnStats returns the per-column statistics of a run in load order.
func (hdb *HistoryDB) ColumnStats(ctx context.Context, runID string) ([]ColumnHistory, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT run_id, origin, name, removed, type_before, type_after, valid_before, valid_after
	FROM column_stats
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get column stats: %w", err)
	}
	defer rows.Close()

	var stats []ColumnHistory
	for rows.Next() {
		var ch ColumnHistory
		var name, before, after sql.NullString
		if err := rows.Scan(&ch.RunID, &ch.Origin, &name, &ch.Removed, &before, &after,
			&ch.ValidBefore, &ch.ValidAfter); err != nil {
			return nil, fmt.Errorf("failed to scan column stats: %w", err)
		}
		ch.Name = name.String
		ch.TypeBefore = model.DataType(before.String)
		ch.TypeAfter = model.DataType(after.String)
		stats = append(stats, ch)
	}
	return stats, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses a stored timestamp, returning zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
