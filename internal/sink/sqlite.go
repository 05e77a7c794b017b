package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// SQLiteSink writes tables into a SQLite file.
type SQLiteSink struct {
	db    *sql.DB
	table string
}

func openSQLite(ctx context.Context, target Target) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", target.Conn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &SQLiteSink{db: db, table: target.Table}, nil
}

func sqliteType(t model.DataType) string {
	switch t {
	case model.TypeInteger:
		return "INTEGER"
	case model.TypeFloat:
		return "REAL"
	case model.TypeDate:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// Write replaces the target table with table inside one transaction.
func (s *SQLiteSink) Write(ctx context.Context, table *model.Table) (int64, error) {
	if table.NumColumns() == 0 {
		return 0, ErrNoColumns
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(s.table)); err != nil {
		return 0, fmt.Errorf("sqlite: drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(s.table, table, sqliteType)); err != nil {
		return 0, fmt.Errorf("sqlite: create table: %w", err)
	}

	names := make([]string, table.NumColumns())
	placeholders := make([]string, table.NumColumns())
	for i, name := range table.Names() {
		names[i] = quoteIdent(name)
		placeholders[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(s.table),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
	))
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i := range table.NumRows() {
		if _, err := stmt.ExecContext(ctx, rowValues(table, i)...); err != nil {
			return 0, fmt.Errorf("sqlite: insert row %d: %w", i, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
