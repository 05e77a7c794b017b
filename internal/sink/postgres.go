package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// PostgresSink writes tables into PostgreSQL using COPY.
type PostgresSink struct {
	pool  *pgxpool.Pool
	table string
}

func openPostgres(ctx context.Context, target Target) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, target.Conn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &PostgresSink{pool: pool, table: target.Table}, nil
}

func postgresType(t model.DataType) string {
	switch t {
	case model.TypeInteger:
		return "BIGINT"
	case model.TypeFloat:
		return "DOUBLE PRECISION"
	case model.TypeDate:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// Write replaces the target table with table in one transaction and loads
// the rows with COPY.
func (s *PostgresSink) Write(ctx context.Context, table *model.Table) (int64, error) {
	if table.NumColumns() == 0 {
		return 0, ErrNoColumns
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+quoteIdent(s.table)); err != nil {
		return 0, fmt.Errorf("postgres: drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(s.table, table, postgresType)); err != nil {
		return 0, fmt.Errorf("postgres: create table: %w", err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{s.table},
		table.Names(),
		pgx.CopyFromSlice(table.NumRows(), func(i int) ([]any, error) {
			return rowValues(table, i), nil
		}),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return 0, fmt.Errorf("postgres: copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return 0, fmt.Errorf("postgres: copy: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return n, nil
}

// Close closes the connection pool.
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
