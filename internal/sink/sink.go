package sink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// DefaultTable is the target table when the DSN names none.
const DefaultTable = "cleaned"

var (
	// ErrUnsupportedScheme is returned for DSNs with an unknown scheme.
	ErrUnsupportedScheme = errors.New("unsupported sink scheme")

	// ErrInvalidDSN is returned when a DSN cannot be parsed.
	ErrInvalidDSN = errors.New("invalid sink DSN")

	// ErrNoColumns is returned when writing a table without columns.
	ErrNoColumns = errors.New("table has no columns")
)

// Sink stores a cleaned table.
type Sink interface {
	// Write replaces the target table with table and returns the number of
	// rows written.
	Write(ctx context.Context, table *model.Table) (int64, error)

	// Close releases the connection.
	Close() error
}

// Target is a parsed sink DSN.
type Target struct {
	// Scheme is "sqlite" or "postgres".
	Scheme string

	// Conn is what the driver connects to: a file path for SQLite, a
	// connection string without the table parameter for PostgreSQL.
	Conn string

	// Table is the target table name.
	Table string
}

// Parse splits a sink DSN into its parts.
func Parse(dsn string) (Target, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidDSN, err)
	}

	q := u.Query()
	table := strings.TrimSpace(q.Get("table"))
	if table == "" {
		table = DefaultTable
	}
	q.Del("table")
	u.RawQuery = q.Encode()

	switch strings.ToLower(u.Scheme) {
	case "sqlite", "sqlite3":
		path := u.Host + u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == "" {
			return Target{}, fmt.Errorf("%w: sqlite DSN has no path", ErrInvalidDSN)
		}
		return Target{Scheme: "sqlite", Conn: path, Table: table}, nil
	case "postgres", "postgresql":
		return Target{Scheme: "postgres", Conn: u.String(), Table: table}, nil
	default:
		return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// Open connects to the sink named by dsn.
func Open(ctx context.Context, dsn string) (Sink, error) {
	target, err := Parse(dsn)
	if err != nil {
		return nil, err
	}

	var s Sink
	switch target.Scheme {
	case "sqlite":
		s, err = openSQLite(ctx, target)
	default:
		s, err = openPostgres(ctx, target)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// quoteIdent double-quotes an identifier, escaping embedded quotes. Both
// SQLite and PostgreSQL accept this form.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// rowValues returns the driver values of row i, each coerced to its
// column's type.
func rowValues(table *model.Table, i int) []any {
	values := make([]any, table.NumColumns())
	for j, col := range table.Columns() {
		values[j] = col.Cells[i].Coerce(col.Type).Value()
	}
	return values
}

// createTableSQL builds the CREATE TABLE statement for table using sqlType
// to map data types.
func createTableSQL(name string, table *model.Table, sqlType func(model.DataType) string) string {
	cols := make([]string, table.NumColumns())
	for i, col := range table.Columns() {
		cols[i] = quoteIdent(col.Name) + " " + sqlType(col.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(cols, ", "))
}
