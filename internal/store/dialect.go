package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
)

// dialect isolates the differences between the supported engines.
type dialect struct {
	name   string
	driver string
}

func dialectFor(dsn string) dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return dialect{name: dialectPostgres, driver: "pgx"}
	}
	return dialect{name: dialectSQLite, driver: "sqlite3"}
}

// rebind rewrites "?" placeholders to "$1, $2, ..." for PostgreSQL.
func (d dialect) rebind(query string) string {
	if d.name != dialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn binds a querier to a dialect and clock. Every entity store embeds one.
type conn struct {
	q       querier
	dialect dialect
	now     func() time.Time
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.dialect.rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.dialect.rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.dialect.rebind(query), args...)
}

// timestamp returns the current time at microsecond precision, the finest
// resolution both engines round-trip.
func (c conn) timestamp() time.Time {
	return c.now().UTC().Truncate(time.Microsecond)
}

// count returns the number of rows in table. table is always a constant.
func (c conn) count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := c.queryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
