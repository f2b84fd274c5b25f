package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Store provides durable storage for customers, products, invoices and items.
// It owns one connection pool; callers create it with Open and release it with Close.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open connects to the database named by dsn and verifies the connection.
//
// SQLite databases are configured with:
//   - WAL mode for file databases (concurrent reads during writes)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//   - A single open connection (one writer, and ":memory:" stays alive)
//
// Open does not create tables; call InitSchema once per connection lifecycle.
func Open(dsn string, opts ...Option) (*Store, error) {
	d := dialectFor(dsn)

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if d.name == dialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(db, isMemoryDSN(dsn)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	s := &Store{
		db:      db,
		dialect: d,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the engine name: "sqlite" or "postgres".
func (s *Store) Dialect() string {
	return s.dialect.name
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Customers returns the customer store in autocommit mode.
func (s *Store) Customers() *CustomerStore { return &CustomerStore{s.conn(s.db)} }

// Products returns the product store in autocommit mode.
func (s *Store) Products() *ProductStore { return &ProductStore{s.conn(s.db)} }

// Invoices returns the invoice store in autocommit mode.
func (s *Store) Invoices() *InvoiceStore { return &InvoiceStore{s.conn(s.db)} }

// InvoiceItems returns the invoice item store in autocommit mode.
func (s *Store) InvoiceItems() *InvoiceItemStore { return &InvoiceItemStore{s.conn(s.db)} }

func (s *Store) conn(q querier) conn {
	return conn{q: q, dialect: s.dialect, now: s.now}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB, memory bool) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if !memory {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
