// Package store provides SQL-backed durable storage for invoices.
//
// The store is the Storage Gateway plus four entity stores:
//   - Customers:    find-by-name dedup lookups and CRUD
//   - Products:     find-by-name dedup lookups and CRUD
//   - Invoices:     CRUD plus list-by-customer
//   - InvoiceItems: CRUD plus list-by-invoice and delete-by-invoice
//
// # Engines
//
// Open picks the engine from the DSN:
//   - "postgres://..." or "postgresql://..." uses PostgreSQL via pgx
//   - anything else is a SQLite path (":memory:" for a private in-memory DB)
//
// Queries are written once with "?" placeholders and rebound per dialect.
// Inserts use INSERT ... RETURNING id on both engines.
//
// # Transactions
//
// A *Store is an explicit connection object owned by the caller. Entity
// stores obtained from a *Tx run inside that transaction; entity stores
// obtained from the *Store run in autocommit mode. SQLite is limited to one
// open connection, so code inside RunInTx must only use the *Tx it is given.
//
// # Identity
//
// Save assigns ID, CreatedAt and UpdatedAt on insert and refreshes only
// UpdatedAt on update. Identity is assigned when the INSERT succeeds, not when
// the enclosing transaction commits: entities saved in a transaction that is
// later rolled back keep an ID that no longer exists and must be discarded.
//
// # Concurrency
//
// Name-based find-or-create is lookup-then-insert and is not atomic against
// concurrent writers. The store assumes a single importer per database.
package store
