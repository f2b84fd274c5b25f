package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Tx is one database transaction. Entity stores obtained from a Tx read and
// write inside it.
type Tx struct {
	tx    *sql.Tx
	store *Store
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, store: s}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Rolling back a finished transaction
// returns sql.ErrTxDone.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// Customers returns the customer store bound to this transaction.
func (t *Tx) Customers() *CustomerStore { return &CustomerStore{t.store.conn(t.tx)} }

// Products returns the product store bound to this transaction.
func (t *Tx) Products() *ProductStore { return &ProductStore{t.store.conn(t.tx)} }

// Invoices returns the invoice store bound to this transaction.
func (t *Tx) Invoices() *InvoiceStore { return &InvoiceStore{t.store.conn(t.tx)} }

// InvoiceItems returns the invoice item store bound to this transaction.
func (t *Tx) InvoiceItems() *InvoiceItemStore { return &InvoiceItemStore{t.store.conn(t.tx)} }

// RunInTx runs fn inside one transaction. The transaction commits if fn
// returns nil and rolls back otherwise; fn's error is returned unchanged.
// A panic in fn rolls back and re-panics.
//
// If the rollback itself fails, the rollback error is joined onto fn's error
// so errors.Is/As still match the original cause.
func (s *Store) RunInTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
		}
		return err
	}

	return tx.Commit()
}
