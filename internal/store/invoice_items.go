package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/invoicer/internal/model"
)

const invoiceItemColumns = "id, invoice_id, product_id, quantity, price, total, created_at, updated_at"

// InvoiceItemStore persists invoice line items.
type InvoiceItemStore struct {
	conn
}

// Find retrieves an item by ID.
// Returns ErrNotFound if no item has that ID.
func (s *InvoiceItemStore) Find(ctx context.Context, id int64) (*model.InvoiceItem, error) {
	row := s.queryRow(ctx, `SELECT `+invoiceItemColumns+` FROM invoice_items WHERE id = ?`, id)
	it, err := scanInvoiceItem(row)
	if err != nil {
		return nil, fmt.Errorf("find invoice item %d: %w", id, err)
	}
	return it, nil
}

// FindAll returns every item ordered by ID.
func (s *InvoiceItemStore) FindAll(ctx context.Context) ([]*model.InvoiceItem, error) {
	return s.list(ctx, `SELECT `+invoiceItemColumns+` FROM invoice_items ORDER BY id ASC`)
}

// FindByInvoiceID returns the invoice's items in insertion order.
func (s *InvoiceItemStore) FindByInvoiceID(ctx context.Context, invoiceID int64) ([]*model.InvoiceItem, error) {
	return s.list(ctx, `
		SELECT `+invoiceItemColumns+`
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY id ASC
	`, invoiceID)
}

func (s *InvoiceItemStore) list(ctx context.Context, query string, args ...any) ([]*model.InvoiceItem, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoice items: %w", err)
	}
	defer rows.Close()

	items := []*model.InvoiceItem{}
	for rows.Next() {
		it, err := scanInvoiceItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice items: %w", err)
	}
	return items, nil
}

// Save inserts the item if it has no ID, otherwise updates it.
//
// Note: Both InvoiceID and ProductID must exist (foreign key constraints).
func (s *InvoiceItemStore) Save(ctx context.Context, it *model.InvoiceItem) error {
	now := s.timestamp()

	if !it.Persisted() {
		var id int64
		err := s.queryRow(ctx, `
			INSERT INTO invoice_items (invoice_id, product_id, quantity, price, total, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`, it.InvoiceID, it.ProductID, it.Quantity, it.Price, it.Total, now, now).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
		it.ID = id
		it.CreatedAt = now
		it.UpdatedAt = now
		return nil
	}

	res, err := s.exec(ctx, `
		UPDATE invoice_items
		SET invoice_id = ?, product_id = ?, quantity = ?, price = ?, total = ?, updated_at = ?
		WHERE id = ?
	`, it.InvoiceID, it.ProductID, it.Quantity, it.Price, it.Total, now, it.ID)
	if err := checkUpdated(res, err); err != nil {
		return fmt.Errorf("update invoice item %d: %w", it.ID, err)
	}
	it.UpdatedAt = now
	return nil
}

// Delete removes the item. Returns false if the item has no ID or no row was deleted.
func (s *InvoiceItemStore) Delete(ctx context.Context, it *model.InvoiceItem) (bool, error) {
	if !it.Persisted() {
		return false, nil
	}
	res, err := s.exec(ctx, `DELETE FROM invoice_items WHERE id = ?`, it.ID)
	return deleted(res, err, "invoice item")
}

// DeleteByInvoiceID removes every item of one invoice and returns how many
// rows were deleted.
func (s *InvoiceItemStore) DeleteByInvoiceID(ctx context.Context, invoiceID int64) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = ?`, invoiceID)
	if err != nil {
		return 0, fmt.Errorf("delete invoice items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete invoice items: rows affected: %w", err)
	}
	return n, nil
}

// Count returns the number of invoice items.
func (s *InvoiceItemStore) Count(ctx context.Context) (int64, error) {
	n, err := s.count(ctx, "invoice_items")
	if err != nil {
		return 0, fmt.Errorf("count invoice items: %w", err)
	}
	return n, nil
}

func scanInvoiceItem(row scanner) (*model.InvoiceItem, error) {
	var it model.InvoiceItem
	if err := row.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.Quantity, &it.Price, &it.Total, &it.CreatedAt, &it.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan invoice item: %w", err)
	}
	return &it, nil
}
