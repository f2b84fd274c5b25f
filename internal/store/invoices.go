package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/invoicer/internal/model"
)

const invoiceColumns = "id, customer_id, invoice_date, grand_total, created_at, updated_at"

// InvoiceStore persists invoices. It never reads or writes line items;
// Invoice.Items is left empty on every returned invoice.
type InvoiceStore struct {
	conn
}

// Find retrieves an invoice by ID.
// Returns ErrNotFound if no invoice has that ID.
func (s *InvoiceStore) Find(ctx context.Context, id int64) (*model.Invoice, error) {
	row := s.queryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("find invoice %d: %w", id, err)
	}
	return inv, nil
}

// FindAll returns every invoice ordered by ID.
func (s *InvoiceStore) FindAll(ctx context.Context) ([]*model.Invoice, error) {
	return s.list(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY id ASC`)
}

// FindByCustomerID returns the customer's invoices ordered by ID.
func (s *InvoiceStore) FindByCustomerID(ctx context.Context, customerID int64) ([]*model.Invoice, error) {
	return s.list(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE customer_id = ?
		ORDER BY id ASC
	`, customerID)
}

func (s *InvoiceStore) list(ctx context.Context, query string, args ...any) ([]*model.Invoice, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*model.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return invoices, nil
}

// Save inserts the invoice if it has no ID, otherwise updates it.
//
// Note: The customer referenced by CustomerID must exist (foreign key constraint).
func (s *InvoiceStore) Save(ctx context.Context, inv *model.Invoice) error {
	now := s.timestamp()

	if !inv.Persisted() {
		var id int64
		err := s.queryRow(ctx, `
			INSERT INTO invoices (customer_id, invoice_date, grand_total, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`, inv.CustomerID, inv.InvoiceDate, inv.GrandTotal, now, now).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		inv.ID = id
		inv.CreatedAt = now
		inv.UpdatedAt = now
		return nil
	}

	res, err := s.exec(ctx, `
		UPDATE invoices
		SET customer_id = ?, invoice_date = ?, grand_total = ?, updated_at = ?
		WHERE id = ?
	`, inv.CustomerID, inv.InvoiceDate, inv.GrandTotal, now, inv.ID)
	if err := checkUpdated(res, err); err != nil {
		return fmt.Errorf("update invoice %d: %w", inv.ID, err)
	}
	inv.UpdatedAt = now
	return nil
}

// Delete removes the invoice. Its line items are removed by ON DELETE CASCADE.
func (s *InvoiceStore) Delete(ctx context.Context, inv *model.Invoice) (bool, error) {
	if !inv.Persisted() {
		return false, nil
	}
	res, err := s.exec(ctx, `DELETE FROM invoices WHERE id = ?`, inv.ID)
	return deleted(res, err, "invoice")
}

// Count returns the number of invoices.
func (s *InvoiceStore) Count(ctx context.Context) (int64, error) {
	n, err := s.count(ctx, "invoices")
	if err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

func scanInvoice(row scanner) (*model.Invoice, error) {
	inv := model.Invoice{Items: []*model.InvoiceItem{}}
	if err := row.Scan(&inv.ID, &inv.CustomerID, &inv.InvoiceDate, &inv.GrandTotal, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	return &inv, nil
}
