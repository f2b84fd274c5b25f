package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/invoicer/internal/model"
)

// createTestStore opens a file-backed SQLite store with the schema applied.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	return s
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func mustSaveCustomer(t *testing.T, s *Store, name, address string) *model.Customer {
	t.Helper()
	c := model.NewCustomer(name, address)
	if err := s.Customers().Save(context.Background(), c); err != nil {
		t.Fatalf("save customer: %v", err)
	}
	return c
}

func mustSaveProduct(t *testing.T, s *Store, name, price string) *model.Product {
	t.Helper()
	p := model.NewProduct(name, decimal.RequireFromString(price))
	if err := s.Products().Save(context.Background(), p); err != nil {
		t.Fatalf("save product: %v", err)
	}
	return p
}

func mustSaveInvoice(t *testing.T, s *Store, customerID int64, date time.Time, total string) *model.Invoice {
	t.Helper()
	inv := model.NewInvoice(customerID, date, decimal.RequireFromString(total))
	if err := s.Invoices().Save(context.Background(), inv); err != nil {
		t.Fatalf("save invoice: %v", err)
	}
	return inv
}

func mustSaveItem(t *testing.T, s *Store, invoiceID, productID, qty int64, price, total string) *model.InvoiceItem {
	t.Helper()
	it := model.NewInvoiceItem(invoiceID, productID, qty, decimal.RequireFromString(price), decimal.RequireFromString(total))
	if err := s.InvoiceItems().Save(context.Background(), it); err != nil {
		t.Fatalf("save invoice item: %v", err)
	}
	return it
}

// checkAmountsVerbatim stores amounts with more than two decimal places and
// fails unless they read back unchanged.
func checkAmountsVerbatim(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	c := mustSaveCustomer(t, s, "Precise", "")
	p := mustSaveProduct(t, s, "Bolt", "0.125")
	inv := mustSaveInvoice(t, s, c.ID, date, "1234567890123.4567")
	it := mustSaveItem(t, s, inv.ID, p.ID, 3, "0.125", "0.375")

	gotProduct, err := s.Products().Find(ctx, p.ID)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if !gotProduct.Price.Equal(decimal.RequireFromString("0.125")) {
		t.Errorf("product price = %s, want 0.125", gotProduct.Price)
	}

	gotInvoice, err := s.Invoices().Find(ctx, inv.ID)
	if err != nil {
		t.Fatalf("find invoice: %v", err)
	}
	if !gotInvoice.GrandTotal.Equal(decimal.RequireFromString("1234567890123.4567")) {
		t.Errorf("grand total = %s, want 1234567890123.4567", gotInvoice.GrandTotal)
	}

	items, err := s.InvoiceItems().FindByInvoiceID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("find items: %v", err)
	}
	if len(items) != 1 || items[0].ID != it.ID {
		t.Fatalf("items = %+v, want the saved item", items)
	}
	if !items[0].Price.Equal(decimal.RequireFromString("0.125")) || !items[0].Total.Equal(decimal.RequireFromString("0.375")) {
		t.Errorf("item price/total = %s/%s, want 0.125/0.375", items[0].Price, items[0].Total)
	}
}
