package importer

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/invoicer/internal/sheet"
	"github.com/roach88/invoicer/internal/store"
	"github.com/roach88/invoicer/internal/testutil"
)

var testHeader = []string{
	"invoice", "Invoice Date", "Customer Name", "Customer Address",
	"Product Name", "Quantity", "Price", "Total", "Grand Total",
}

// line builds one record in testHeader order.
func line(invoice, date, customer, address, product, qty, price, total, grand string) []string {
	return []string{invoice, date, customer, address, product, qty, price, total, grand}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.InitSchema(context.Background()))
	return st
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestProcessor returns a processor over a fresh store and memory source.
func newTestProcessor(t *testing.T, opts ...Option) (*Processor, *store.Store, *sheet.MemorySource) {
	t.Helper()
	st := newTestStore(t)
	src := sheet.NewMemorySource()
	base := []Option{
		WithLogger(quietLogger()),
		WithRunIDGenerator(testutil.NewFixedRunIDGenerator("run-1")),
	}
	return New(st, src, append(base, opts...)...), st, src
}

type counts struct {
	customers, products, invoices, items int64
}

func countRows(t *testing.T, st *store.Store) counts {
	t.Helper()
	ctx := context.Background()
	var c counts
	var err error
	c.customers, err = st.Customers().Count(ctx)
	require.NoError(t, err)
	c.products, err = st.Products().Count(ctx)
	require.NoError(t, err)
	c.invoices, err = st.Invoices().Count(ctx)
	require.NoError(t, err)
	c.items, err = st.InvoiceItems().Count(ctx)
	require.NoError(t, err)
	return c
}
