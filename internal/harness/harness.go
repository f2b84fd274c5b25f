package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/invoicer/internal/importer"
	"github.com/roach88/invoicer/internal/query"
	"github.com/roach88/invoicer/internal/render"
	"github.com/roach88/invoicer/internal/sheet"
	"github.com/roach88/invoicer/internal/store"
	"github.com/roach88/invoicer/internal/testutil"
)

// clockStart is the first timestamp written by a scenario.
var clockStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness runs the batches of one scenario against a single store.
type Harness struct {
	store   *store.Store
	source  *sheet.MemorySource
	service *importer.Service
	header  []string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. Batches are imported in
// order; a failed batch is rolled back and the next batch still runs.
// An error is returned only when the harness itself cannot run.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:", store.WithClock(testutil.NewStepClock(clockStart, time.Second).Now))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	cols := scenario.columns()
	src := sheet.NewMemorySource()
	processor := importer.New(st, src,
		importer.WithColumns(cols),
		importer.WithDateLayout(scenario.dateLayout()),
		importer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		importer.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(scenario.RunID)),
	)
	h := &Harness{
		store:   st,
		source:  src,
		service: importer.NewService(processor),
		header:  cols.Headers(),
	}

	result := NewResult()
	for i, batch := range scenario.Batches {
		br := h.importBatch(ctx, i, batch)
		result.Batches = append(result.Batches, br)
		for _, msg := range checkBatch(i, batch.Expect, br) {
			result.AddError(msg)
		}
	}

	if result.Counts, err = countTables(ctx, st); err != nil {
		return nil, err
	}

	views, err := query.New(st).AllInvoicesWithDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	result.Document = render.Success(views)

	for _, msg := range EvaluateAssertions(ctx, st, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// importBatch registers the batch as an in-memory sheet and imports it.
func (h *Harness) importBatch(ctx context.Context, index int, batch Batch) BatchResult {
	path := fmt.Sprintf("batch-%d.xlsx", index+1)
	header := batch.Header
	if len(header) == 0 {
		header = h.header
	}
	h.source.Add(path, header, batch.Rows...)

	stats, err := h.service.ImportFile(ctx, path)
	br := BatchResult{Index: index + 1, Stats: stats, err: err}
	if err != nil {
		br.Error = err.Error()
		var ie *importer.Error
		if errors.As(err, &ie) {
			br.ErrorKind = string(ie.Kind)
		}
	}
	return br
}

// checkBatch compares a batch outcome with its expectation.
func checkBatch(index int, expect BatchExpect, br BatchResult) []string {
	var errs []string
	prefix := fmt.Sprintf("batch %d", index+1)

	if expect.Error == "" {
		if br.Failed() {
			return append(errs, fmt.Sprintf("%s: expected success, got %s", prefix, br.Error))
		}
		if expect.Invoices != nil && *expect.Invoices != br.Stats.InvoiceCount {
			errs = append(errs, fmt.Sprintf("%s: expected %d invoices, got %d", prefix, *expect.Invoices, br.Stats.InvoiceCount))
		}
		if expect.Items != nil && *expect.Items != br.Stats.ItemCount {
			errs = append(errs, fmt.Sprintf("%s: expected %d items, got %d", prefix, *expect.Items, br.Stats.ItemCount))
		}
		return errs
	}

	if !br.Failed() {
		return append(errs, fmt.Sprintf("%s: expected %s, got success", prefix, expect.Error))
	}
	if br.ErrorKind != expect.Error {
		errs = append(errs, fmt.Sprintf("%s: expected %s, got %s", prefix, expect.Error, br.Error))
	}

	var ie *importer.Error
	if !errors.As(br.err, &ie) {
		return errs
	}
	if expect.Line != 0 && ie.Line != expect.Line {
		errs = append(errs, fmt.Sprintf("%s: expected error on line %d, got line %d", prefix, expect.Line, ie.Line))
	}
	if expect.Column != "" && ie.Column != expect.Column {
		errs = append(errs, fmt.Sprintf("%s: expected error in column %q, got %q", prefix, expect.Column, ie.Column))
	}
	return errs
}

// countTables counts the rows of every table.
func countTables(ctx context.Context, st *store.Store) (TableCounts, error) {
	var c TableCounts
	var err error
	if c.Customers, err = st.Customers().Count(ctx); err != nil {
		return c, fmt.Errorf("failed to count customers: %w", err)
	}
	if c.Products, err = st.Products().Count(ctx); err != nil {
		return c, fmt.Errorf("failed to count products: %w", err)
	}
	if c.Invoices, err = st.Invoices().Count(ctx); err != nil {
		return c, fmt.Errorf("failed to count invoices: %w", err)
	}
	if c.InvoiceItems, err = st.InvoiceItems().Count(ctx); err != nil {
		return c, fmt.Errorf("failed to count invoice items: %w", err)
	}
	return c, nil
}
