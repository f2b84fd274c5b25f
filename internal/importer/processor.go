package importer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/invoicer/internal/metrics"
	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/sheet"
	"github.com/roach88/invoicer/internal/store"
)

// DefaultDateLayout is the accepted invoice date format.
const DefaultDateLayout = "2006-01-02"

const tracerName = "github.com/roach88/invoicer/internal/importer"

// RunIDGenerator generates an identifier for each import run.
// Implemented by UUIDv7Generator (production) and testutil.FixedRunIDGenerator (tests).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Processor imports spreadsheets into the store.
//
// One ProcessFile call is one run: every row is read first, grouped by the
// invoice column, and then written inside a single transaction. The run
// commits as a whole or not at all.
//
// Single-writer: customer and product deduplication is a lookup followed by
// an insert. Two processors importing into the same database at once can
// create duplicate customers or products.
type Processor struct {
	store      *store.Store
	source     sheet.Reader
	columns    Columns
	dateLayout string
	logger     *slog.Logger
	metrics    *metrics.Metrics
	runIDs     RunIDGenerator
	tracer     trace.Tracer
}

// Option configures a Processor.
type Option func(*Processor)

// WithColumns overrides the spreadsheet headers.
func WithColumns(c Columns) Option {
	return func(p *Processor) {
		p.columns = c
	}
}

// WithDateLayout overrides the invoice date layout (a Go time layout).
// Values that do not match the layout are still accepted when they are
// positive numbers, which are read as Excel serial dates (1900 epoch).
func WithDateLayout(layout string) Option {
	return func(p *Processor) {
		if layout != "" {
			p.dateLayout = layout
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the metrics sink. Default: none.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithTracerProvider sets where run spans go. Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Processor) {
		if tp != nil {
			p.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithRunIDGenerator overrides run ID generation.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(p *Processor) {
		if g != nil {
			p.runIDs = g
		}
	}
}

// New creates a Processor writing to st and reading rows from src.
// The caller owns st; the schema must already exist (store.InitSchema).
func New(st *store.Store, src sheet.Reader, opts ...Option) *Processor {
	p := &Processor{
		store:      st,
		source:     src,
		columns:    DefaultColumns(),
		dateLayout: DefaultDateLayout,
		logger:     slog.Default(),
		runIDs:     UUIDv7Generator{},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFile imports the spreadsheet at path and returns the persisted
// invoices in the order their invoice keys first appear, each with its items.
//
// On any error the transaction is rolled back and ProcessFile returns nil
// invoices with an *Error. Entities built during a failed run may already
// carry IDs assigned inside the rolled-back transaction; they are never
// handed to the caller.
func (p *Processor) ProcessFile(ctx context.Context, path string) ([]*model.Invoice, error) {
	_, invoices, err := p.process(ctx, path)
	return invoices, err
}

// process runs one import and returns its run ID alongside the result.
func (p *Processor) process(ctx context.Context, path string) (string, []*model.Invoice, error) {
	runID := p.runIDs.Generate()
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "importer.ProcessFile", trace.WithAttributes(
		attribute.String("import.run_id", runID),
		attribute.String("import.path", path),
	))
	defer span.End()

	logger := p.logger.With("run_id", runID)
	logger.InfoContext(ctx, "import started", "path", path)

	invoices, err := p.run(ctx, path, logger)
	elapsed := time.Since(start)
	if err != nil {
		p.metrics.ObserveImport(metrics.OutcomeFailure, 0, 0, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "import rolled back",
			"path", path,
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
		)
		return runID, nil, err
	}

	items := countItems(invoices)
	p.metrics.ObserveImport(metrics.OutcomeSuccess, len(invoices), items, elapsed)
	span.SetAttributes(
		attribute.Int("import.invoices", len(invoices)),
		attribute.Int("import.items", items),
	)
	logger.InfoContext(ctx, "import completed",
		"path", path,
		"invoices", len(invoices),
		"items", items,
		"duration_ms", elapsed.Milliseconds(),
	)
	return runID, invoices, nil
}

func (p *Processor) run(ctx context.Context, path string, logger *slog.Logger) ([]*model.Invoice, error) {
	rows, err := p.source.Read(ctx, path)
	if err != nil {
		return nil, &Error{Kind: KindSourceUnavailable, Message: "cannot read rows from " + path, Err: err}
	}

	groups, err := groupRows(rows, p.columns.Invoice)
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "rows grouped", "rows", len(rows), "invoices", len(groups))

	invoices := make([]*model.Invoice, 0, len(groups))
	err = p.store.RunInTx(ctx, func(tx *store.Tx) error {
		for _, g := range groups {
			inv, err := p.processInvoice(ctx, tx, g, logger)
			if err != nil {
				return err
			}
			invoices = append(invoices, inv)
		}
		return nil
	})
	if err != nil {
		var ie *Error
		if !errors.As(err, &ie) {
			err = persistenceError("commit import", 0, err)
		}
		return nil, err
	}
	return invoices, nil
}

// processInvoice writes one group: its customer (found or created), a new
// invoice from the first row's fields, and one item per row. Customer and
// invoice fields on later rows are ignored.
func (p *Processor) processInvoice(ctx context.Context, tx *store.Tx, g *group, logger *slog.Logger) (*model.Invoice, error) {
	first := rowReader{row: g.rows[0], layout: p.dateLayout}

	customerName, err := first.name(p.columns.CustomerName)
	if err != nil {
		return nil, err
	}
	address, err := first.raw(p.columns.CustomerAddress)
	if err != nil {
		return nil, err
	}
	date, err := first.date(p.columns.InvoiceDate)
	if err != nil {
		return nil, err
	}
	grandTotal, err := first.amount(p.columns.GrandTotal)
	if err != nil {
		return nil, err
	}

	customer, err := p.resolveCustomer(ctx, tx, customerName, address, first.row.Line, logger)
	if err != nil {
		return nil, err
	}

	inv := model.NewInvoice(customer.ID, date, grandTotal)
	if err := tx.Invoices().Save(ctx, inv); err != nil {
		return nil, persistenceError("save invoice "+g.key, first.row.Line, err)
	}

	for _, row := range g.rows {
		item, err := p.processItem(ctx, tx, inv, rowReader{row: row, layout: p.dateLayout}, logger)
		if err != nil {
			return nil, err
		}
		inv.AddItem(item)
	}
	return inv, nil
}

// processItem writes one line item. Quantity, price and total are stored as
// read; total is not checked against quantity times price.
func (p *Processor) processItem(ctx context.Context, tx *store.Tx, inv *model.Invoice, r rowReader, logger *slog.Logger) (*model.InvoiceItem, error) {
	productName, err := r.name(p.columns.ProductName)
	if err != nil {
		return nil, err
	}
	quantity, err := r.quantity(p.columns.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := r.price(p.columns.Price)
	if err != nil {
		return nil, err
	}
	total, err := r.amount(p.columns.Total)
	if err != nil {
		return nil, err
	}

	product, err := p.resolveProduct(ctx, tx, productName, price, r.row.Line, logger)
	if err != nil {
		return nil, err
	}

	item := model.NewInvoiceItem(inv.ID, product.ID, quantity, price, total)
	if err := tx.InvoiceItems().Save(ctx, item); err != nil {
		return nil, persistenceError("save invoice item", r.row.Line, err)
	}
	return item, nil
}

// resolveCustomer finds a customer by exact name or creates one. An existing
// customer's address is left untouched.
func (p *Processor) resolveCustomer(ctx context.Context, tx *store.Tx, name, address string, line int, logger *slog.Logger) (*model.Customer, error) {
	customers := tx.Customers()

	c, err := customers.FindByName(ctx, name)
	if err == nil {
		p.metrics.IncrementResolution(metrics.EntityCustomer, metrics.ResolutionReused)
		logger.DebugContext(ctx, "customer reused", "customer_id", c.ID, "name", name)
		return c, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, persistenceError("find customer", line, err)
	}

	c = model.NewCustomer(name, address)
	if err := customers.Save(ctx, c); err != nil {
		return nil, persistenceError("save customer", line, err)
	}
	p.metrics.IncrementResolution(metrics.EntityCustomer, metrics.ResolutionCreated)
	logger.DebugContext(ctx, "customer created", "customer_id", c.ID, "name", name)
	return c, nil
}

// resolveProduct finds a product by exact name or creates one priced from
// the row. An existing product's price is left untouched.
func (p *Processor) resolveProduct(ctx context.Context, tx *store.Tx, name string, price decimal.Decimal, line int, logger *slog.Logger) (*model.Product, error) {
	products := tx.Products()

	prod, err := products.FindByName(ctx, name)
	if err == nil {
		p.metrics.IncrementResolution(metrics.EntityProduct, metrics.ResolutionReused)
		logger.DebugContext(ctx, "product reused", "product_id", prod.ID, "name", name)
		return prod, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, persistenceError("find product", line, err)
	}

	prod = model.NewProduct(name, price)
	if err := products.Save(ctx, prod); err != nil {
		return nil, persistenceError("save product", line, err)
	}
	p.metrics.IncrementResolution(metrics.EntityProduct, metrics.ResolutionCreated)
	logger.DebugContext(ctx, "product created", "product_id", prod.ID, "name", name)
	return prod, nil
}

func countItems(invoices []*model.Invoice) int {
	n := 0
	for _, inv := range invoices {
		n += len(inv.Items)
	}
	return n
}
