package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/invoicer/internal/metrics"
	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/store"
)

const tracerName = "github.com/roach88/invoicer/internal/query"

// ErrInvoiceNotFound is returned by InvoiceWithDetails for an unknown ID.
var ErrInvoiceNotFound = errors.New("invoice not found")

// Assembler builds denormalized invoice views. It only reads, outside any
// transaction, and never fails because a customer or product is missing.
type Assembler struct {
	store   *store.Store
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithMetrics sets the metrics sink. Default: none.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Assembler) {
		a.metrics = m
	}
}

// WithTracerProvider sets where query spans go. Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Assembler) {
		if tp != nil {
			a.tracer = tp.Tracer(tracerName)
		}
	}
}

// New creates an Assembler reading from st.
func New(st *store.Store, opts ...Option) *Assembler {
	a := &Assembler{
		store:  st,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AllInvoicesWithDetails returns every invoice in ID order with its customer,
// items and products resolved.
func (a *Assembler) AllInvoicesWithDetails(ctx context.Context) ([]InvoiceView, error) {
	ctx, span := a.tracer.Start(ctx, "query.AllInvoicesWithDetails")
	defer span.End()
	defer a.observe(time.Now())

	invoices, err := a.store.Invoices().FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("load invoices: %w", err)
	}

	r := a.newResolver()
	views := make([]InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		v, err := r.view(ctx, inv)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		views = append(views, v)
	}
	span.SetAttributes(attribute.Int("query.invoices", len(views)))
	return views, nil
}

// InvoiceWithDetails returns one invoice. An unknown ID yields ErrInvoiceNotFound.
func (a *Assembler) InvoiceWithDetails(ctx context.Context, id int64) (InvoiceView, error) {
	ctx, span := a.tracer.Start(ctx, "query.InvoiceWithDetails", trace.WithAttributes(
		attribute.Int64("query.invoice_id", id),
	))
	defer span.End()
	defer a.observe(time.Now())

	inv, err := a.store.Invoices().Find(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return InvoiceView{}, fmt.Errorf("%w: %d", ErrInvoiceNotFound, id)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return InvoiceView{}, fmt.Errorf("load invoice: %w", err)
	}
	return a.newResolver().view(ctx, inv)
}

func (a *Assembler) observe(start time.Time) {
	a.metrics.ObserveQuery(time.Since(start))
}

// resolver caches customer and product lookups for one query.
type resolver struct {
	store     *store.Store
	customers map[int64]Ref[model.Customer]
	products  map[int64]Ref[model.Product]
}

func (a *Assembler) newResolver() *resolver {
	return &resolver{
		store:     a.store,
		customers: make(map[int64]Ref[model.Customer]),
		products:  make(map[int64]Ref[model.Product]),
	}
}

func (r *resolver) view(ctx context.Context, inv *model.Invoice) (InvoiceView, error) {
	customer, err := r.customer(ctx, inv.CustomerID)
	if err != nil {
		return InvoiceView{}, err
	}

	items, err := r.store.InvoiceItems().FindByInvoiceID(ctx, inv.ID)
	if err != nil {
		return InvoiceView{}, fmt.Errorf("load items of invoice %d: %w", inv.ID, err)
	}
	inv.Items = items

	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		product, err := r.product(ctx, it.ProductID)
		if err != nil {
			return InvoiceView{}, err
		}
		views = append(views, ItemView{Item: it, Product: product})
	}

	return InvoiceView{Invoice: inv, Customer: customer, Items: views}, nil
}

func (r *resolver) customer(ctx context.Context, id int64) (Ref[model.Customer], error) {
	if ref, ok := r.customers[id]; ok {
		return ref, nil
	}
	ref := Ref[model.Customer]{ID: id}
	c, err := r.store.Customers().Find(ctx, id)
	switch {
	case err == nil:
		ref.Value = c
	case !errors.Is(err, store.ErrNotFound):
		return ref, fmt.Errorf("load customer: %w", err)
	}
	r.customers[id] = ref
	return ref, nil
}

func (r *resolver) product(ctx context.Context, id int64) (Ref[model.Product], error) {
	if ref, ok := r.products[id]; ok {
		return ref, nil
	}
	ref := Ref[model.Product]{ID: id}
	p, err := r.store.Products().Find(ctx, id)
	switch {
	case err == nil:
		ref.Value = p
	case !errors.Is(err, store.ErrNotFound):
		return ref, fmt.Errorf("load product: %w", err)
	}
	r.products[id] = ref
	return ref, nil
}
