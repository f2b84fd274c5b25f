package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for import runs.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entity labels for find-or-create resolution.
const (
	EntityCustomer = "customer"
	EntityProduct  = "product"
)

// Resolution labels for find-or-create resolution.
const (
	ResolutionCreated = "created"
	ResolutionReused  = "reused"
)

// Metrics provides observability for imports and invoice queries.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Import runs by outcome
	ImportRuns *prometheus.CounterVec

	// Rows written by successful runs
	InvoicesImported prometheus.Counter
	ItemsImported    prometheus.Counter

	// Find-or-create results by entity and resolution
	EntityResolutions *prometheus.CounterVec

	// Full run duration, commit or rollback included
	ImportDuration prometheus.Histogram

	// Query assembly duration
	QueryDuration prometheus.Histogram
}

// New creates a Metrics instance with every collector registered on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
//
// The import collectors are fed by import runs, which the CLI pushes to a
// Pushgateway. A serve process never imports, so on its /metrics they stay
// at zero and only the query histogram moves.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ImportRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "invoicer_import_runs_total",
			Help: "Total import runs by outcome",
		}, []string{"outcome"}), // outcome: "success", "failure"

		InvoicesImported: factory.NewCounter(prometheus.CounterOpts{
			Name: "invoicer_invoices_imported_total",
			Help: "Total invoices committed by import runs",
		}),

		ItemsImported: factory.NewCounter(prometheus.CounterOpts{
			Name: "invoicer_invoice_items_imported_total",
			Help: "Total invoice items committed by import runs",
		}),

		EntityResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "invoicer_entity_resolutions_total",
			Help: "Customer and product lookups by whether the entity was created or reused",
		}, []string{"entity", "resolution"}),

		ImportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoicer_import_duration_seconds",
			Help:    "Duration of import runs including commit or rollback",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoicer_query_duration_seconds",
			Help:    "Duration of invoice detail assembly",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveImport records one finished import run. Invoice and item counts are
// only added for successful runs since a failed run commits nothing.
func (m *Metrics) ObserveImport(outcome string, invoices, items int, d time.Duration) {
	if m == nil {
		return
	}
	m.ImportRuns.WithLabelValues(outcome).Inc()
	m.ImportDuration.Observe(d.Seconds())
	if outcome == OutcomeSuccess {
		m.InvoicesImported.Add(float64(invoices))
		m.ItemsImported.Add(float64(items))
	}
}

// IncrementResolution records a find-or-create result.
func (m *Metrics) IncrementResolution(entity, resolution string) {
	if m != nil {
		m.EntityResolutions.WithLabelValues(entity, resolution).Inc()
	}
}

// ObserveQuery records the duration of one query assembly.
func (m *Metrics) ObserveQuery(d time.Duration) {
	if m != nil {
		m.QueryDuration.Observe(d.Seconds())
	}
}
