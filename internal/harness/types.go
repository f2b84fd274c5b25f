package harness

import (
	"github.com/roach88/invoicer/internal/importer"
	"github.com/roach88/invoicer/internal/render"
)

// BatchResult is the outcome of one import batch.
type BatchResult struct {
	Index int            `json:"index"`
	Stats importer.Stats `json:"stats"`

	// ErrorKind and Error are set when the batch failed.
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`

	err error
}

// Failed reports whether the batch returned an error.
func (b BatchResult) Failed() bool { return b.err != nil }

// TableCounts holds the row count of every table after the last batch.
type TableCounts struct {
	Customers    int64 `json:"customers"`
	Products     int64 `json:"products"`
	Invoices     int64 `json:"invoices"`
	InvoiceItems int64 `json:"invoice_items"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every batch expectation and assertion held.
	Pass bool `json:"pass"`

	Batches []BatchResult `json:"batches"`
	Counts  TableCounts   `json:"counts"`

	// Document is the rendered invoice list after the last batch.
	Document render.Envelope `json:"document"`

	// Errors lists every failed expectation. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Batches: []BatchResult{},
		Errors:  []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
