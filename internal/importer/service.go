package importer

import (
	"context"
)

// Stats summarizes one successful import run.
type Stats struct {
	RunID        string `json:"run_id"`
	InvoiceCount int    `json:"invoice_count"`
	ItemCount    int    `json:"item_count"`
}

// Service is the entry point used by the CLI: import a file, report counts.
type Service struct {
	processor *Processor
}

// NewService wraps a Processor.
func NewService(p *Processor) *Service {
	return &Service{processor: p}
}

// ImportFile imports path and returns how many invoices and items it wrote.
// Errors are the Processor's *Error, unchanged.
func (s *Service) ImportFile(ctx context.Context, path string) (Stats, error) {
	runID, invoices, err := s.processor.process(ctx, path)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		RunID:        runID,
		InvoiceCount: len(invoices),
		ItemCount:    countItems(invoices),
	}, nil
}
