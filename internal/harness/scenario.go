package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/invoicer/internal/importer"
)

// Scenario defines an end-to-end import scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// DateLayout is the Go layout of invoice dates. Defaults to importer.DefaultDateLayout.
	DateLayout string `yaml:"date_layout,omitempty"`

	// Columns overrides individual default headers.
	Columns importer.Columns `yaml:"columns,omitempty"`

	// RunID is the fixed run ID reported by every batch.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Batches are imported in order against the same database.
	Batches []Batch `yaml:"batches"`

	// Assertions validate the final database state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Batch is one spreadsheet imported by the scenario.
type Batch struct {
	// Header is the header row. If empty, the scenario's column headers are used
	// in field order.
	Header []string `yaml:"header,omitempty"`

	// Rows are data rows in header order.
	Rows [][]string `yaml:"rows"`

	// Expect is the outcome the batch must produce.
	Expect BatchExpect `yaml:"expect"`
}

// BatchExpect is either a success with counts or a failure of a given kind.
type BatchExpect struct {
	Invoices *int `yaml:"invoices,omitempty"`
	Items    *int `yaml:"items,omitempty"`

	// Error is the expected importer error kind, e.g. VALIDATION_FAILURE.
	Error string `yaml:"error,omitempty"`

	// Line and Column narrow an expected error to one cell.
	Line   int    `yaml:"line,omitempty"`
	Column string `yaml:"column,omitempty"`
}

// Assertion validates the final database state.
type Assertion struct {
	// Type is "row_count" or "final_state".
	Type string `yaml:"type"`

	// Table is the table to inspect.
	Table string `yaml:"table"`

	// Count is the expected number of rows (used by row_count).
	Count *int64 `yaml:"count,omitempty"`

	// Where specifies query filters (used by final_state).
	// All fields must match exactly.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (used by final_state).
	// Subset match: only specified columns are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertRowCount   = "row_count"
	AssertFinalState = "final_state"
)

var errorKinds = map[string]bool{
	string(importer.KindSourceUnavailable):  true,
	string(importer.KindPersistenceFailure): true,
	string(importer.KindValidationFailure):  true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Unknown fields are rejected so that typos like "assertion:" fail loudly.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// columns returns the default headers overlaid with the scenario's overrides.
func (s *Scenario) columns() importer.Columns {
	cols := importer.DefaultColumns()
	o := s.Columns
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&cols.Invoice, o.Invoice},
		{&cols.InvoiceDate, o.InvoiceDate},
		{&cols.CustomerName, o.CustomerName},
		{&cols.CustomerAddress, o.CustomerAddress},
		{&cols.ProductName, o.ProductName},
		{&cols.Quantity, o.Quantity},
		{&cols.Price, o.Price},
		{&cols.Total, o.Total},
		{&cols.GrandTotal, o.GrandTotal},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	return cols
}

func (s *Scenario) dateLayout() string {
	if s.DateLayout == "" {
		return importer.DefaultDateLayout
	}
	return s.DateLayout
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Batches) == 0 {
		return fmt.Errorf("batches list is required and must be non-empty")
	}

	if err := s.columns().Validate(); err != nil {
		return fmt.Errorf("columns: %w", err)
	}

	for i, b := range s.Batches {
		if err := validateBatch(i, &b); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateBatch validates a single batch and its expectation.
func validateBatch(index int, b *Batch) error {
	e := b.Expect
	hasCounts := e.Invoices != nil || e.Items != nil
	switch {
	case e.Error == "" && !hasCounts:
		return fmt.Errorf("batches[%d].expect: invoices/items or error is required", index)
	case e.Error != "" && hasCounts:
		return fmt.Errorf("batches[%d].expect: error cannot be combined with invoices/items", index)
	case e.Error != "" && !errorKinds[e.Error]:
		return fmt.Errorf("batches[%d].expect: unknown error kind %q", index, e.Error)
	case e.Error == "" && (e.Line != 0 || e.Column != ""):
		return fmt.Errorf("batches[%d].expect: line/column require error", index)
	}

	for r, row := range b.Rows {
		if len(b.Header) > 0 && len(row) > len(b.Header) {
			return fmt.Errorf("batches[%d].rows[%d]: %d cells but header has %d", index, r, len(row), len(b.Header))
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Table == "" {
		return fmt.Errorf("assertions[%d]: table is required", index)
	}

	switch a.Type {
	case AssertRowCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for row_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
