package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/invoicer/internal/importer"
)

func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }

func row(invoice, date, customer, product, qty, price, total, grand string) []string {
	return []string{invoice, date, customer, "Somewhere 1", product, qty, price, total, grand}
}

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name should match its file name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario failed:\n%s", strings.Join(result.Errors, "\n"))
		})
	}
}

func TestRun_ReportsBatchResults(t *testing.T) {
	scenario := &Scenario{
		Name:        "batch_results",
		Description: "batch outcomes are recorded",
		RunID:       "run-42",
		Batches: []Batch{
			{
				Rows:   [][]string{row("1", "2023-01-01", "Acme", "Widget", "1", "1", "1", "1")},
				Expect: BatchExpect{Invoices: intPtr(1), Items: intPtr(1)},
			},
			{
				Rows:   [][]string{row("2", "not a date", "Acme", "Widget", "1", "1", "1", "1")},
				Expect: BatchExpect{Error: string(importer.KindValidationFailure), Line: 2, Column: "Invoice Date"},
			},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)

	require.Len(t, result.Batches, 2)
	assert.Equal(t, importer.Stats{RunID: "run-42", InvoiceCount: 1, ItemCount: 1}, result.Batches[0].Stats)
	assert.False(t, result.Batches[0].Failed())
	assert.True(t, result.Batches[1].Failed())
	assert.Equal(t, string(importer.KindValidationFailure), result.Batches[1].ErrorKind)
	assert.Equal(t, TableCounts{Customers: 1, Products: 1, Invoices: 1, InvoiceItems: 1}, result.Counts)
	assert.Equal(t, 1, result.Document.Count)
}

func TestRun_UnmetExpectationsFail(t *testing.T) {
	scenario := &Scenario{
		Name:        "unmet",
		Description: "every mismatch is reported",
		Batches: []Batch{
			{
				Rows:   [][]string{row("1", "2023-01-01", "Acme", "Widget", "1", "1", "1", "1")},
				Expect: BatchExpect{Invoices: intPtr(2), Items: intPtr(5)},
			},
			{
				Rows:   [][]string{row("2", "2023-01-01", "Acme", "Widget", "1", "1", "1", "1")},
				Expect: BatchExpect{Error: string(importer.KindValidationFailure)},
			},
			{
				Rows:   [][]string{row("3", "2023-01-01", "", "Widget", "1", "1", "1", "1")},
				Expect: BatchExpect{Invoices: intPtr(1)},
			},
		},
		Assertions: []Assertion{
			{Type: AssertRowCount, Table: "customers", Count: int64Ptr(7)},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "batch 1: expected 2 invoices, got 1")
	assert.Contains(t, result.Errors[1], "batch 1: expected 5 items, got 1")
	assert.Contains(t, result.Errors[2], "batch 2: expected VALIDATION_FAILURE, got success")
	assert.Contains(t, result.Errors[3], "batch 3: expected success, got VALIDATION_FAILURE")
	assert.Contains(t, result.Errors[4], "7 rows in customers")
}

func TestRun_WrongErrorLocation(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_location",
		Description: "line and column are checked",
		Batches: []Batch{
			{
				Rows:   [][]string{row("1", "2023-01-01", "Acme", "Widget", "x", "1", "1", "1")},
				Expect: BatchExpect{Error: string(importer.KindValidationFailure), Line: 9, Column: "Price"},
			},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"batch 1: expected error on line 9, got line 2",
		`batch 1: expected error in column "Price", got "Quantity"`,
	}, result.Errors)
}

func TestRun_IsolatedDatabases(t *testing.T) {
	scenario := &Scenario{
		Name:        "isolated",
		Description: "each run starts empty",
		Batches: []Batch{
			{
				Rows:   [][]string{row("1", "2023-01-01", "Acme", "Widget", "1", "1", "1", "1")},
				Expect: BatchExpect{Invoices: intPtr(1)},
			},
		},
	}

	for range 2 {
		result, err := Run(context.Background(), scenario)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Counts.Invoices)
	}
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
