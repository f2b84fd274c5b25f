// Package harness runs end-to-end import scenarios.
//
// A scenario is a YAML file describing one or more import batches, the
// outcome expected from each batch, and assertions on the final database.
// Every scenario runs against a fresh in-memory SQLite store with a stepping
// clock and a fixed run ID, so the rendered invoice document is identical
// across runs and can be compared against a golden file.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	date_layout: "2006-01-02"        # optional
//	columns:                         # optional, overrides default headers
//	  quantity: Qty
//	batches:
//	  - header: [...]                # optional, defaults to the column headers
//	    rows:
//	      - ["1", "2023-01-01", "Acme", "1 Main St", "Widget", "2", "5", "10", "10"]
//	    expect:
//	      invoices: 1
//	      items: 1
//	  - rows: [...]
//	    expect:
//	      error: VALIDATION_FAILURE
//	      line: 3
//	      column: Quantity
//	assertions:
//	  - type: row_count
//	    table: customers
//	    count: 1
//	  - type: final_state
//	    table: products
//	    where: { name: Widget }
//	    expect: { price: 5 }
//
// Rows list cell values in header order. Batch line numbers start at 2,
// the first row after the header.
//
// # Assertion Types
//
//   - row_count: the table holds exactly count rows
//   - final_state: exactly one row matches where, and its columns match expect
//
// # Golden Files
//
// RunWithGolden snapshots the rendered GET /invoices document under
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
