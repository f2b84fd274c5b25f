package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/invoicer/internal/importer"
	"github.com/roach88/invoicer/internal/testutil"
)

var workbookHeader = []string{
	"invoice", "Invoice Date", "Customer Name", "Customer Address",
	"Product Name", "Quantity", "Price", "Total", "Grand Total",
}

// validWorkbook holds two invoices with three items in total.
func validWorkbook(t *testing.T) string {
	t.Helper()
	return testutil.WriteWorkbook(t, "invoices.xlsx", workbookHeader,
		[]any{"1", "2023-01-01", "Acme", "1 Main St", "Widget", 2, "5.00", "10.00", "16.00"},
		[]any{"1", "2023-01-01", "Acme", "1 Main St", "Gadget", 1, "6.00", "6.00", "16.00"},
		[]any{"2", "2023-02-01", "Globex", "2 Side St", "Widget", 3, "5.00", "15.00", "15.00"},
	)
}

func TestImport_MissingArgument(t *testing.T) {
	code, stdout, _ := execute(t, "--db", testDB(t), "import")

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "Error: Missing file path argument.\n")
	assert.Contains(t, stdout, "Usage:")
}

func TestImport_FileDoesNotExist(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.xlsx")

	code, stdout, _ := execute(t, "--db", testDB(t), "import", missing)

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, "Error: File does not exist: "+missing+"\n", stdout)
}

func TestImport_TooManyArguments(t *testing.T) {
	code, _, stderr := execute(t, "--db", testDB(t), "import", "a.xlsx", "b.xlsx")

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "accepts at most 1 arg")
}

func TestImport_Success(t *testing.T) {
	db := testDB(t)

	code, stdout, _ := execute(t, "--db", db, "import", validWorkbook(t))

	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "Import completed successfully.\nProcessed 2 invoices with 3 items.\n", stdout)

	code, stdout, _ = execute(t, "--db", db, "invoices")
	require.Equal(t, ExitSuccess, code)
	var env struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.Equal(t, 2, env.Count)
}

func TestImport_JSONFormat(t *testing.T) {
	code, stdout, _ := execute(t, "--db", testDB(t), "--format", "json", "import", validWorkbook(t))
	require.Equal(t, ExitSuccess, code)

	var resp struct {
		Status string         `json:"status"`
		Data   importer.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.InvoiceCount)
	assert.Equal(t, 3, resp.Data.ItemCount)
	assert.NotEmpty(t, resp.Data.RunID)
}

func TestImport_ValidationFailureLeavesDatabaseEmpty(t *testing.T) {
	db := testDB(t)
	path := testutil.WriteWorkbook(t, "bad.xlsx", workbookHeader,
		[]any{"1", "2023-01-01", "Acme", "1 Main St", "Widget", 2, "5.00", "10.00", "10.00"},
		[]any{"2", "2023-01-02", "Acme", "1 Main St", "Widget", "lots", "5.00", "10.00", "10.00"},
	)

	code, stdout, _ := execute(t, "--db", db, "import", path)

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "Error: VALIDATION_FAILURE")
	assert.Contains(t, stdout, `column "Quantity"`)
	assert.Contains(t, stdout, "line 3")

	code, stdout, _ = execute(t, "--db", db, "invoices")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, `"count": 0`)
}

func TestImport_ErrorCodeIsImportKind(t *testing.T) {
	// A directory exists but is not a workbook.
	code, stdout, _ := execute(t, "--db", testDB(t), "--format", "json", "import", t.TempDir())

	assert.Equal(t, ExitFailure, code)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(importer.KindSourceUnavailable), resp.Error.Code)
}

func TestImport_UsesConfiguredColumns(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "invoicer.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("date_layout: \"02/01/2006\"\ncolumns:\n  quantity: Qty\n"), 0o644))

	header := append([]string(nil), workbookHeader...)
	header[5] = "Qty"
	path := testutil.WriteWorkbook(t, "custom.xlsx", header,
		[]any{"7", "15/01/2024", "Acme", "1 Main St", "Widget", 4, "2.50", "10.00", "10.00"},
	)

	code, stdout, _ := execute(t, "--config", cfgPath, "--db", filepath.Join(dir, "x.db"), "import", path)

	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "Processed 1 invoices with 1 items.")
}

func TestImportResult_GroupsLargeCounts(t *testing.T) {
	r := ImportResult{Stats: importer.Stats{InvoiceCount: 1234, ItemCount: 56789}}

	assert.Equal(t, "Import completed successfully.\nProcessed 1,234 invoices with 56,789 items.", r.String())
}

func TestImport_TraceWritesSpans(t *testing.T) {
	code, _, stderr := execute(t, "--db", testDB(t), "--trace", "import", validWorkbook(t))

	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stderr, `"importer.ProcessFile"`)
	assert.Contains(t, stderr, `"import.run_id"`)
	assert.Contains(t, stderr, `"import.invoices"`)
}

func TestImport_NoTraceByDefault(t *testing.T) {
	code, _, stderr := execute(t, "--db", testDB(t), "import", validWorkbook(t))

	require.Equal(t, ExitSuccess, code)
	assert.NotContains(t, stderr, "importer.ProcessFile")
}

type pushRequest struct {
	method, path string
	body         []byte
}

// pushgateway records each request and answers with status.
func pushgateway(t *testing.T, status int) (string, <-chan pushRequest) {
	t.Helper()
	reqs := make(chan pushRequest, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqs <- pushRequest{method: r.Method, path: r.URL.Path, body: body}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv.URL, reqs
}

func pushConfig(t *testing.T, url string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoicer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pushgateway_url: \""+url+"\"\n"), 0o644))
	return path
}

func TestImport_PushesRunMetrics(t *testing.T) {
	url, reqs := pushgateway(t, http.StatusOK)

	code, _, _ := execute(t, "--db", testDB(t), "--config", pushConfig(t, url), "import", validWorkbook(t))
	require.Equal(t, ExitSuccess, code)

	require.Len(t, reqs, 1)
	req := <-reqs
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/metrics/job/invoicer_import", req.path)
	assert.Contains(t, string(req.body), "invoicer_import_runs_total")
	assert.Contains(t, string(req.body), "invoicer_invoices_imported_total")
}

func TestImport_PushesFailedRunMetrics(t *testing.T) {
	url, reqs := pushgateway(t, http.StatusOK)
	path := testutil.WriteWorkbook(t, "bad.xlsx", workbookHeader,
		[]any{"1", "2023-01-01", "Acme", "1 Main St", "Widget", "lots", "5.00", "10.00", "10.00"},
	)

	code, _, _ := execute(t, "--db", testDB(t), "--config", pushConfig(t, url), "import", path)
	require.Equal(t, ExitFailure, code)

	require.Len(t, reqs, 1)
	req := <-reqs
	assert.Contains(t, string(req.body), "invoicer_import_runs_total")
}

func TestImport_PushFailureDoesNotFailImport(t *testing.T) {
	url, reqs := pushgateway(t, http.StatusInternalServerError)

	code, stdout, stderr := execute(t, "--db", testDB(t), "--config", pushConfig(t, url), "import", validWorkbook(t))

	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Processed 2 invoices with 3 items.")
	assert.Contains(t, stderr, "failed to push import metrics")
	assert.Len(t, reqs, 1)
}

func TestImport_NoPushWithoutGateway(t *testing.T) {
	_, reqs := pushgateway(t, http.StatusOK)

	code, _, _ := execute(t, "--db", testDB(t), "import", validWorkbook(t))

	require.Equal(t, ExitSuccess, code)
	assert.Empty(t, reqs)
}
