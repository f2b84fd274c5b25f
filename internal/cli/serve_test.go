package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServe runs the serve command on a random port and returns its base URL
// and a stop function that waits for graceful shutdown.
func startServe(t *testing.T, db string) (string, func() error) {
	t.Helper()
	isolateEnv(t)

	ready := make(chan string, 1)
	opts := &ServeOptions{
		RootOptions: &RootOptions{Format: "text", Database: db},
		Addr:        "127.0.0.1:0",
		Ready:       func(addr string) { ready <- addr },
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	done := make(chan error, 1)
	go func() { done <- runServe(opts, cmd) }()

	select {
	case addr := <-ready:
		return "http://" + addr, func() error {
			cancel()
			select {
			case err := <-done:
				return err
			case <-time.After(15 * time.Second):
				t.Fatal("server did not stop")
				return nil
			}
		}
	case err := <-done:
		cancel()
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatal("server did not start")
	}
	return "", nil
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestServe_ServesImportedInvoices(t *testing.T) {
	db := testDB(t)
	code, _, _ := execute(t, "--db", db, "import", validWorkbook(t))
	require.Equal(t, ExitSuccess, code)

	base, stop := startServe(t, db)

	status, body := get(t, base+"/invoices")
	assert.Equal(t, http.StatusOK, status)
	var env struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	assert.True(t, env.Success)
	assert.Equal(t, 2, env.Count)

	status, _ = get(t, base+"/invoices/1")
	assert.Equal(t, http.StatusOK, status)

	status, _ = get(t, base+"/invoices/999")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = get(t, base+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"ok"`)

	status, body = get(t, base+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "invoicer_query_duration_seconds_count")
	assert.Contains(t, string(body), "go_goroutines")

	require.NoError(t, stop())
}

func TestServe_AddressInUse(t *testing.T) {
	base, stop := startServe(t, testDB(t))
	defer func() { require.NoError(t, stop()) }()

	opts := &ServeOptions{
		RootOptions: &RootOptions{Format: "text", Database: testDB(t)},
		Addr:        base[len("http://"):],
	}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	err := runServe(opts, cmd)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), "Error:")
}
