package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Dialect() != "sqlite" {
		t.Errorf("Dialect() = %q, want sqlite", s.Dialect())
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"busy_timeout", "5000"},
		{"synchronous", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(tt.name, tt.expected); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.InitSchema(ctx); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
	n, err := s.Customers().Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.InitSchema(ctx); err != nil {
			t.Fatalf("InitSchema() iteration %d failed: %v", i, err)
		}
	}

	tables := []string{"customers", "products", "invoices", "invoice_items"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after repeated InitSchema: %v", table, err)
		}
	}

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("SchemaVersion() = %d, want %d", version, currentSchemaVersion)
	}
}

func TestInitSchema_PreservesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if err := s1.InitSchema(ctx); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	mustSaveCustomer(t, s1, "Acme", "1 Road")
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()
	if err := s2.InitSchema(ctx); err != nil {
		t.Fatalf("second InitSchema() failed: %v", err)
	}

	n, err := s2.Customers().Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d after reopen, want 1", n)
	}
}

func TestPing(t *testing.T) {
	s := createTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}

func TestClose_Nil(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on empty store = %v, want nil", err)
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dsn    string
		name   string
		driver string
	}{
		{"invoicer.db", "sqlite", "sqlite3"},
		{":memory:", "sqlite", "sqlite3"},
		{"file:test.db?mode=memory", "sqlite", "sqlite3"},
		{"postgres://u:p@localhost:5432/db", "postgres", "pgx"},
		{"postgresql://localhost/db", "postgres", "pgx"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			d := dialectFor(tt.dsn)
			if d.name != tt.name || d.driver != tt.driver {
				t.Errorf("dialectFor(%q) = %+v, want {%s %s}", tt.dsn, d, tt.name, tt.driver)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	pg := dialect{name: dialectPostgres}
	lite := dialect{name: dialectSQLite}

	query := "SELECT id FROM t WHERE a = ? AND b = ?"
	if got := pg.rebind(query); got != "SELECT id FROM t WHERE a = $1 AND b = $2" {
		t.Errorf("postgres rebind = %q", got)
	}
	if got := lite.rebind(query); got != query {
		t.Errorf("sqlite rebind = %q, want unchanged", got)
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (x INT);\n\nCREATE INDEX i ON a(x);\n")
	if len(stmts) != 2 {
		t.Fatalf("len = %d, want 2: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (x INT)" {
		t.Errorf("stmts[0] = %q", stmts[0])
	}
}

func TestAmountsStoredVerbatim(t *testing.T) {
	checkAmountsVerbatim(t, createTestStore(t))
}

func TestSchema_MoneyColumnsUnscaled(t *testing.T) {
	for _, name := range []string{"schema/sqlite.sql", "schema/postgres.sql"} {
		ddl, err := schemaFS.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if strings.Contains(strings.ToUpper(string(ddl)), "NUMERIC(") {
			t.Errorf("%s declares a scaled NUMERIC column; amounts must be stored as given", name)
		}
	}
}
