package store

import (
	"context"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Schema version tracking:
// 1 - customers, products, invoices, invoice_items
const currentSchemaVersion = 1

// InitSchema creates the four tables and their indexes if they don't exist
// and records the schema version. This function is idempotent.
func (s *Store) InitSchema(ctx context.Context) error {
	ddl, err := schemaFS.ReadFile("schema/" + s.dialect.name + ".sql")
	if err != nil {
		return fmt.Errorf("init schema: read ddl: %w", err)
	}

	for _, stmt := range splitStatements(string(ddl)) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	if err := s.recordVersion(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SchemaVersion returns the recorded schema version, 0 if none.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if s.dialect.name == dialectSQLite {
		if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
			return 0, fmt.Errorf("get user_version: %w", err)
		}
		return version, nil
	}

	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("get schema_version: %w", err)
	}
	return version, nil
}

func (s *Store) recordVersion(ctx context.Context) error {
	if s.dialect.name == dialectSQLite {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schema_version (version)
		SELECT $1::integer WHERE NOT EXISTS (SELECT 1 FROM schema_version WHERE version = $1::integer)
	`, currentSchemaVersion)
	if err != nil {
		return fmt.Errorf("set schema_version: %w", err)
	}
	return nil
}

// splitStatements splits a DDL file on ";" line endings.
func splitStatements(ddl string) []string {
	var stmts []string
	for _, part := range strings.Split(ddl, ";\n") {
		if stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ";")); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
