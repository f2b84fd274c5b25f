package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitDBResult is the summary printed by init-db.
type InitDBResult struct {
	Database      string `json:"database"`
	Dialect       string `json:"dialect"`
	SchemaVersion int    `json:"schema_version"`
}

func (r InitDBResult) String() string {
	return fmt.Sprintf("Schema ready (%s, version %d): %s", r.Dialect, r.SchemaVersion, r.Database)
}

// NewInitDBCommand creates the init-db command.
func NewInitDBCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the database schema",
		Long: `Create the customers, products, invoices and invoice_items tables if
they do not exist. Safe to run more than once.

Example:
  invoicer --db ./invoicer.db init-db
  invoicer --db postgres://localhost/invoicer init-db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitDB(rootOpts, cmd)
		},
	}

	return cmd
}

func runInitDB(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, err.Error(), err)
	}
	logger := opts.setupLogger(cmd.ErrOrStderr(), cfg)

	ctx := cmd.Context()
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return formatter.Fail(ErrCodeDatabase, err.Error(), err)
	}
	defer closeStore(st, logger)

	version, err := st.SchemaVersion(ctx)
	if err != nil {
		return formatter.Fail(ErrCodeDatabase, err.Error(), err)
	}
	logger.Info("schema initialized", "database", cfg.Database, "version", version)

	return formatter.Success(InitDBResult{
		Database:      cfg.Database,
		Dialect:       st.Dialect(),
		SchemaVersion: version,
	})
}
