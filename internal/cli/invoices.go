package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/invoicer/internal/query"
	"github.com/roach88/invoicer/internal/render"
)

// NewInvoicesCommand creates the invoices command.
func NewInvoicesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Print all stored invoices as JSON",
		Long: `Print every stored invoice with its customer and line items as the
same JSON document served by GET /invoices.

Example:
  invoicer --db ./invoicer.db invoices`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoices(rootOpts, cmd)
		},
	}

	return cmd
}

// runInvoices always prints a render envelope; --format does not apply.
func runInvoices(opts *RootOptions, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, err := opts.loadConfig()
	if err != nil {
		_ = render.Write(out, render.Error(err.Error()))
		return WrapExitError(ExitFailure, "load config", err)
	}
	logger := opts.setupLogger(cmd.ErrOrStderr(), cfg)

	ctx := cmd.Context()
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		_ = render.Write(out, render.Error(err.Error()))
		return WrapExitError(ExitFailure, "open database", err)
	}
	defer closeStore(st, logger)

	views, err := query.New(st).AllInvoicesWithDetails(ctx)
	if err != nil {
		_ = render.Write(out, render.Error(err.Error()))
		return WrapExitError(ExitFailure, "query invoices", err)
	}

	return render.Write(out, render.Success(views))
}
