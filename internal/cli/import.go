package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/invoicer/internal/importer"
	"github.com/roach88/invoicer/internal/metrics"
	"github.com/roach88/invoicer/internal/sheet"
)

// pushJob is the Pushgateway job label for import runs.
const pushJob = "invoicer_import"

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions

	// Source overrides the spreadsheet reader (for testing).
	// If nil, defaults to sheet.XLSXReader.
	Source sheet.Reader

	// RunIDs overrides the run ID generator (for testing).
	RunIDs importer.RunIDGenerator
}

// ImportResult is the summary printed after a successful import.
type ImportResult struct {
	importer.Stats
}

// String renders the summary with locale-aware count formatting.
func (r ImportResult) String() string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("Import completed successfully.\nProcessed %d invoices with %d items.",
		r.InvoiceCount, r.ItemCount)
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file_path>",
		Short: "Import invoices from an Excel file",
		Long: `Import invoices from an XLSX spreadsheet.

Rows sharing an invoice key become one invoice. Customers and products are
matched by exact name and created when missing. The whole file is imported in
one transaction: any bad row leaves the database unchanged.

When pushgateway_url is configured, the run's metrics are pushed there after
the import, whether it succeeded or not.

Example:
  invoicer import ./invoices.xlsx
  invoicer --db ./invoicer.db import ./invoices.xlsx --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args, cmd)
		},
	}

	return cmd
}

func runImport(opts *ImportOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if len(args) == 0 {
		err := formatter.Fail(ErrCodeMissingArgument, "Missing file path argument.", nil)
		if opts.Format != "json" {
			fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
		}
		return err
	}
	path := args[0]

	if _, err := os.Stat(path); err != nil {
		return formatter.Fail(ErrCodeFileNotFound, "File does not exist: "+path, err)
	}

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

	source := opts.Source
	if source == nil {
		source = sheet.NewXLSXReader()
	}
	tp, shutdown, err := opts.tracerProvider(cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, err.Error(), err)
	}
	defer shutdownTracer(shutdown, logger)

	importOpts := []importer.Option{
		importer.WithColumns(cfg.Columns),
		importer.WithDateLayout(cfg.DateLayout),
		importer.WithLogger(logger),
		importer.WithTracerProvider(tp),
	}
	if opts.RunIDs != nil {
		importOpts = append(importOpts, importer.WithRunIDGenerator(opts.RunIDs))
	}
	var reg *prometheus.Registry
	if cfg.PushgatewayURL != "" {
		reg = prometheus.NewRegistry()
		importOpts = append(importOpts, importer.WithMetrics(metrics.New(reg)))
	}
	svc := importer.NewService(importer.New(st, source, importOpts...))

	stats, err := svc.ImportFile(ctx, path)
	if reg != nil {
		pushMetrics(ctx, cfg.PushgatewayURL, reg, logger)
	}
	if err != nil {
		code := ErrCodeGeneric
		var importErr *importer.Error
		if errors.As(err, &importErr) {
			code = string(importErr.Kind)
		}
		return formatter.Fail(code, err.Error(), err)
	}

	return formatter.Success(ImportResult{Stats: stats})
}

// pushMetrics sends the run's collectors to the Pushgateway at url. A failed
// push is logged and does not change the import result.
func pushMetrics(ctx context.Context, url string, reg *prometheus.Registry, logger *slog.Logger) {
	if err := push.New(url, pushJob).Gatherer(reg).PushContext(ctx); err != nil {
		logger.WarnContext(ctx, "failed to push import metrics", "url", url, "error", err)
		return
	}
	logger.DebugContext(ctx, "pushed import metrics", "url", url)
}
