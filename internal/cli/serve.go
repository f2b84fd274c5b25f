package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/invoicer/internal/httpapi"
	"github.com/roach88/invoicer/internal/metrics"
	"github.com/roach88/invoicer/internal/query"
)

// shutdownTimeout bounds how long in-flight requests may take after a signal.
const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string

	// Ready is called with the bound address once the listener is open (for testing).
	Ready func(addr string)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored invoices over HTTP",
		Long: `Serve stored invoices as JSON.

Routes:
  GET /invoices        all invoices with customers and items
  GET /invoices/{id}   one invoice
  GET /healthz         database health
  GET /metrics         Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.

Example:
  invoicer --db ./invoicer.db serve --addr :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config http_addr)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, err.Error(), err)
	}
	if opts.Addr != "" {
		cfg.HTTPAddr = opts.Addr
	}
	logger := opts.setupLogger(cmd.ErrOrStderr(), cfg)

	tp, shutdown, err := opts.tracerProvider(cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, err.Error(), err)
	}
	defer shutdownTracer(shutdown, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return formatter.Fail(ErrCodeDatabase, err.Error(), err)
	}
	defer closeStore(st, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	assembler := query.New(st, query.WithMetrics(m), query.WithTracerProvider(tp))
	handler := httpapi.New(assembler, st, logger)
	srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.NewRouter(handler, reg))

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return formatter.Fail(ErrCodeServer, err.Error(), err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if opts.Ready != nil {
		opts.Ready(ln.Addr().String())
	}

	if err := g.Wait(); err != nil {
		return formatter.Fail(ErrCodeServer, err.Error(), err)
	}
	logger.Info("http server stopped")
	return nil
}
