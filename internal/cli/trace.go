package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// tracerProvider returns the provider for command spans. With --trace each
// finished span is written to w as JSON; otherwise the global provider is
// returned. The returned func flushes and must be called before exit.
func (o *RootOptions) tracerProvider(w io.Writer) (trace.TracerProvider, func(context.Context) error, error) {
	if !o.Trace {
		return otel.GetTracerProvider(), func(context.Context) error { return nil }, nil
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	return tp, tp.Shutdown, nil
}

// shutdownTracer flushes pending spans, logging any error.
func shutdownTracer(shutdown func(context.Context) error, logger *slog.Logger) {
	if err := shutdown(context.Background()); err != nil {
		logger.Error("error flushing traces", "error", err)
	}
}
