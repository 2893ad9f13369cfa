// Package telemetry sets up the OpenTelemetry tracer provider. Finished spans
// are written to the application logger at debug level.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	// ServiceName is attached to every span as service.name.
	ServiceName string
	// SampleRatio is the fraction of traces to sample. Values outside (0, 1]
	// mean always sample.
	SampleRatio float64
	Logger      *slog.Logger
}

// ShutdownFunc flushes buffered spans and stops the provider.
type ShutdownFunc func(ctx context.Context) error

// New creates a tracer provider, installs it as the global provider and
// returns it with its shutdown function.
func New(config Config) (*sdktrace.TracerProvider, ShutdownFunc, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", config.ServiceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	ratio := config.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1.0
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithBatcher(NewLogExporter(logger)),
	)
	otel.SetTracerProvider(provider)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := provider.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown tracer provider: %w", err)
		}
		return nil
	}

	return provider, shutdown, nil
}

// LogExporter writes each finished span as one debug record.
type LogExporter struct {
	logger *slog.Logger
}

func NewLogExporter(logger *slog.Logger) *LogExporter {
	return &LogExporter{logger: logger.With("component", "tracing")}
}

func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		attrs := []slog.Attr{
			slog.String("span", span.Name()),
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
			slog.Duration("duration", span.EndTime().Sub(span.StartTime())),
			slog.String("status", span.Status().Code.String()),
		}
		for _, kv := range span.Attributes() {
			attrs = append(attrs, slog.String(string(kv.Key), kv.Value.Emit()))
		}
		if desc := span.Status().Description; desc != "" {
			attrs = append(attrs, slog.String("status_description", desc))
		}
		e.logger.LogAttrs(ctx, slog.LevelDebug, "span finished", attrs...)
	}
	return nil
}

func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}
