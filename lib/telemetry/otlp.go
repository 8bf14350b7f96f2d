package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const exporterDialTimeout = 3 * time.Second

// runs are short, flush often
const metricExportInterval = 5 * time.Second

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

// transport returns "grpc" or "http", grpc wins when both are set.
func (c OtlpConnConfig) transport() (string, string) {
	if c.GrpcEndpoint != "" {
		return "grpc", c.GrpcEndpoint
	}
	return "http", c.HttpEndpoint
}

func newSpanExporter(ctx context.Context, conn OtlpConnConfig) (trace.SpanExporter, error) {
	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()

	kind, endpoint := conn.transport()
	slog.Debug("span exporter configured", "transport", kind, "endpoint", endpoint, "headers", len(conn.Headers))

	switch kind {
	case "grpc":
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(endpoint),
			otlptracegrpc.WithHeaders(conn.Headers),
		)
	case "http":
		return otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(endpoint),
			otlptracehttp.WithHeaders(conn.Headers),
		)
	}
	return nil, fmt.Errorf("unsupported otlp transport %q", kind)
}

func newMetricExporter(ctx context.Context, conn OtlpConnConfig) (metric.Exporter, error) {
	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()

	kind, endpoint := conn.transport()
	slog.Debug("metric exporter configured", "transport", kind, "endpoint", endpoint, "headers", len(conn.Headers))

	switch kind {
	case "grpc":
		return otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(endpoint),
			otlpmetricgrpc.WithHeaders(conn.Headers),
		)
	case "http":
		return otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(endpoint),
			otlpmetrichttp.WithHeaders(conn.Headers),
		)
	}
	return nil, fmt.Errorf("unsupported otlp transport %q", kind)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, conn OtlpConnConfig) (*trace.TracerProvider, error) {
	exporter, err := newSpanExporter(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("span exporter: %w", err)
	}
	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, conn OtlpConnConfig) (*metric.MeterProvider, error) {
	exporter, err := newMetricExporter(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	reader := metric.NewPeriodicReader(exporter, metric.WithInterval(metricExportInterval))
	return metric.NewMeterProvider(
		metric.WithReader(reader),
		metric.WithResource(r),
	), nil
}
