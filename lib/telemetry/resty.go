package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var meter = otel.Meter("pydocparser.lib.telemetry")

var requestCounter, _ = meter.Int64Counter(
	"pydocparser.http.requests",
	metric.WithDescription("HTTP requests that received a response."),
)
var errorCounter, _ = meter.Int64Counter(
	"pydocparser.http.errors",
	metric.WithDescription("HTTP requests that failed before a response arrived."),
)

// InstrumentResty starts a span per request and records request counts.
func InstrumentResty(client *resty.Client, tracerName string) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(onBeforeRequest(tracer))
	client.OnAfterResponse(onAfterResponse)
	client.OnError(onError)
}

func onBeforeRequest(tracer trace.Tracer) resty.RequestMiddleware {
	return func(cli *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), fmt.Sprintf("http %s", req.Method))
		slog.DebugContext(ctx, "start request", "method", req.Method, "url", req.URL)
		req.SetContext(ctx)
		return nil
	}
}

func onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(
		semconv.HTTPRequestMethodKey.String(res.Request.Method),
		semconv.URLFull(res.Request.URL),
		semconv.HTTPResponseStatusCode(res.StatusCode()),
		attribute.Int("response/size", len(res.Body())),
	)
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}
	requestCounter.Add(ctx, 1, metric.WithAttributes(
		semconv.HTTPResponseStatusCode(res.StatusCode()),
	))

	slog.DebugContext(
		ctx, "request finished",
		"method", res.Request.Method,
		"url", res.Request.URL,
		"status", res.StatusCode(),
		"duration", res.Time(),
	)
	return nil
}

func onError(req *resty.Request, err error) {
	ctx := req.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(
		semconv.HTTPRequestMethodKey.String(req.Method),
		semconv.URLFull(req.URL),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	errorCounter.Add(ctx, 1)
}
