// Package telemetry records tool calls into OpenTelemetry and installs the
// trace and metric exporters when an endpoint is configured.
package telemetry

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ScopeName names the tracer and meter used for tool calls.
const ScopeName = "github.com/spachava753/deskmcp"

// Observer records one span and a set of counters per tool call.
type Observer struct {
	tracer trace.Tracer

	calls   metric.Int64Counter
	errors  metric.Int64Counter
	latency metric.Float64Histogram
}

// NewObserver creates an observer bound to the provided meter and tracer.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	calls, err := meter.Int64Counter(
		"deskmcp.tool.calls",
		metric.WithDescription("Number of tool calls"),
	)
	if err != nil {
		return nil, err
	}
	errs, err := meter.Int64Counter(
		"deskmcp.tool.errors",
		metric.WithDescription("Number of tool calls that returned an error result"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"deskmcp.tool.latency",
		metric.WithDescription("Tool call latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &Observer{tracer: tracer, calls: calls, errors: errs, latency: latency}, nil
}

// Global returns an observer over the global meter and tracer providers.
func Global() (*Observer, error) {
	return NewObserver(otel.Meter(ScopeName), otel.Tracer(ScopeName))
}

// Start opens the span for a call. The returned function ends it; errKind is
// empty for successful calls.
func (o *Observer) Start(ctx context.Context, tool string, operation string) (context.Context, func(errKind string)) {
	if o == nil {
		return ctx, func(string) {}
	}
	started := time.Now()
	attrs := []attribute.KeyValue{
		attribute.String("tool", tool),
		attribute.String("operation", operation),
	}
	ctx, span := o.tracer.Start(ctx, "tool.call", trace.WithAttributes(attrs...))
	return ctx, func(errKind string) {
		success := errKind == ""
		all := append(attrs, attribute.Bool("success", success))
		if !success {
			all = append(all, attribute.String("error_kind", errKind))
		}
		options := metric.WithAttributes(all...)
		o.calls.Add(ctx, 1, options)
		o.latency.Record(ctx, time.Since(started).Seconds(), options)
		if success {
			span.SetStatus(codes.Ok, "")
		} else {
			o.errors.Add(ctx, 1, options)
			span.SetAttributes(attribute.String("error_kind", errKind))
			span.SetStatus(codes.Error, errKind)
		}
		span.End()
	}
}

// Config selects the OTLP exporters.
type Config struct {
	// Endpoint is the OTLP/HTTP base URL; /v1/traces and /v1/metrics are
	// appended. Empty disables export.
	Endpoint    string
	ServiceName string
	Version     string
	// MetricInterval is the metric export period. Zero uses the SDK default.
	MetricInterval time.Duration
}

// Setup installs global tracer and meter providers exporting to cfg.Endpoint.
// It returns a shutdown function that flushes pending spans and metrics. With
// no endpoint the no-op providers stay in place and shutdown does nothing.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.Version),
	))
	if err != nil {
		return nil, err
	}

	tracesURL, err := url.JoinPath(cfg.Endpoint, "v1", "traces")
	if err != nil {
		return nil, err
	}
	metricsURL, err := url.JoinPath(cfg.Endpoint, "v1", "metrics")
	if err != nil {
		return nil, err
	}

	traces, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(tracesURL))
	if err != nil {
		return nil, err
	}
	metrics, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(metricsURL))
	if err != nil {
		return nil, errors.Join(err, traces.Shutdown(ctx))
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traces),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metrics, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
