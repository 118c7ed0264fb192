package telemetry

import (
	"context"
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

// OtlpConnConfig points one signal at a collector. When both endpoints
// are set grpc wins.
type OtlpConnConfig struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

type OtlpConfig struct {
	Traces  OtlpConnConfig `json:"traces"`
	Metrics OtlpConnConfig `json:"metrics"`
}

type Config struct {
	Otlp OtlpConfig `json:"otlp"`
}

const exporterDialTimeout = time.Second * 3

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func (c OtlpConnConfig) log(signal string) {
	transport := "http"
	if c.GrpcEndpoint != "" {
		transport = "grpc"
	}
	slog.Info(
		"otlp exporter initialized",
		"signal", signal,
		"transport", transport,
		"endpoint", c.endpoint(),
		"headers", len(c.Headers) > 0,
	)
}

func (c OtlpConnConfig) endpoint() string {
	if c.GrpcEndpoint != "" {
		return c.GrpcEndpoint
	}
	return c.HttpEndpoint
}

func (c OtlpConnConfig) traceExporter(ctx context.Context) (trace.SpanExporter, error) {
	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()

	c.log("traces")
	if c.GrpcEndpoint != "" {
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(c.GrpcEndpoint),
			otlptracegrpc.WithHeaders(c.Headers),
		)
	}
	return otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(c.HttpEndpoint),
		otlptracehttp.WithHeaders(c.Headers),
	)
}

func (c OtlpConnConfig) metricExporter(ctx context.Context) (metric.Exporter, error) {
	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()

	c.log("metrics")
	if c.GrpcEndpoint != "" {
		return otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(c.GrpcEndpoint),
			otlpmetricgrpc.WithHeaders(c.Headers),
		)
	}
	return otlpmetrichttp.New(
		ctx,
		otlpmetrichttp.WithEndpointURL(c.HttpEndpoint),
		otlpmetrichttp.WithHeaders(c.Headers),
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, config Config) (*trace.TracerProvider, error) {
	exporter, err := config.Otlp.Traces.traceExporter(ctx)
	if err != nil {
		return nil, err
	}
	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, config Config) (*metric.MeterProvider, error) {
	exporter, err := config.Otlp.Metrics.metricExporter(ctx)
	if err != nil {
		return nil, err
	}
	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(time.Second*5))),
		metric.WithResource(r),
	), nil
}
