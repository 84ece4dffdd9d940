package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// TelemetryShutdown flushes and stops the span exporter.
type TelemetryShutdown func(ctx context.Context) error

// InitTelemetry installs the global OpenTelemetry tracer provider backed by
// an OTLP HTTP exporter. When tracing is disabled it installs nothing and
// returns a no-op shutdown.
func InitTelemetry(ctx context.Context, cfg *config.TracingConfig) (TelemetryShutdown, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return func(ctx context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	traceExp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	logger.Infof("OpenTelemetry tracing enabled (endpoint: %s).", cfg.Endpoint)
	return tp.Shutdown, nil
}
