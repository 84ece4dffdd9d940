package metrics

import (
	"context"

	"go.uber.org/fx"

	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	metrics "github.com/creatorbridge/maestro/pkg/automation/core/metrics"
)

// registerTelemetry starts the OTLP exporter with the application and flushes
// it on shutdown.
func registerTelemetry(lc fx.Lifecycle, cfg *config.Config) {
	var shutdown TelemetryShutdown
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			shutdown, err = InitTelemetry(ctx, &cfg.Maestro.Tracing)
			return err
		},
		OnStop: func(ctx context.Context) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(ctx)
		},
	})
}

// Module is an Fx module that provides PrometheusRecorder and
// OpenTelemetryTracer. Including it replaces the no-op fallbacks of the core
// metrics module.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewPrometheusRecorder,
		fx.As(new(metrics.MetricRecorder)),
	)),
	fx.Provide(fx.Annotate(
		NewOpenTelemetryTracer,
		fx.As(new(metrics.Tracer)),
	)),
	fx.Invoke(registerTelemetry),
)
