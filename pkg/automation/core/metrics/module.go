package metrics

import (
	"go.uber.org/fx"
)

// Module is an Fx module that provides metrics-related components.
// It provides the no-op implementations as fallbacks; real backends provided
// by the infrastructure layer take priority when wired.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewNoOpMetricRecorder,
		fx.As(new(MetricRecorder)),
		fx.ResultTags(`optional:"true"`),
	)),
	fx.Provide(fx.Annotate(
		NewNoOpTracer,
		fx.As(new(Tracer)),
		fx.ResultTags(`optional:"true"`),
	)),
)
