package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	metrics "github.com/creatorbridge/maestro/pkg/automation/core/metrics"
)

const tracerName = "github.com/creatorbridge/maestro/pkg/automation"

// OpenTelemetryTracer implements metrics.Tracer on the global OpenTelemetry
// tracer provider. It assumes the provider has been installed by the
// telemetry bootstrap.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
}

// NewOpenTelemetryTracer creates a new OpenTelemetryTracer.
func NewOpenTelemetryTracer() metrics.Tracer {
	return &OpenTelemetryTracer{tracer: otel.Tracer(tracerName)}
}

// StartSessionSpan starts a span covering a whole automation session.
func (t *OpenTelemetryTracer) StartSessionSpan(ctx context.Context, session *model.AutomationSession) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "automation.session",
		trace.WithAttributes(
			attribute.String("session.id", session.ID),
			attribute.String("campaign.id", session.CampaignID),
			attribute.String("session.mode", session.Mode.String()),
		))
	return ctx, func() { span.End() }
}

// StartStageSpan starts a span covering one pipeline stage.
func (t *OpenTelemetryTracer) StartStageSpan(ctx context.Context, sessionID string, step model.StepType) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "automation.stage."+string(step),
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("stage.type", string(step)),
		))
	return ctx, func() { span.End() }
}

// RecordError records an error on the current span.
func (t *OpenTelemetryTracer) RecordError(ctx context.Context, module string, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, trace.WithAttributes(attribute.String("module", module)))
	span.SetStatus(codes.Error, err.Error())
}

// RecordEvent records a point-in-time event on the current span.
func (t *OpenTelemetryTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

var _ metrics.Tracer = (*OpenTelemetryTracer)(nil)
