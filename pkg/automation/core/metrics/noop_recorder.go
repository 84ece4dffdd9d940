package metrics

import (
	"context"
	"time"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
)

// NoOpMetricRecorder is an implementation of MetricRecorder that does nothing.
// It is used when metrics are disabled or during testing.
type NoOpMetricRecorder struct{}

// NewNoOpMetricRecorder creates a new instance of NoOpMetricRecorder.
func NewNoOpMetricRecorder() MetricRecorder {
	return &NoOpMetricRecorder{}
}

// RecordSessionStart does nothing.
func (r *NoOpMetricRecorder) RecordSessionStart(ctx context.Context, session *model.AutomationSession) {
}

// RecordSessionEnd does nothing.
func (r *NoOpMetricRecorder) RecordSessionEnd(ctx context.Context, session *model.AutomationSession) {
}

// RecordStageStart does nothing.
func (r *NoOpMetricRecorder) RecordStageStart(ctx context.Context, sessionID string, step model.StepType) {
}

// RecordStageEnd does nothing.
func (r *NoOpMetricRecorder) RecordStageEnd(ctx context.Context, sessionID string, record *model.StepRecord) {
}

// RecordDispatchItem does nothing.
func (r *NoOpMetricRecorder) RecordDispatchItem(ctx context.Context, step model.StepType, outcome string) {
}

// RecordDuration does nothing.
func (r *NoOpMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
}

var _ MetricRecorder = (*NoOpMetricRecorder)(nil)

// --- NoOpTracer ---

// NoOpTracer is an implementation of Tracer that does nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new instance of NoOpTracer.
func NewNoOpTracer() Tracer {
	return &NoOpTracer{}
}

// StartSessionSpan returns the context unchanged.
func (t *NoOpTracer) StartSessionSpan(ctx context.Context, session *model.AutomationSession) (context.Context, func()) {
	return ctx, func() {}
}

// StartStageSpan returns the context unchanged.
func (t *NoOpTracer) StartStageSpan(ctx context.Context, sessionID string, step model.StepType) (context.Context, func()) {
	return ctx, func() {}
}

// RecordError does nothing.
func (t *NoOpTracer) RecordError(ctx context.Context, module string, err error) {}

// RecordEvent does nothing.
func (t *NoOpTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
}

var _ Tracer = (*NoOpTracer)(nil)
