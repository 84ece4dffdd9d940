package metrics

import (
	"context"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
)

// Tracer is an abstract interface for distributed tracing of automation runs.
// The returned end function closes the span; callers defer it across the
// traced operation.
type Tracer interface {
	// StartSessionSpan starts a span covering a whole automation session.
	StartSessionSpan(ctx context.Context, session *model.AutomationSession) (context.Context, func())

	// StartStageSpan starts a span covering one pipeline stage.
	StartStageSpan(ctx context.Context, sessionID string, step model.StepType) (context.Context, func())

	// RecordError records an error on the current span.
	RecordError(ctx context.Context, module string, err error)

	// RecordEvent records a point-in-time event on the current span.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
