package metrics

import (
	"context"
	"time"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
)

// MetricRecorder is an abstract interface for recording metrics related to
// automation runs. It standardizes how session, stage and per-item dispatch
// events are recorded, so different backends (Prometheus, OpenTelemetry
// Metrics) can be plugged in at the infrastructure layer.
type MetricRecorder interface {
	// RecordSessionStart records the start of an automation session.
	RecordSessionStart(ctx context.Context, session *model.AutomationSession)

	// RecordSessionEnd records the end of an automation session, including
	// its terminal status.
	RecordSessionEnd(ctx context.Context, session *model.AutomationSession)

	// RecordStageStart records the start of a pipeline stage.
	RecordStageStart(ctx context.Context, sessionID string, step model.StepType)

	// RecordStageEnd records the end of a pipeline stage with its terminal
	// step status.
	RecordStageEnd(ctx context.Context, sessionID string, record *model.StepRecord)

	// RecordDispatchItem records one fan-out item outcome ("success" or
	// "failure") for a stage.
	RecordDispatchItem(ctx context.Context, step model.StepType, outcome string)

	// RecordDuration records the execution time of a named operation with
	// optional tags.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}
