package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	metrics "github.com/creatorbridge/maestro/pkg/automation/core/metrics"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the
// metrics.MetricRecorder interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	// Session metrics
	sessionDurationSeconds *prometheus.HistogramVec
	sessionStatusCounter   *prometheus.CounterVec

	// Stage metrics
	stageDurationSeconds *prometheus.HistogramVec
	stageStatusCounter   *prometheus.CounterVec

	// Fan-out item metrics
	dispatchItemCounter *prometheus.CounterVec

	// Generic operation durations
	operationDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder.
func NewPrometheusRecorder() metrics.MetricRecorder {
	registry := prometheus.NewRegistry()

	// Register Go standard metrics and process/OS metrics.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		sessionDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "automation_session_duration_seconds",
			Help:    "Duration of automation sessions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode", "status"}),
		sessionStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automation_session_status_total",
			Help: "Total number of automation sessions by status.",
		}, []string{"mode", "status"}),
		stageDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "automation_stage_duration_seconds",
			Help:    "Duration of pipeline stage executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step_type", "status"}),
		stageStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automation_stage_status_total",
			Help: "Total number of pipeline stage executions by status.",
		}, []string{"step_type", "status"}),
		dispatchItemCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automation_dispatch_item_total",
			Help: "Total fan-out item outcomes by stage.",
		}, []string{"step_type", "outcome"}),
		operationDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "automation_operation_duration_seconds",
			Help:    "Duration of named operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"name"}),
	}

	registry.MustRegister(r.sessionDurationSeconds)
	registry.MustRegister(r.sessionStatusCounter)
	registry.MustRegister(r.stageDurationSeconds)
	registry.MustRegister(r.stageStatusCounter)
	registry.MustRegister(r.dispatchItemCounter)
	registry.MustRegister(r.operationDurationSeconds)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// RecordSessionStart records the start of an automation session.
func (r *PrometheusRecorder) RecordSessionStart(ctx context.Context, session *model.AutomationSession) {
	r.sessionStatusCounter.WithLabelValues(session.Mode.String(), session.Status.String()).Inc()
	logger.Debugf("Metrics: Session '%s' started.", session.ID)
}

// RecordSessionEnd records the end of an automation session.
func (r *PrometheusRecorder) RecordSessionEnd(ctx context.Context, session *model.AutomationSession) {
	r.sessionStatusCounter.WithLabelValues(session.Mode.String(), session.Status.String()).Inc()
	if session.EndTime == nil {
		return
	}
	duration := session.EndTime.Sub(session.StartTime).Seconds()
	r.sessionDurationSeconds.WithLabelValues(session.Mode.String(), session.Status.String()).Observe(duration)
	logger.Debugf("Metrics: Session '%s' ended. Duration: %.3fs", session.ID, duration)
}

// RecordStageStart records the start of a pipeline stage.
func (r *PrometheusRecorder) RecordStageStart(ctx context.Context, sessionID string, step model.StepType) {
	r.stageStatusCounter.WithLabelValues(string(step), string(model.StepStatusStarted)).Inc()
}

// RecordStageEnd records the end of a pipeline stage.
func (r *PrometheusRecorder) RecordStageEnd(ctx context.Context, sessionID string, record *model.StepRecord) {
	r.stageStatusCounter.WithLabelValues(string(record.StepType), string(record.Status)).Inc()
	r.stageDurationSeconds.WithLabelValues(string(record.StepType), string(record.Status)).
		Observe(float64(record.DurationMs) / 1000.0)
}

// RecordDispatchItem records one fan-out item outcome for a stage.
func (r *PrometheusRecorder) RecordDispatchItem(ctx context.Context, step model.StepType, outcome string) {
	r.dispatchItemCounter.WithLabelValues(string(step), outcome).Inc()
}

// RecordDuration records the execution time of a named operation. Tags are
// intentionally not turned into labels; unbounded tag sets would blow up the
// series cardinality.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.operationDurationSeconds.WithLabelValues(name).Observe(duration.Seconds())
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
