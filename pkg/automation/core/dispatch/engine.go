// Package dispatch implements the rate-limited, per-item-isolated fan-out used
// by stages that act once per creator. Items are processed strictly
// sequentially; the minimum delay between successive invocations respects
// downstream rate limits on the messaging and contracting integrations.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/time/rate"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	metrics "github.com/creatorbridge/maestro/pkg/automation/core/metrics"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// OutcomeStatus is the per-item result classification.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// Item is one unit of fan-out work, identified for outcome reporting.
type Item struct {
	ID      string
	Payload interface{}
}

// Outcome is the per-item result of a fan-out batch.
type Outcome struct {
	ItemID       string
	Status       OutcomeStatus
	Result       interface{}
	ErrorMessage string
}

// Result aggregates a whole fan-out batch.
type Result struct {
	// Outcomes maps item ID to its outcome.
	Outcomes map[string]*Outcome
	// Order preserves the processing order of item IDs.
	Order []string
	// SuccessCount and FailureCount populate session counters.
	SuccessCount int
	FailureCount int
	// Stopped is true when a cooperative stop request ended the batch early.
	// Items not yet started are absent from Outcomes.
	Stopped bool
	// AggregateErr collects all per-item errors. It never aborts the batch;
	// it exists for logging and audit details.
	AggregateErr error
}

// Invoker applies one capability invocation to one item.
type Invoker func(ctx context.Context, item Item) (interface{}, error)

// ProgressFunc observes per-item completion. index is zero-based.
type ProgressFunc func(index, total int, outcome *Outcome)

// StopFunc reports whether a cooperative stop has been requested. It is
// consulted between items, never mid-item; in-flight invocations finish.
type StopFunc func() bool

// Engine runs fan-out batches with a minimum inter-item delay.
type Engine struct {
	limiter  *rate.Limiter
	recorder metrics.MetricRecorder
}

// NewEngine creates an Engine with the given minimum inter-item delay.
// A zero or negative delay disables pacing.
func NewEngine(interItemDelay time.Duration, recorder metrics.MetricRecorder) *Engine {
	limit := rate.Inf
	if interItemDelay > 0 {
		limit = rate.Every(interItemDelay)
	}
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	return &Engine{
		limiter:  rate.NewLimiter(limit, 1),
		recorder: recorder,
	}
}

// Run processes items strictly sequentially. One item's failure is never
// allowed to abort the batch; failures are recorded against the item and
// processing continues. The batch ends early only on context cancellation or
// when stop reports true between items.
func (e *Engine) Run(ctx context.Context, step model.StepType, items []Item, invoke Invoker, onProgress ProgressFunc, stop StopFunc) (*Result, error) {
	result := &Result{
		Outcomes: make(map[string]*Outcome, len(items)),
		Order:    make([]string, 0, len(items)),
	}

	for i, item := range items {
		if stop != nil && stop() {
			logger.Infof("Fan-out for step '%s' stopped after %d of %d items.", step, i, len(items))
			result.Stopped = true
			break
		}
		if err := e.limiter.Wait(ctx); err != nil {
			result.Stopped = true
			return result, err
		}

		outcome := e.invokeOne(ctx, item, invoke)
		result.Outcomes[item.ID] = outcome
		result.Order = append(result.Order, item.ID)

		if outcome.Status == OutcomeSuccess {
			result.SuccessCount++
			e.recorder.RecordDispatchItem(ctx, step, string(OutcomeSuccess))
		} else {
			result.FailureCount++
			e.recorder.RecordDispatchItem(ctx, step, string(OutcomeFailure))
			result.AggregateErr = multierror.Append(result.AggregateErr,
				fmt.Errorf("item %s: %s", item.ID, outcome.ErrorMessage))
			logger.Warnf("Fan-out item '%s' in step '%s' failed: %s", item.ID, step, outcome.ErrorMessage)
		}

		if onProgress != nil {
			onProgress(i, len(items), outcome)
		}
	}

	return result, nil
}

// invokeOne applies the invoker with panic containment, so a single
// misbehaving integration call cannot take down the batch.
func (e *Engine) invokeOne(ctx context.Context, item Item, invoke Invoker) (outcome *Outcome) {
	outcome = &Outcome{ItemID: item.ID}
	defer func() {
		if rec := recover(); rec != nil {
			outcome.Status = OutcomeFailure
			outcome.ErrorMessage = fmt.Sprintf("invocation panicked: %v", rec)
		}
	}()

	value, err := invoke(ctx, item)
	if err != nil {
		outcome.Status = OutcomeFailure
		outcome.ErrorMessage = err.Error()
		return outcome
	}
	outcome.Status = OutcomeSuccess
	outcome.Result = value
	return outcome
}
