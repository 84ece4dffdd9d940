// Package listener defines the observation hooks of the automation engine:
// session and stage lifecycle listeners, the live campaign state observer and
// the completion notifier.
package listener

import (
	"context"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
)

// SessionExecutionListener observes the lifecycle of a whole automation session.
type SessionExecutionListener interface {
	BeforeSession(ctx context.Context, session *model.AutomationSession)
	AfterSession(ctx context.Context, session *model.AutomationSession)
}

// StageExecutionListener observes the lifecycle of individual pipeline stages.
type StageExecutionListener interface {
	BeforeStage(ctx context.Context, sessionID string, record *model.StepRecord)
	AfterStage(ctx context.Context, sessionID string, record *model.StepRecord)
}

// StateObserver receives the live campaign state projection after every
// mutation. Delivery is best-effort; implementations must not assume they see
// every intermediate state.
type StateObserver interface {
	OnStateChanged(state *model.CampaignState)
}

// StateObserverFunc adapts a plain function to the StateObserver interface.
type StateObserverFunc func(state *model.CampaignState)

// OnStateChanged calls the wrapped function.
func (f StateObserverFunc) OnStateChanged(state *model.CampaignState) {
	f(state)
}

// Notifier delivers end-of-run notifications to an external channel.
type Notifier interface {
	NotifySessionCompletion(ctx context.Context, session *model.AutomationSession)
}
