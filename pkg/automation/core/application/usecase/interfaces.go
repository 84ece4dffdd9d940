// Package usecase implements the public surface of the automation engine:
// starting, steering and inspecting automation sessions.
package usecase

import (
	"context"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
)

// AutomationService is the caller-facing API of the orchestrator.
type AutomationService interface {
	// StartAutomation starts a new session for (campaignID, userID, mode).
	// The optional observer receives the live campaign state after every
	// mutation of this session. Starting a campaign that already has a
	// running session fails, it never queues.
	StartAutomation(ctx context.Context, campaignID, userID string, mode model.SessionMode, observer listener.StateObserver) (string, error)

	// CancelAutomation requests cooperative cancellation of a running session.
	CancelAutomation(ctx context.Context, sessionID string) error

	// AdvanceManualStage releases a MANUAL session halted after creator
	// intake. Calling it when the session is not halted is a no-op.
	AdvanceManualStage(ctx context.Context, sessionID string) error

	// SetCreatorPreferences merges operator-supplied contact preferences into
	// a running session's projection.
	SetCreatorPreferences(ctx context.Context, sessionID string, prefs []model.CreatorContactPreference) error

	// GetAutomationStatus loads the current session record.
	GetAutomationStatus(ctx context.Context, sessionID string) (*model.AutomationSession, error)

	// ComputeReport derives the performance report of a session from its
	// audit log.
	ComputeReport(ctx context.Context, sessionID string) (*model.Report, error)

	// GetReport derives the report of a campaign's most recent session.
	GetReport(ctx context.Context, campaignID string) (*model.Report, error)

	// GetHistory lists all sessions for a campaign, most recent first.
	GetHistory(ctx context.Context, campaignID string) ([]*model.AutomationSession, error)

	// AwaitCompletion blocks until the session reaches a terminal state or
	// the context ends, then returns the final session record.
	AwaitCompletion(ctx context.Context, sessionID string) (*model.AutomationSession, error)
}
