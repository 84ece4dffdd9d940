// Package repository defines the persistence boundary for the audit logging
// subsystem. Implementations live under infrastructure/repository.
package repository

import (
	"context"
	"errors"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
)

// ErrSessionNotFound is returned when a session does not exist in the store.
var ErrSessionNotFound = errors.New("automation session not found")

// ErrSessionAlreadyRunning is returned by SaveSession when the campaign
// already has a session in a non-terminal status. Starting a second run for
// the same campaign must fail, not queue.
var ErrSessionAlreadyRunning = errors.New("campaign already has a running automation session")

// SessionRepository is the durable store for automation sessions and their
// append-only audit logs.
//
// Log appends follow an append-then-replace-whole-log discipline: the
// implementation reads the current log, appends the record and writes the
// whole array back. Concurrent appends to the same session are not supported;
// the at-most-one-running-session-per-campaign invariant makes the single
// writer assumption safe.
type SessionRepository interface {
	// SaveSession persists a new session. It atomically enforces the
	// one-running-session-per-campaign invariant and returns
	// ErrSessionAlreadyRunning when the claim is lost.
	SaveSession(ctx context.Context, session *model.AutomationSession) error

	// UpdateSession merges counters, status, progress fields and derived
	// metrics of an existing session. Implementations use optimistic locking
	// on the session version.
	UpdateSession(ctx context.Context, session *model.AutomationSession) error

	// AppendStep appends one closed StepRecord to the session's step log.
	AppendStep(ctx context.Context, sessionID string, record *model.StepRecord) error

	// AppendError appends one ErrorRecord to the session's error log.
	AppendError(ctx context.Context, sessionID string, record *model.ErrorRecord) error

	// FindSessionByID loads a session, or ErrSessionNotFound.
	FindSessionByID(ctx context.Context, sessionID string) (*model.AutomationSession, error)

	// FindLatestSessionByCampaign loads the most recently started session for
	// a campaign, or ErrSessionNotFound.
	FindLatestSessionByCampaign(ctx context.Context, campaignID string) (*model.AutomationSession, error)

	// FindSessionsByCampaign loads all sessions for a campaign, most recent
	// first.
	FindSessionsByCampaign(ctx context.Context, campaignID string) ([]*model.AutomationSession, error)

	// Close releases any resources held by the repository.
	Close() error
}
