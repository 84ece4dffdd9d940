// Package inmemory provides an in-memory implementation of the
// SessionRepository interface. It stores all session data in maps within
// memory, suitable for testing and scenarios where persistence is not
// required.
package inmemory

import (
	"context"
	"sort"
	"sync"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	repository "github.com/creatorbridge/maestro/pkg/automation/core/domain/repository"
)

// InMemorySessionRepository is an in-memory implementation of SessionRepository.
type InMemorySessionRepository struct {
	sessions map[string]*model.AutomationSession
	mu       sync.RWMutex
}

// NewInMemorySessionRepository creates and initializes a new InMemorySessionRepository.
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[string]*model.AutomationSession),
	}
}

// SaveSession persists a new session, enforcing the at-most-one-running-
// session-per-campaign invariant as a create-if-absent-else-reject operation
// under the repository lock.
func (r *InMemorySessionRepository) SaveSession(ctx context.Context, session *model.AutomationSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sessions {
		if existing.CampaignID == session.CampaignID && !existing.Status.IsTerminal() {
			return repository.ErrSessionAlreadyRunning
		}
	}

	clone := cloneSession(session)
	r.sessions[session.ID] = clone
	return nil
}

// UpdateSession replaces the stored session's mutable fields and bumps its
// version.
func (r *InMemorySessionRepository) UpdateSession(ctx context.Context, session *model.AutomationSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[session.ID]
	if !ok {
		return repository.ErrSessionNotFound
	}

	clone := cloneSession(session)
	clone.StepLog = stored.StepLog
	clone.ErrorLog = stored.ErrorLog
	clone.Version = stored.Version + 1
	r.sessions[session.ID] = clone
	session.Version = clone.Version
	return nil
}

// AppendStep reads the current step log, appends and writes the whole log back.
func (r *InMemorySessionRepository) AppendStep(ctx context.Context, sessionID string, record *model.StepRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[sessionID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	stored.StepLog = stored.StepLog.Append(record)
	return nil
}

// AppendError reads the current error log, appends and writes the whole log back.
func (r *InMemorySessionRepository) AppendError(ctx context.Context, sessionID string, record *model.ErrorRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[sessionID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	stored.ErrorLog = stored.ErrorLog.Append(record)
	return nil
}

// FindSessionByID finds a session by its ID. The result is a deep copy so
// callers cannot mutate repository state.
func (r *InMemorySessionRepository) FindSessionByID(ctx context.Context, sessionID string) (*model.AutomationSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.sessions[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return cloneSession(stored), nil
}

// FindLatestSessionByCampaign returns the most recently started session for a
// campaign.
func (r *InMemorySessionRepository) FindLatestSessionByCampaign(ctx context.Context, campaignID string) (*model.AutomationSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.AutomationSession
	for _, s := range r.sessions {
		if s.CampaignID != campaignID {
			continue
		}
		if latest == nil || s.StartTime.After(latest.StartTime) {
			latest = s
		}
	}
	if latest == nil {
		return nil, repository.ErrSessionNotFound
	}
	return cloneSession(latest), nil
}

// FindSessionsByCampaign returns all sessions for a campaign, most recent first.
func (r *InMemorySessionRepository) FindSessionsByCampaign(ctx context.Context, campaignID string) ([]*model.AutomationSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.AutomationSession, 0)
	for _, s := range r.sessions {
		if s.CampaignID == campaignID {
			out = append(out, cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

// Close releases resources used by the repository. An in-memory repository
// holds no external resources, so this always returns nil.
func (r *InMemorySessionRepository) Close() error {
	return nil
}

// cloneSession deep copies a session so internal state never leaks by
// reference. StepLog and ErrorLog are copy-on-append, so slice headers can be
// shared safely; the records themselves are immutable once closed.
func cloneSession(s *model.AutomationSession) *model.AutomationSession {
	clone := *s
	if s.EndTime != nil {
		end := *s.EndTime
		clone.EndTime = &end
	}
	if s.Metrics != nil {
		metrics := *s.Metrics
		clone.Metrics = &metrics
	}
	clone.StepLog = s.StepLog[:len(s.StepLog):len(s.StepLog)]
	clone.ErrorLog = s.ErrorLog[:len(s.ErrorLog):len(s.ErrorLog)]
	return &clone
}

var _ repository.SessionRepository = (*InMemorySessionRepository)(nil)
