package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// SessionStatus represents the state of an automation session.
type SessionStatus string

const (
	SessionStatusInitiated          SessionStatus = "INITIATED"
	SessionStatusCreatorsLoaded     SessionStatus = "CREATORS_LOADED"
	SessionStatusContractsDrafted   SessionStatus = "CONTRACTS_DRAFTED"
	SessionStatusOutreachDispatched SessionStatus = "OUTREACH_DISPATCHED"
	SessionStatusCompleted          SessionStatus = "COMPLETED"
	SessionStatusFailed             SessionStatus = "FAILED"
	SessionStatusCancelled          SessionStatus = "CANCELLED"
)

// String returns the string representation of the SessionStatus.
func (s SessionStatus) String() string {
	return string(s)
}

// IsTerminal checks if the SessionStatus represents a terminal state.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case SessionStatusCompleted, SessionStatusFailed, SessionStatusCancelled:
		return true
	default:
		return false
	}
}

// SessionMode selects between fully automatic execution and operator-gated
// execution that halts after creator intake.
type SessionMode string

const (
	ModeAutomatic SessionMode = "AUTOMATIC"
	ModeManual    SessionMode = "MANUAL"
)

// String returns the string representation of the SessionMode.
func (m SessionMode) String() string {
	return string(m)
}

// ParseSessionMode converts a string into a SessionMode.
func ParseSessionMode(s string) (SessionMode, error) {
	switch SessionMode(s) {
	case ModeAutomatic, ModeManual:
		return SessionMode(s), nil
	default:
		return "", fmt.Errorf("unknown session mode %q", s)
	}
}

// SessionCounters holds the aggregate counters maintained while a session runs.
type SessionCounters struct {
	CreatorsFound            int `json:"creatorsFound"`
	CreatorsContacted        int `json:"creatorsContacted"`
	ContractsGenerated       int `json:"contractsGenerated"`
	ContractsSent            int `json:"contractsSent"`
	EmailsSent               int `json:"emailsSent"`
	CallsMade                int `json:"callsMade"`
	SuccessfulCommunications int `json:"successfulCommunications"`
	FailedCommunications     int `json:"failedCommunications"`
}

// AutomationSession is the identity and control record for one automation run
// of a campaign. It is created when the run starts, mutated exclusively by the
// pipeline controller and the audit log, and never deleted, only superseded by
// a newer session for the same campaign.
type AutomationSession struct {
	ID             string
	CampaignID     string
	UserID         string
	Mode           SessionMode
	Status         SessionStatus
	TotalSteps     int
	CompletedSteps int
	CurrentStep    string
	Counters       SessionCounters
	StepLog        StepLog
	ErrorLog       ErrorLog
	Metrics        *Report
	StartTime      time.Time
	EndTime        *time.Time
	LastUpdated    time.Time
	Version        int
}

// NewAutomationSession creates a new AutomationSession in the INITIATED state.
func NewAutomationSession(campaignID, userID string, mode SessionMode) *AutomationSession {
	now := time.Now()
	return &AutomationSession{
		ID:          NewID(),
		CampaignID:  campaignID,
		UserID:      userID,
		Mode:        mode,
		Status:      SessionStatusInitiated,
		StepLog:     StepLog{},
		ErrorLog:    ErrorLog{},
		StartTime:   now,
		LastUpdated: now,
		Version:     0,
	}
}

// isValidSessionTransition checks if the state transition for a session is valid.
func isValidSessionTransition(current, next SessionStatus) bool {
	if !current.IsTerminal() && (next == SessionStatusFailed || next == SessionStatusCancelled) {
		return true
	}
	switch current {
	case SessionStatusInitiated:
		return next == SessionStatusCreatorsLoaded
	case SessionStatusCreatorsLoaded:
		return next == SessionStatusContractsDrafted
	case SessionStatusContractsDrafted:
		return next == SessionStatusOutreachDispatched
	case SessionStatusOutreachDispatched:
		return next == SessionStatusCompleted
	default:
		return false
	}
}

// TransitionTo safely transitions the session state. Fields other than Status
// and LastUpdated must be set separately by the caller.
func (s *AutomationSession) TransitionTo(next SessionStatus) error {
	if !isValidSessionTransition(s.Status, next) {
		return fmt.Errorf("AutomationSession (ID: %s): invalid state transition: %s -> %s", s.ID, s.Status, next)
	}
	s.Status = next
	s.LastUpdated = time.Now()
	return nil
}

// MarkAsCompleted moves the session to COMPLETED and stamps the end time.
func (s *AutomationSession) MarkAsCompleted() {
	if err := s.TransitionTo(SessionStatusCompleted); err != nil {
		logger.Warnf("Could not update AutomationSession (ID: %s) status to COMPLETED: %v", s.ID, err)
		s.Status = SessionStatusCompleted
	}
	now := time.Now()
	s.EndTime = &now
	s.LastUpdated = now
}

// MarkAsFailed moves the session to FAILED and stamps the end time.
func (s *AutomationSession) MarkAsFailed() {
	if err := s.TransitionTo(SessionStatusFailed); err != nil {
		logger.Warnf("Could not update AutomationSession (ID: %s) status to FAILED: %v", s.ID, err)
		s.Status = SessionStatusFailed
	}
	now := time.Now()
	s.EndTime = &now
	s.LastUpdated = now
}

// MarkAsCancelled moves the session to CANCELLED and stamps the end time.
func (s *AutomationSession) MarkAsCancelled() {
	if err := s.TransitionTo(SessionStatusCancelled); err != nil {
		logger.Warnf("Could not update AutomationSession (ID: %s) status to CANCELLED: %v", s.ID, err)
		s.Status = SessionStatusCancelled
	}
	now := time.Now()
	s.EndTime = &now
	s.LastUpdated = now
}

// NewID generates a new UUID string.
func NewID() string {
	return uuid.New().String()
}
