package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Report is the derived performance summary of a session, computed when the
// session closes or on demand from the audit log.
type Report struct {
	SessionID               string  `json:"sessionId"`
	TotalSteps              int     `json:"totalSteps"`
	CompletedSteps          int     `json:"completedSteps"`
	FailedSteps             int     `json:"failedSteps"`
	SuccessRate             float64 `json:"successRate"`
	TotalDurationMs         int64   `json:"totalDurationMs"`
	TotalErrors             int     `json:"totalErrors"`
	CommunicationEfficiency float64 `json:"communicationEfficiency"`
}

// ComputeReport derives the performance report from a session's audit log and
// counters. The success rate is a percentage of completed steps over total
// steps; the communication efficiency is 0 when no communications happened.
func ComputeReport(s *AutomationSession) *Report {
	r := &Report{
		SessionID:       s.ID,
		TotalSteps:      s.TotalSteps,
		CompletedSteps:  s.CompletedSteps,
		FailedSteps:     s.StepLog.CountByStatus(StepStatusFailed),
		TotalDurationMs: s.StepLog.TotalDurationMs(),
		TotalErrors:     len(s.ErrorLog),
	}

	if r.TotalSteps > 0 {
		r.SuccessRate = float64(r.CompletedSteps) / float64(r.TotalSteps) * 100
	}

	comms := s.Counters.SuccessfulCommunications + s.Counters.FailedCommunications
	if comms > 0 {
		r.CommunicationEfficiency = float64(s.Counters.SuccessfulCommunications) / float64(comms)
	}
	return r
}

// Value implements driver.Valuer, serializing the report to JSON.
func (r *Report) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner, deserializing the report from JSON.
func (r *Report) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, sok := value.(string)
		if !sok {
			return fmt.Errorf("unsupported Scan type for Report: %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, r)
}
