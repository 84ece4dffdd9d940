package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StepType identifies a pipeline stage in the audit log.
type StepType string

const (
	StepTypeInitialization     StepType = "INITIALIZATION"
	StepTypeCreatorSearch      StepType = "CREATOR_SEARCH"
	StepTypeContractGeneration StepType = "CONTRACT_GENERATION"
	StepTypeOutreach           StepType = "OUTREACH"
	StepTypeCommunication      StepType = "COMMUNICATION"
	StepTypeCompletion         StepType = "COMPLETION"
)

// String returns the string representation of the StepType.
func (t StepType) String() string {
	return string(t)
}

// PipelineStepTypes lists the stages of a full run in execution order.
var PipelineStepTypes = []StepType{
	StepTypeInitialization,
	StepTypeCreatorSearch,
	StepTypeContractGeneration,
	StepTypeOutreach,
	StepTypeCompletion,
}

// StepStatus represents the state of an audited step.
type StepStatus string

const (
	StepStatusStarted    StepStatus = "STARTED"
	StepStatusInProgress StepStatus = "IN_PROGRESS"
	StepStatusCompleted  StepStatus = "COMPLETED"
	StepStatusFailed     StepStatus = "FAILED"
	StepStatusSkipped    StepStatus = "SKIPPED"
)

// String returns the string representation of the StepStatus.
func (s StepStatus) String() string {
	return string(s)
}

// Details is a free-form bag of stage-specific metadata persisted with each record.
type Details map[string]interface{}

// StepRecord is one audit entry for one stage execution. A record is built in
// memory while its stage runs and appended to the session log exactly once,
// after it has been closed with Complete, Fail or Skip. Closed records are
// immutable.
type StepRecord struct {
	ID           string     `json:"id"`
	StepName     string     `json:"stepName"`
	StepType     StepType   `json:"stepType"`
	Status       StepStatus `json:"status"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	DurationMs   int64      `json:"durationMs"`
	Details      Details    `json:"details,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// NewStepRecord opens a record for the given stage.
func NewStepRecord(stepType StepType, stepName string) *StepRecord {
	return &StepRecord{
		ID:        NewID(),
		StepName:  stepName,
		StepType:  stepType,
		Status:    StepStatusStarted,
		StartedAt: time.Now(),
		Details:   Details{},
	}
}

func (r *StepRecord) close(status StepStatus) {
	now := time.Now()
	r.Status = status
	r.CompletedAt = &now
	r.DurationMs = now.Sub(r.StartedAt).Milliseconds()
}

// Complete closes the record as COMPLETED.
func (r *StepRecord) Complete() {
	r.close(StepStatusCompleted)
}

// Fail closes the record as FAILED, recording the error message.
func (r *StepRecord) Fail(err error) {
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	r.close(StepStatusFailed)
}

// Skip closes the record as SKIPPED.
func (r *StepRecord) Skip() {
	r.close(StepStatusSkipped)
}

// IsClosed reports whether the record has reached a terminal status.
func (r *StepRecord) IsClosed() bool {
	switch r.Status {
	case StepStatusCompleted, StepStatusFailed, StepStatusSkipped:
		return true
	default:
		return false
	}
}

// ErrorRecord is one captured failure. It is independent of StepRecord so
// that failures outside a clearly bounded step are still captured.
type ErrorRecord struct {
	ID           string    `json:"id"`
	ErrorType    string    `json:"errorType"`
	ErrorMessage string    `json:"errorMessage"`
	StepName     string    `json:"stepName,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	StackTrace   string    `json:"stackTrace,omitempty"`
	Context      Details   `json:"context,omitempty"`
}

// NewErrorRecord creates an ErrorRecord stamped with the current time.
func NewErrorRecord(errorType, errorMessage, stepName string) *ErrorRecord {
	return &ErrorRecord{
		ID:           NewID(),
		ErrorType:    errorType,
		ErrorMessage: errorMessage,
		StepName:     stepName,
		Timestamp:    time.Now(),
	}
}

// StepLog is the append-only sequence of closed StepRecords for a session.
// It is stored as a JSON column.
type StepLog []*StepRecord

// Append returns a new StepLog with the record added. The receiver is not
// modified, so snapshots handed to observers stay stable.
func (l StepLog) Append(record *StepRecord) StepLog {
	out := make(StepLog, 0, len(l)+1)
	out = append(out, l...)
	return append(out, record)
}

// Last returns the most recently appended record, or nil when the log is empty.
func (l StepLog) Last() *StepRecord {
	if len(l) == 0 {
		return nil
	}
	return l[len(l)-1]
}

// LastOf returns the most recently appended record of the given type, or nil.
func (l StepLog) LastOf(stepType StepType) *StepRecord {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].StepType == stepType {
			return l[i]
		}
	}
	return nil
}

// CountByStatus returns the number of records with the given status.
func (l StepLog) CountByStatus(status StepStatus) int {
	n := 0
	for _, r := range l {
		if r.Status == status {
			n++
		}
	}
	return n
}

// TotalDurationMs sums the recorded durations across all records.
func (l StepLog) TotalDurationMs() int64 {
	var total int64
	for _, r := range l {
		total += r.DurationMs
	}
	return total
}

// Value implements driver.Valuer, serializing the log to JSON.
func (l StepLog) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(StepLog{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner, deserializing the log from JSON.
func (l *StepLog) Scan(value interface{}) error {
	if value == nil {
		*l = StepLog{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, sok := value.(string)
		if !sok {
			return fmt.Errorf("unsupported Scan type for StepLog: %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, l)
}

// ErrorLog is the append-only sequence of ErrorRecords for a session.
// It is stored as a JSON column.
type ErrorLog []*ErrorRecord

// Append returns a new ErrorLog with the record added.
func (l ErrorLog) Append(record *ErrorRecord) ErrorLog {
	out := make(ErrorLog, 0, len(l)+1)
	out = append(out, l...)
	return append(out, record)
}

// Value implements driver.Valuer, serializing the log to JSON.
func (l ErrorLog) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(ErrorLog{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner, deserializing the log from JSON.
func (l *ErrorLog) Scan(value interface{}) error {
	if value == nil {
		*l = ErrorLog{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, sok := value.(string)
		if !sok {
			return fmt.Errorf("unsupported Scan type for ErrorLog: %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, l)
}
