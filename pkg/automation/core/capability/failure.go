// Package capability exposes a fixed, named set of operations as the only way
// the pipeline controller touches the outside world. Every operation returns
// either a success value or a typed Failure; integrations never raise uncaught
// faults across the registry boundary.
package capability

import "fmt"

// FailureKind classifies a capability failure.
type FailureKind string

const (
	// FailureKindUnavailable marks an integration that could not be reached.
	FailureKindUnavailable FailureKind = "UNAVAILABLE"
	// FailureKindRejected marks a request the integration refused.
	FailureKindRejected FailureKind = "REJECTED"
	// FailureKindNotFound marks a missing target entity.
	FailureKindNotFound FailureKind = "NOT_FOUND"
	// FailureKindInternal marks a fault inside the integration adapter,
	// including recovered panics.
	FailureKindInternal FailureKind = "INTERNAL"
)

// Failure is the typed failure contract of the registry. A misbehaving
// integration is translated into a Failure at the adapter edge.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// NewFailure creates a Failure.
func NewFailure(kind FailureKind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("capability failure (%s): %s", f.Kind, f.Message)
}

// AsFailure normalizes any error into a Failure. An error that already is a
// Failure passes through unchanged; anything else becomes INTERNAL.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	if f, ok := err.(*Failure); ok {
		return f
	}
	return NewFailure(FailureKindInternal, err.Error())
}
