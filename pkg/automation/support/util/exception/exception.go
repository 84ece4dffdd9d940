// Package exception provides the error types used across the Maestro
// automation engine. Errors are categorized by kind so that the pipeline
// controller can distinguish fatal stage failures, transient per-item
// failures, configuration problems and concurrency conflicts.
package exception

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind classifies an automation error.
type Kind string

const (
	// KindFatal marks an error that aborts the whole run.
	KindFatal Kind = "FATAL"
	// KindTransient marks a per-item error that must not abort a fan-out batch.
	KindTransient Kind = "TRANSIENT"
	// KindConfig marks a configuration problem detected before a run starts.
	KindConfig Kind = "CONFIG"
	// KindConflict marks a concurrency conflict, such as a second run for a
	// campaign that already has one in flight.
	KindConflict Kind = "CONFLICT"
)

// AutomationError is the error type produced by the automation engine.
// It carries the module where the error occurred, a message, the wrapped
// original error and the failure kind.
type AutomationError struct {
	// Module indicates where the error occurred (e.g. "capability", "pipeline").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// Kind classifies the failure.
	Kind Kind
	// StackTrace is the stack captured when the error was created.
	StackTrace string
}

// New creates a new AutomationError wrapping originalErr.
func New(module, message string, originalErr error, kind Kind) *AutomationError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &AutomationError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		Kind:        kind,
		StackTrace:  string(buf[:n]),
	}
}

// Newf creates a new AutomationError with a formatted message and no cause.
func Newf(module string, kind Kind, format string, a ...interface{}) *AutomationError {
	return New(module, fmt.Sprintf(format, a...), nil, kind)
}

// Error implements the error interface.
func (e *AutomationError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *AutomationError) Unwrap() error {
	return e.OriginalErr
}

// IsFatal reports whether err is classified as fatal. Errors that carry no
// classification are treated as fatal, which keeps unknown failures from
// being silently skipped.
func IsFatal(err error) bool {
	return KindOf(err) == KindFatal
}

// IsTransient reports whether err is classified as transient.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}

// IsConfig reports whether err is classified as a configuration error.
func IsConfig(err error) bool {
	return KindOf(err) == KindConfig
}

// IsConflict reports whether err is classified as a concurrency conflict.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// KindOf returns the kind of the first AutomationError in the chain, or
// KindFatal when the chain carries none.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *AutomationError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindFatal
}

// ExtractMessage extracts a clean message string from an error.
// For AutomationError it returns the Message field; otherwise Error().
func ExtractMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AutomationError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// StackOf returns the captured stack trace of the first AutomationError in
// the chain, or "" when none is present.
func StackOf(err error) string {
	var ae *AutomationError
	if errors.As(err, &ae) {
		return ae.StackTrace
	}
	return ""
}

// ErrOptimisticLock is a sentinel error indicating that a session update lost
// an optimistic locking race.
var ErrOptimisticLock = errors.New("optimistic locking failure")

// NewOptimisticLockError creates an AutomationError wrapping ErrOptimisticLock.
func NewOptimisticLockError(module, message string, originalErr error) *AutomationError {
	errToWrap := ErrOptimisticLock
	if originalErr != nil {
		errToWrap = errors.Join(ErrOptimisticLock, originalErr)
	}
	return New(module, message, errToWrap, KindFatal)
}

// IsOptimisticLock reports whether err indicates an optimistic locking failure.
func IsOptimisticLock(err error) bool {
	return errors.Is(err, ErrOptimisticLock)
}
