package engine

import (
	"errors"
	"fmt"
)

// ValidationErrorCode categorizes contract violations by callers.
type ValidationErrorCode string

const (
	// ErrCodeBadDelta indicates Update received a non-finite, zero, or
	// negative deltaTime.
	ErrCodeBadDelta ValidationErrorCode = "BAD_DELTA"

	// ErrCodeBadTag indicates a malformed tag string.
	ErrCodeBadTag ValidationErrorCode = "BAD_TAG"

	// ErrCodeBadMessage indicates a malformed message (nil sender, blank
	// name, bad receiver tag, unknown stage).
	ErrCodeBadMessage ValidationErrorCode = "BAD_MESSAGE"

	// ErrCodeNilRoutine indicates a nil routine was passed to Add/AddNow.
	ErrCodeNilRoutine ValidationErrorCode = "NIL_ROUTINE"

	// ErrCodeDepthExceeded indicates an immediate insertion exceeded the
	// configured nesting depth. The offending insertion is dropped; the
	// frame continues.
	ErrCodeDepthExceeded ValidationErrorCode = "DEPTH_EXCEEDED"

	// ErrCodeTornDown indicates use of an engine after Teardown.
	ErrCodeTornDown ValidationErrorCode = "TORN_DOWN"
)

// ValidationError is returned for programmer errors at the API boundary.
// These are never recovered locally - they indicate a caller bug - and the
// engine performs no state mutation before returning one.
type ValidationError struct {
	// Code identifies the violation category.
	Code ValidationErrorCode

	// Op names the public operation that rejected the call.
	Op string

	// Err is the underlying cause, if any.
	Err error

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Code, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDepthExceeded reports whether err is a nesting-depth rejection.
func IsDepthExceeded(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == ErrCodeDepthExceeded
	}
	return false
}

func newValidationError(code ValidationErrorCode, op, msg string, cause error) *ValidationError {
	return &ValidationError{Code: code, Op: op, Message: msg, Err: cause}
}

// Fault describes a runtime failure inside a user-supplied hook: a panic
// recovered at the scheduler boundary. The faulted routine is stopped; the
// rest of the frame's bookkeeping runs to completion.
type Fault struct {
	// Frame is the frame during which the fault occurred.
	Frame int64

	// Phase names the frame phase that invoked the hook.
	Phase Phase

	// Unit is the faulted routine's ID, if the fault is unit-scoped.
	Unit string

	// Value is the recovered panic value.
	Value any
}

// Error renders the fault for logs. Fault is reported through the
// configured FaultHandler rather than returned from Update.
func (f Fault) Error() string {
	return fmt.Sprintf("routine fault: frame=%d phase=%s unit=%s: %v", f.Frame, f.Phase, f.Unit, f.Value)
}

// FaultHandler receives per-routine runtime faults.
type FaultHandler func(Fault)
