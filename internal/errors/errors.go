package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Roster error code.
type ErrorCode string

const (
	ErrValidation    ErrorCode = "VALIDATION"     // 400
	ErrDuplicateName ErrorCode = "DUPLICATE_NAME" // 409
	ErrNotFound      ErrorCode = "NOT_FOUND"      // 404
	ErrNetwork       ErrorCode = "NETWORK"        // 502
	ErrIntegrity     ErrorCode = "INTEGRITY"      // 500, contract bug
	ErrLeakWarning   ErrorCode = "LEAK_WARNING"   // non-fatal cleanup failure
	ErrStaleResponse ErrorCode = "STALE_RESPONSE" // discarded, never surfaced
	ErrInternal      ErrorCode = "INTERNAL"       // 500
)

// RosterError represents a structured error with code, status, and details.
type RosterError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *RosterError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 400 error for user-correctable input problems.
// The field name is carried in details so callers can surface it inline.
func NewValidation(field, msg string) *RosterError {
	return &RosterError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
		Details: map[string]any{"field": field},
	}
}

// NewDuplicateName creates a 409 error for case-insensitive name collisions.
func NewDuplicateName(kind, name string) *RosterError {
	return &RosterError{
		Code:    ErrDuplicateName,
		Status:  409,
		Message: fmt.Sprintf("%s named %q already exists", kind, name),
		Details: map[string]any{"kind": kind, "name": name},
	}
}

// NewNotFound creates a 404 error for a missing entity or project.
func NewNotFound(kind, identifier string) *RosterError {
	return &RosterError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewNetwork creates a 502 error wrapping a failed remote call.
// Local state is never rolled back for these; the caller may retry.
func NewNetwork(op string, err error) *RosterError {
	msg := op + " failed"
	if err != nil {
		msg = fmt.Sprintf("%s failed: %v", op, err)
	}
	return &RosterError{
		Code:    ErrNetwork,
		Status:  502,
		Message: msg,
		Details: map[string]any{"op": op},
	}
}

// NewIntegrity creates a 500 error for a broken internal contract, such as a
// reference to a nonexistent entity. The operation is aborted, never patched.
func NewIntegrity(msg string) *RosterError {
	return &RosterError{
		Code:    ErrIntegrity,
		Status:  500,
		Message: msg,
	}
}

// NewLeakWarning wraps a failed temp-asset cleanup. Non-fatal: retried on the
// next project switch and never blocks the user.
func NewLeakWarning(err error) *RosterError {
	msg := "temp asset cleanup failed"
	if err != nil {
		msg = fmt.Sprintf("temp asset cleanup failed: %v", err)
	}
	return &RosterError{
		Code:    ErrLeakWarning,
		Status:  0,
		Message: msg,
	}
}

// NewStaleResponse marks a remote response that arrived after the session
// moved to a newer generation. Logged and discarded, never user-visible.
func NewStaleResponse(op string, got, want uint64) *RosterError {
	return &RosterError{
		Code:    ErrStaleResponse,
		Status:  0,
		Message: fmt.Sprintf("%s response for generation %d arrived in generation %d", op, got, want),
		Details: map[string]any{"op": op, "got": got, "want": want},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *RosterError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &RosterError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a RosterError with the given code.
// Wrapped RosterErrors are unwrapped first.
func Is(err error, code ErrorCode) bool {
	var rErr *RosterError
	if stderrors.As(err, &rErr) {
		return rErr.Code == code
	}
	return false
}
