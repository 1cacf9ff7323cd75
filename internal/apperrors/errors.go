package apperrors

import (
	"fmt"
	"strings"
)

// ErrNotFound represents an error when a requested record is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewClaimNotFoundError creates a specific error for when a claim is not found.
func NewClaimNotFoundError(claimUUID string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "claim",
		ID:       claimUUID,
	}
}

// ErrValidation is returned when input data fails validation before a write.
// Fields holds one message per invalid field, in detection order.
type ErrValidation struct {
	Fields []string
}

// Error implements the error interface.
func (e *ErrValidation) Error() string {
	return strings.Join(e.Fields, "; ")
}

// Is allows for error checking with errors.Is().
func (e *ErrValidation) Is(target error) bool {
	_, ok := target.(*ErrValidation)
	return ok
}

// NewValidationError creates an ErrValidation from per-field messages.
func NewValidationError(fields ...string) *ErrValidation {
	return &ErrValidation{Fields: fields}
}

// ErrBackendUnavailable is returned when the central TRRCMS backend cannot be
// reached or answers with a server-side failure.
type ErrBackendUnavailable struct {
	URL        string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *ErrBackendUnavailable) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend request to %s failed with HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("backend unreachable at %s: %v", e.URL, e.Cause)
}

// Is allows for error checking with errors.Is().
func (e *ErrBackendUnavailable) Is(target error) bool {
	_, ok := target.(*ErrBackendUnavailable)
	return ok
}

// Unwrap exposes the underlying transport error, if any.
func (e *ErrBackendUnavailable) Unwrap() error {
	return e.Cause
}

// NewBackendUnavailableError creates an ErrBackendUnavailable. StatusCode is
// zero when the request never reached the backend.
func NewBackendUnavailableError(url string, statusCode int, cause error) *ErrBackendUnavailable {
	return &ErrBackendUnavailable{
		URL:        url,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// ErrUnauthorized is returned when the backend rejects the session token or
// the login credentials.
type ErrUnauthorized struct {
	Reason string
}

// Error implements the error interface.
func (e *ErrUnauthorized) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unauthorized: %s", e.Reason)
	}
	return "unauthorized"
}

// Is allows for error checking with errors.Is().
func (e *ErrUnauthorized) Is(target error) bool {
	_, ok := target.(*ErrUnauthorized)
	return ok
}

// NewUnauthorizedError creates an ErrUnauthorized with a reason.
func NewUnauthorizedError(reason string) *ErrUnauthorized {
	return &ErrUnauthorized{Reason: reason}
}

// ErrStatusTransition is returned when a claim status change is not allowed
// by the workflow transition table.
type ErrStatusTransition struct {
	From string
	To   string
}

// Error implements the error interface.
func (e *ErrStatusTransition) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}

// Is allows for error checking with errors.Is().
func (e *ErrStatusTransition) Is(target error) bool {
	_, ok := target.(*ErrStatusTransition)
	return ok
}
