package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundMessages(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"with id", NewNotFoundError("Building", "B1"), "Building with ID B1 not found"},
		{"without id", NewNotFoundError("Building", nil), "Building not found"},
		{"claim helper", NewClaimNotFoundError("c1"), "claim with ID c1 not found"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorsIsMatchesByType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"not found", NewClaimNotFoundError("c1"), &ErrNotFound{}},
		{"validation", NewValidationError("x"), &ErrValidation{}},
		{"backend", NewBackendUnavailableError("http://x", 503, nil), &ErrBackendUnavailable{}},
		{"unauthorized", NewUnauthorizedError("token expired"), &ErrUnauthorized{}},
		{"transition", &ErrStatusTransition{From: "draft", To: "approved"}, &ErrStatusTransition{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%T, %T) = false", tt.err, tt.target)
			}
		})
	}

	if errors.Is(NewValidationError("x"), &ErrNotFound{}) {
		t.Error("different error types must not match")
	}
}

func TestValidationJoinsFields(t *testing.T) {
	t.Parallel()
	err := NewValidationError("Missing required field: unit_id", "Missing required field: person_ids")
	want := "Missing required field: unit_id; Missing required field: person_ids"
	if err.Error() != want {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestBackendUnavailableUnwrapsCause(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection refused")
	err := NewBackendUnavailableError("http://backend", 0, cause)
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
	if err.Error() != "backend unreachable at http://backend: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}

	withStatus := NewBackendUnavailableError("http://backend", 503, nil)
	if withStatus.Error() != "backend request to http://backend failed with HTTP 503" {
		t.Errorf("Error() = %q", withStatus.Error())
	}
}

func TestStatusTransitionMessage(t *testing.T) {
	t.Parallel()
	err := &ErrStatusTransition{From: "draft", To: "approved"}
	if err.Error() != "cannot change status from draft to approved" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestTypedErrorsSurviveWrapping(t *testing.T) {
	t.Parallel()
	wrapped := fmt.Errorf("load claim: %w", NewClaimNotFoundError("c1"))

	var notFound *ErrNotFound
	if !errors.As(wrapped, &notFound) {
		t.Fatal("errors.As should find the typed error through the wrap")
	}
	if notFound.ID != "c1" {
		t.Errorf("ID = %v", notFound.ID)
	}
}
