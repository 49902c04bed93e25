package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("Cheque", 42)
	if err.Error() != "Cheque with ID 42 not found" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound kind")
	}
}

func TestErrorUnwrapsKindAndReason(t *testing.T) {
	err := fmt.Errorf("decline: %w", Invalid(ErrEmptyReason, "Decline reason cannot be empty"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput kind")
	}
	if !errors.Is(err, ErrEmptyReason) {
		t.Fatalf("expected ErrEmptyReason reason")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected ErrNotFound")
	}
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Storage("update cheque", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped")
	}
	if KindOf(err) != ErrStorageFailure {
		t.Fatalf("expected storage kind")
	}
	if err.Error() != "update cheque: disk full" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	cases := map[error]error{
		NotFound("Document", 1):                  ErrNotFound,
		Violation(ErrLocked, "locked"):           ErrInvariantViolation,
		Forbidden(errors.New("denied"), "no"):    ErrForbidden,
		Invalid(ErrInvalidStatus, "bad"):         ErrInvalidInput,
		errors.New("plain"):                      ErrStorageFailure,
		fmt.Errorf("wrap: %w", NotFound("X", 2)): ErrNotFound,
	}
	for err, want := range cases {
		if got := KindOf(err); got != want {
			t.Fatalf("KindOf(%v) = %v, want %v", err, got, want)
		}
	}
}

func TestForbiddenKeepsReason(t *testing.T) {
	denied := errors.New("query is not a read-only statement")
	err := Forbidden(denied, "Only SELECT queries are allowed")
	if !errors.Is(err, ErrForbidden) || !errors.Is(err, denied) {
		t.Fatalf("expected kind and reason in chain, got %v", err)
	}
	if err.Error() != "Only SELECT queries are allowed" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
