package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapsConflictToBadRequest(t *testing.T) {
	err := Conflict(CodeCapacityExceeded, "group capacity exceeded")
	if err.HTTPStatus() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", err.HTTPStatus())
	}
}

func TestHTTPStatusByKind(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindValidation:   http.StatusBadRequest,
		KindForbidden:    http.StatusForbidden,
		KindUnauthorized: http.StatusUnauthorized,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := New(kind, "x").HTTPStatus(); got != want {
			t.Errorf("kind %d: expected %d, got %d", kind, want, got)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := Conflict(CodeAlreadyGrouped, "lead already belongs to a group")
	wrapped := fmt.Errorf("attach: %w", base)

	if !Is(wrapped, KindConflict) {
		t.Fatal("expected wrapped error to keep conflict kind")
	}
	if !HasCode(wrapped, CodeAlreadyGrouped) {
		t.Fatal("expected wrapped error to keep its code")
	}
	if HasCode(wrapped, CodeCapacityExceeded) {
		t.Fatal("unexpected code match")
	}
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("load lead", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected internal error to unwrap to its cause")
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("expected plain error to have unknown kind")
	}
}
