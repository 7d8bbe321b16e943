package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestBackendDetail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantDetail string
		wantStatus int
		wantOK     bool
	}{
		{"backend", NewBackendError(http.StatusBadRequest, "User already exists"), "User already exists", http.StatusBadRequest, true},
		{"wrapped backend", fmt.Errorf("create user: %w", NewBackendError(http.StatusNotFound, "")), "", http.StatusNotFound, true},
		{"transport", NewTransportError(errors.New("connection refused")), "", 0, false},
		{"plain", errors.New("boom"), "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, status, ok := BackendDetail(tt.err)
			if detail != tt.wantDetail || status != tt.wantStatus || ok != tt.wantOK {
				t.Errorf("BackendDetail() = %q, %d, %v", detail, status, ok)
			}
		})
	}
}

func TestBackendErrorMessageFallsBackToStatusText(t *testing.T) {
	if got := NewBackendError(http.StatusBadGateway, "").Error(); got != "Bad Gateway" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsTransportAndHasCode(t *testing.T) {
	err := fmt.Errorf("list tickets: %w", NewTransportError(errors.New("timeout")))
	if !IsTransport(err) {
		t.Error("wrapped transport error not recognized")
	}
	if IsTransport(NewBackendError(http.StatusInternalServerError, "db")) {
		t.Error("backend error reported as transport")
	}
	if !HasCode(NewConflict("busy", nil), CodeConflict) {
		t.Error("conflict code lost")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Error("plain error carries a code")
	}
}

func TestToDomainError(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Error("nil error converted")
	}
	validation := NewValidationError("bad", nil)
	if got := ToDomainError(fmt.Errorf("wrap: %w", validation)); got != validation {
		t.Errorf("ToDomainError did not unwrap: %+v", got)
	}
	cause := errors.New("boom")
	got := ToDomainError(cause)
	if got.Code != CodeInternal || got.HTTPStatus != http.StatusInternalServerError || !errors.Is(got, cause) {
		t.Errorf("ToDomainError(plain) = %+v", got)
	}
}
