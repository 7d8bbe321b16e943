package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

const (
	CodeTransport  = "TRANSPORT_FAILURE"
	CodeBackend    = "BACKEND_REJECTED"
	CodeValidation = "VALIDATION_FAILED"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL_ERROR"
)

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewTransportError wraps a failure where no response was received from the backend.
func NewTransportError(err error) error {
	return &DomainError{
		Code:       CodeTransport,
		Message:    "backend unreachable",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewBackendError records a structured failure reported by the backend.
func NewBackendError(status int, detail string) error {
	msg := detail
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &DomainError{
		Code:       CodeBackend,
		Message:    msg,
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"status": status, "detail": detail},
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// IsTransport reports whether err means the backend never answered.
func IsTransport(err error) bool {
	return HasCode(err, CodeTransport)
}

// BackendDetail extracts the backend's detail string and HTTP status.
func BackendDetail(err error) (string, int, bool) {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != CodeBackend {
		return "", 0, false
	}
	detail, _ := domainErr.Details["detail"].(string)
	status, _ := domainErr.Details["status"].(int)
	return detail, status, true
}
