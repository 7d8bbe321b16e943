package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
	"github.com/helpdesk-tools/ticket-dashboard/internal/events"
	apperrors "github.com/helpdesk-tools/ticket-dashboard/pkg/util/errorutil"
)

// Messages shown after a submission.
const (
	MsgUserAdded      = "User added successfully!"
	MsgDuplicateEmail = "The email is already registered. Try another."
	MsgInvalidEmail   = "Please enter a valid email address."
	MsgSubmitFailed   = "An error occurred. Please try again."
	MsgFieldsRequired = "All fields are required."
	MsgSubmitPending  = "A submission is already in progress."
)

// Backend details the form recognizes.
const (
	detailUserExists   = "User already exists"
	detailInvalidEmail = "Invalid email: "
)

// SubmitErrorKind classifies a failed submission.
type SubmitErrorKind string

const (
	SubmitValidation     SubmitErrorKind = "validation"
	SubmitDuplicateEmail SubmitErrorKind = "duplicate_email"
	SubmitInvalidEmail   SubmitErrorKind = "invalid_email"
	SubmitRejected       SubmitErrorKind = "rejected"
	SubmitTransport      SubmitErrorKind = "transport"
	SubmitBusy           SubmitErrorKind = "busy"
)

// SubmitError is returned by UserForm.Submit. Message is ready for display.
type SubmitError struct {
	Kind    SubmitErrorKind
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *SubmitError) Unwrap() error { return e.Err }

// UserFields are the form inputs.
type UserFields struct {
	Username string
	Email    string
	Role     domain.Role
	Password string
}

// DefaultUserFields is the blank form.
func DefaultUserFields() UserFields {
	return UserFields{Role: domain.RoleAdmin}
}

// UserForm is the admin's user provisioning form.
type UserForm struct {
	backend UserBackend
	events  events.Dispatcher
	logger  *zap.Logger

	mu         sync.Mutex
	fields     UserFields
	submitting bool
	// generation is bumped by Reset; a submit started before it leaves the
	// form alone when it completes.
	generation uint64
}

// NewUserForm returns a blank form.
func NewUserForm(backend UserBackend, dispatcher events.Dispatcher, logger *zap.Logger) *UserForm {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserForm{backend: backend, events: dispatcher, logger: logger, fields: DefaultUserFields()}
}

// Fields returns the current inputs.
func (f *UserForm) Fields() UserFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Submitting reports whether a submission is in flight.
func (f *UserForm) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Strength rates the password currently in the form.
func (f *UserForm) Strength() domain.PasswordStrength {
	return PasswordStrength(f.Fields().Password)
}

// Submit sends fields to the backend. On success the form is cleared; on any
// failure the entered values are kept and a *SubmitError is returned.
func (f *UserForm) Submit(ctx context.Context, fields UserFields) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return &SubmitError{Kind: SubmitBusy, Message: MsgSubmitPending}
	}
	f.fields = fields
	if err := validateUserFields(fields); err != nil {
		f.mu.Unlock()
		return err
	}
	f.submitting = true
	gen := f.generation
	f.mu.Unlock()

	err := f.backend.CreateUser(ctx, domain.NewUserRequest{
		Username: fields.Username,
		Email:    fields.Email,
		Role:     fields.Role,
		Password: fields.Password,
	})

	f.mu.Lock()
	stale := gen != f.generation
	if !stale {
		f.submitting = false
		if err == nil {
			f.fields = DefaultUserFields()
		}
	}
	f.mu.Unlock()

	if err != nil {
		submitErr := classifySubmitError(err, fields.Email)
		f.logger.Info("user provisioning failed",
			zap.String("email", fields.Email),
			zap.String("kind", string(submitErr.Kind)),
			zap.Error(err))
		return submitErr
	}

	if stale {
		f.logger.Info("user provisioned after form reset", zap.String("email", fields.Email))
		return nil
	}
	_ = f.events.Publish(ctx, events.New(events.EventUserProvisioned, "", events.UserProvisionedPayload{
		Email: fields.Email,
		Role:  fields.Role,
	}))
	return nil
}

// Reset clears the form.
func (f *UserForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = DefaultUserFields()
	f.submitting = false
	f.generation++
}

func validateUserFields(fields UserFields) *SubmitError {
	if strings.TrimSpace(fields.Username) == "" || strings.TrimSpace(fields.Email) == "" || fields.Password == "" {
		return &SubmitError{Kind: SubmitValidation, Message: MsgFieldsRequired}
	}
	if !fields.Role.Valid() {
		return &SubmitError{
			Kind:    SubmitValidation,
			Message: "Unknown role.",
			Err:     apperrors.NewValidationError("unknown role", map[string]any{"role": string(fields.Role)}),
		}
	}
	return nil
}

func classifySubmitError(err error, email string) *SubmitError {
	if apperrors.IsTransport(err) {
		return &SubmitError{Kind: SubmitTransport, Message: MsgSubmitFailed, Err: err}
	}
	detail, _, ok := apperrors.BackendDetail(err)
	switch {
	case ok && detail == detailUserExists:
		return &SubmitError{Kind: SubmitDuplicateEmail, Message: MsgDuplicateEmail, Err: err}
	case ok && detail == detailInvalidEmail+email:
		return &SubmitError{Kind: SubmitInvalidEmail, Message: MsgInvalidEmail, Err: err}
	}
	return &SubmitError{Kind: SubmitRejected, Message: MsgSubmitFailed, Err: err}
}

// PasswordStrength rates a password. It is advisory and never blocks a submit.
func PasswordStrength(password string) domain.PasswordStrength {
	if len([]rune(password)) < 6 {
		return domain.PasswordWeak
	}
	// Only ASCII capitals and digits count.
	var upper, digit bool
	for _, r := range password {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		}
	}
	if upper && digit {
		return domain.PasswordStrong
	}
	return domain.PasswordMedium
}
