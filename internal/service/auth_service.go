package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
	"github.com/helpdesk-tools/ticket-dashboard/internal/events"
	apperrors "github.com/helpdesk-tools/ticket-dashboard/pkg/util/errorutil"
)

// Login messages.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidRole        = "Invalid role"
	MsgServerError        = "Server error, please try again."
	MsgCredentialsMissing = "Email and password are required."
)

// LoginError carries the message the login page shows.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *LoginError) Unwrap() error { return e.Err }

// AuthService runs the login and logout flows against the session store.
type AuthService struct {
	backend  LoginBackend
	sessions SessionWriter
	resets   []Resetter
	events   events.Dispatcher
	logger   *zap.Logger
}

// AuthDependencies encapsulates what the auth service needs.
type AuthDependencies struct {
	Backend  LoginBackend
	Sessions SessionWriter
	// ResetOnLogout is cleared whenever the session ends.
	ResetOnLogout []Resetter
	Events        events.Dispatcher
	Logger        *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	s := &AuthService{
		backend:  deps.Backend,
		sessions: deps.Sessions,
		resets:   deps.ResetOnLogout,
		events:   deps.Events,
		logger:   deps.Logger,
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Login exchanges credentials for a session and returns the landing path for
// the session's role. Failures are returned as *LoginError.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", &LoginError{Message: MsgCredentialsMissing}
	}

	resp, err := s.backend.Login(ctx, username, password)
	if err != nil {
		return "", s.loginFailure(username, err)
	}

	role, err := domain.ParseRole(resp.Role)
	if err != nil {
		s.logger.Warn("login returned unknown role", zap.String("username", username), zap.String("role", resp.Role))
		return "", &LoginError{Message: MsgInvalidRole, Err: err}
	}

	if err := s.sessions.Login(ctx, resp.Token, role); err != nil {
		s.logger.Error("persist session", zap.Error(err))
		return "", &LoginError{Message: MsgServerError, Err: err}
	}

	s.logger.Info("session started", zap.String("username", username), zap.String("role", string(role)))
	_ = s.events.Publish(ctx, events.New(events.EventSessionStarted, "", events.SessionPayload{Role: role}))
	return role.LandingPath(), nil
}

func (s *AuthService) loginFailure(username string, err error) error {
	if apperrors.IsTransport(err) {
		s.logger.Warn("login transport failure", zap.String("username", username), zap.Error(err))
		return &LoginError{Message: MsgServerError, Err: err}
	}
	if detail, status, ok := apperrors.BackendDetail(err); ok {
		s.logger.Info("login rejected", zap.String("username", username), zap.Int("status", status))
		if detail == "" {
			detail = MsgInvalidCredentials
		}
		return &LoginError{Message: detail, Err: err}
	}
	s.logger.Warn("login failed", zap.String("username", username), zap.Error(err))
	return &LoginError{Message: MsgServerError, Err: err}
}

// Logout ends the session and drops every piece of per-session state.
func (s *AuthService) Logout(ctx context.Context) error {
	for _, r := range s.resets {
		r.Reset()
	}
	if err := s.sessions.Logout(ctx); err != nil {
		s.logger.Error("clear session", zap.Error(err))
		return err
	}
	s.logger.Info("session ended")
	_ = s.events.Publish(ctx, events.New(events.EventSessionEnded, "", nil))
	return nil
}
