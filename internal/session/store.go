// Package session holds the dashboard's single authentication state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
)

// Keys names the two storage entries a session occupies.
type Keys struct {
	Token string
	Role  string
}

// DefaultKeys matches the names the web client used.
var DefaultKeys = Keys{Token: "token", Role: "userRole"}

// Store is the process-wide source of truth for the session.
type Store struct {
	mu      sync.RWMutex
	current domain.Session

	storage Storage
	keys    Keys
	logger  *zap.Logger
}

// NewStore builds an empty, unauthenticated store. Call Initialize to load
// persisted state.
func NewStore(storage Storage, keys Keys, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: storage, keys: keys, logger: logger}
}

// Initialize reads the persisted token and role. Anything other than a complete
// session with a known role leaves the store unauthenticated.
func (s *Store) Initialize(ctx context.Context) error {
	values, err := s.storage.Load(ctx, s.keys.Token, s.keys.Role)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	token, hasToken := values[s.keys.Token]
	rawRole, hasRole := values[s.keys.Role]
	hasToken = hasToken && token != ""
	hasRole = hasRole && rawRole != ""

	var loaded domain.Session
	switch {
	case hasToken && hasRole:
		role, err := domain.ParseRole(rawRole)
		if err != nil {
			s.logger.Warn("persisted session has unknown role; starting unauthenticated", zap.String("role", rawRole))
			break
		}
		loaded = domain.Session{Token: token, Role: role}
	case hasToken || hasRole:
		s.logger.Warn("persisted session is partial; starting unauthenticated",
			zap.Bool("token_present", hasToken),
			zap.Bool("role_present", hasRole))
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return nil
}

// Login persists token and role together, then makes them current.
func (s *Store) Login(ctx context.Context, token string, role domain.Role) error {
	if token == "" {
		return errors.New("session token is empty")
	}
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Save(ctx, map[string]string{
		s.keys.Token: token,
		s.keys.Role:  string(role),
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.current = domain.Session{Token: token, Role: role}
	return nil
}

// Logout removes both persisted keys, then forgets the session in memory.
// When storage fails the session stays in place so the logout can be retried.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Delete(ctx, s.keys.Token, s.keys.Role); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.current = domain.Session{}
	return nil
}

// IsAuthenticated reports whether a complete session is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Present()
}

// CurrentRole returns the session's role, if any.
func (s *Store) CurrentRole() (domain.Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.current.Present() {
		return "", false
	}
	return s.current.Role, true
}

// Token returns the session token or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Session returns a copy of the current session.
func (s *Store) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Ping checks the backing storage.
func (s *Store) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}
