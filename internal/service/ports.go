package service

import (
	"context"

	"github.com/helpdesk-tools/ticket-dashboard/internal/backend"
	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
)

// TicketBackend is the part of the backend the ticket collection calls.
type TicketBackend interface {
	ListTickets(ctx context.Context, skip, limit int) ([]domain.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus) error
	NotifyTicket(ctx context.Context, id string) error
}

// UserBackend creates users.
type UserBackend interface {
	CreateUser(ctx context.Context, req domain.NewUserRequest) error
}

// LoginBackend exchanges credentials for a session.
type LoginBackend interface {
	Login(ctx context.Context, username, password string) (*backend.LoginResponse, error)
}

// SessionWriter is the mutating half of the session store.
type SessionWriter interface {
	Login(ctx context.Context, token string, role domain.Role) error
	Logout(ctx context.Context) error
}

// Resetter is implemented by per-session state that must not outlive a logout.
type Resetter interface {
	Reset()
}

var (
	_ TicketBackend = (*backend.Client)(nil)
	_ UserBackend   = (*backend.Client)(nil)
	_ LoginBackend  = (*backend.Client)(nil)
)
