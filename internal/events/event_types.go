package events

import (
	"time"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionStarted       EventType = "session_started"
	EventSessionEnded         EventType = "session_ended"
	EventTicketsPageLoaded    EventType = "tickets_page_loaded"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventTicketStatusReverted EventType = "ticket_status_reverted"
	EventTicketNotified       EventType = "ticket_notified"
	EventUserProvisioned      EventType = "user_provisioned"
)

// Event represents something the operator did through the dashboard.
type Event struct {
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SessionPayload describes a login.
type SessionPayload struct {
	Role domain.Role `json:"role"`
}

// PageLoadedPayload describes a completed page fetch.
type PageLoadedPayload struct {
	Page      int  `json:"page"`
	Received  int  `json:"received"`
	Exhausted bool `json:"exhausted"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// UserProvisionedPayload payload.
type UserProvisionedPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// New stamps an event with the current time.
func New(eventType EventType, ticketID string, payload interface{}) Event {
	return Event{Type: eventType, TicketID: ticketID, Timestamp: time.Now().UTC(), Payload: payload}
}
