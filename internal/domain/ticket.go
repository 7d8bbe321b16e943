package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketStatuses lists the statuses an operator can pick.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed}
}

// Valid reports whether s is a selectable status.
func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// Ticket is a support request as served by the backend. Absent fields are empty strings.
type Ticket struct {
	ID          string         `json:"id"`
	Subject     string         `json:"subject"`
	Description string         `json:"description"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	Category    string         `json:"category"`
	Subcategory string         `json:"subcategory"`
	Email       string         `json:"email"`
	Department  string         `json:"department"`
	CreatedAt   string         `json:"created_at"`
}

// UnmarshalJSON accepts the id under either "_id" or "id".
func (t *Ticket) UnmarshalJSON(data []byte) error {
	type plain Ticket
	var aux struct {
		plain
		MongoID   string          `json:"_id"`
		CreatedAt json.RawMessage `json:"created_at"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Ticket(aux.plain)
	if t.ID == "" {
		t.ID = aux.MongoID
	}
	t.CreatedAt = ""
	var created string
	if len(aux.CreatedAt) > 0 && json.Unmarshal(aux.CreatedAt, &created) == nil {
		t.CreatedAt = created
	}
	return nil
}

// DisplayStatus falls back to Open when the backend sent none.
func (t Ticket) DisplayStatus() TicketStatus {
	if t.Status == "" {
		return TicketStatusOpen
	}
	return t.Status
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// CreatedTime parses CreatedAt. Missing or unparseable values yield the Unix epoch.
func (t Ticket) CreatedTime() (time.Time, bool) {
	raw := strings.TrimSpace(t.CreatedAt)
	if raw != "" {
		for _, layout := range createdAtLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed, true
			}
		}
	}
	return time.Unix(0, 0).UTC(), false
}
