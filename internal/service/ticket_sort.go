package service

import (
	"sort"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
	apperrors "github.com/helpdesk-tools/ticket-dashboard/pkg/util/errorutil"
)

// SortCriterion names a ticket ordering as labelled in the sort menu.
type SortCriterion string

const (
	SortByCreatedAt SortCriterion = "Date created"
	SortByPriority  SortCriterion = "Priority"
	SortByStatus    SortCriterion = "Status"
)

// SortCriteria lists the menu entries in display order.
func SortCriteria() []SortCriterion {
	return []SortCriterion{SortByCreatedAt, SortByPriority, SortByStatus}
}

// ticketLess orders by the raw field text; absent fields are "" and sort first.
// Dates compare as instants, with missing or bad dates at the epoch.
func ticketLess(criterion SortCriterion) (func(a, b domain.Ticket) bool, error) {
	switch criterion {
	case SortByPriority:
		return func(a, b domain.Ticket) bool { return a.Priority < b.Priority }, nil
	case SortByStatus:
		return func(a, b domain.Ticket) bool { return a.Status < b.Status }, nil
	case SortByCreatedAt:
		return func(a, b domain.Ticket) bool {
			ta, _ := a.CreatedTime()
			tb, _ := b.CreatedTime()
			return ta.Before(tb)
		}, nil
	}
	return nil, apperrors.NewValidationError("unknown sort criterion", map[string]any{"criterion": string(criterion)})
}

func sortedCopy(tickets []domain.Ticket, less func(a, b domain.Ticket) bool) []domain.Ticket {
	out := append([]domain.Ticket(nil), tickets...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
