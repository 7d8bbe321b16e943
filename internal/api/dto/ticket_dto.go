package dto

// SortRequest selects a sort criterion.
type SortRequest struct {
	Criterion string `form:"criterion"`
}

// StatusRequest changes a ticket's status.
type StatusRequest struct {
	Status string `form:"status"`
}

// TicketView is a ticket card. DescriptionHTML is already sanitized Markdown output.
type TicketView struct {
	ID              string
	Subject         string
	DescriptionHTML string
	Priority        string
	Status          string
	Category        string
	Subcategory     string
	Email           string
	Department      string
	CreatedAt       string
	CreatedAgo      string
	Notifying       bool
}
