package handlers

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-dashboard/internal/api/dto"
	"github.com/helpdesk-tools/ticket-dashboard/internal/api/view"
	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
	"github.com/helpdesk-tools/ticket-dashboard/internal/service"
	apperrors "github.com/helpdesk-tools/ticket-dashboard/pkg/util/errorutil"
)

// Alert texts for ticket actions.
const (
	MsgLoadFailed    = "Failed to load tickets. Please try again later."
	MsgStatusFailed  = "Failed to update ticket status. Please try again."
	MsgStatusBusy    = "Another status update is still in progress."
	MsgStatusUnknown = "Unknown ticket status."
	MsgSortUnknown   = "Unknown sort option."
	MsgNotifySent    = "Email notification sent successfully!"
	MsgNotifyFailed  = "Failed to send email notification. Please try again."
	MsgNotifyPending = "A notification for this ticket is already being sent."
)

// TicketsHandler serves the ticket management page.
type TicketsHandler struct {
	tickets *service.TicketCollection
	views   *view.Renderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketCollection, views *view.Renderer, logger *zap.Logger) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, views: views, logger: logger, now: time.Now}
}

// Register mounts the page and its actions on a guarded group rooted at basePath.
func (h *TicketsHandler) Register(group fiber.Router, basePath string) {
	group.Get("/", h.list(basePath))
	group.Post("/more", h.more(basePath))
	group.Post("/sort", h.sort(basePath))
	group.Post("/tickets/:id/status", h.updateStatus(basePath))
	group.Post("/tickets/:id/notify", h.notify(basePath))
}

func (h *TicketsHandler) list(basePath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data := fiber.Map{}
		if !h.tickets.Loaded() {
			if _, err := h.tickets.FetchNextPage(c.UserContext()); err != nil {
				data["alert"] = &dto.Alert{Kind: alertError, Message: MsgLoadFailed}
			}
		}

		now := h.now()
		tickets := h.tickets.Tickets()
		views := make([]dto.TicketView, 0, len(tickets))
		for _, t := range tickets {
			views = append(views, ticketView(t, now, h.tickets.NotifyInFlight(t.ID)))
		}

		data["base_path"] = basePath
		data["tickets"] = views
		data["has_more"] = h.tickets.HasMore()
		data["loading"] = h.tickets.Loading()
		data["updating"] = h.tickets.Updating()
		data["criterion"] = string(h.tickets.Criterion())
		data["criteria"] = sortCriteria()
		data["statuses"] = ticketStatuses()
		return h.views.HTML(c, fiber.StatusOK, view.PageTickets, pageData(c, now, data))
	}
}

func (h *TicketsHandler) more(basePath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := h.tickets.FetchNextPage(c.UserContext()); err != nil {
			setAlert(c, alertError, MsgLoadFailed)
		}
		return seeOther(c, basePath)
	}
}

func (h *TicketsHandler) sort(basePath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.SortRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		if err := h.tickets.SortBy(service.SortCriterion(req.Criterion)); err != nil {
			setAlert(c, alertError, MsgSortUnknown)
		}
		return seeOther(c, basePath)
	}
}

func (h *TicketsHandler) updateStatus(basePath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.StatusRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		err := h.tickets.UpdateStatus(c.UserContext(), ticketID(c), domain.TicketStatus(req.Status))
		switch {
		case err == nil:
		case errors.Is(err, service.ErrUpdateInFlight):
			setAlert(c, alertError, MsgStatusBusy)
		case apperrors.HasCode(err, apperrors.CodeValidation):
			setAlert(c, alertError, MsgStatusUnknown)
		default:
			setAlert(c, alertError, MsgStatusFailed)
		}
		return seeOther(c, basePath)
	}
}

func (h *TicketsHandler) notify(basePath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := h.tickets.Notify(c.UserContext(), ticketID(c))
		switch {
		case err == nil:
			setAlert(c, alertSuccess, MsgNotifySent)
		case errors.Is(err, service.ErrNotifyInFlight):
			setAlert(c, alertError, MsgNotifyPending)
		default:
			setAlert(c, alertError, MsgNotifyFailed)
		}
		return seeOther(c, basePath)
	}
}

func ticketID(c *fiber.Ctx) string {
	raw := c.Params("id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

func ticketView(t domain.Ticket, now time.Time, notifying bool) dto.TicketView {
	v := dto.TicketView{
		ID:              t.ID,
		Subject:         t.Subject,
		DescriptionHTML: view.Markdown(t.Description),
		Priority:        string(t.Priority),
		Status:          string(t.DisplayStatus()),
		Category:        t.Category,
		Subcategory:     t.Subcategory,
		Email:           t.Email,
		Department:      t.Department,
		CreatedAt:       t.CreatedAt,
		Notifying:       notifying,
	}
	if created, ok := t.CreatedTime(); ok {
		v.CreatedAgo = view.Ago(created, now)
	}
	return v
}

func sortCriteria() []string {
	out := []string{}
	for _, c := range service.SortCriteria() {
		out = append(out, string(c))
	}
	return out
}

func ticketStatuses() []string {
	out := []string{}
	for _, s := range domain.TicketStatuses() {
		out = append(out, string(s))
	}
	return out
}
