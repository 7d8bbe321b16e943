package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-tools/ticket-dashboard/internal/api/dto"
	"github.com/helpdesk-tools/ticket-dashboard/internal/api/view"
	"github.com/helpdesk-tools/ticket-dashboard/internal/events"
	"github.com/helpdesk-tools/ticket-dashboard/internal/service"
)

const recentActivityLimit = 10

// DashboardHandler serves the three role landing pages.
type DashboardHandler struct {
	activity *service.ActivityService
	views    *view.Renderer
	now      func() time.Time
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(activity *service.ActivityService, views *view.Renderer) *DashboardHandler {
	return &DashboardHandler{activity: activity, views: views, now: time.Now}
}

// Admin GET /pages/admin-main-dashboard.
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	return h.landing(c, "Admin Dashboard", []dto.NavLink{
		{Label: "Manage Users", Href: "/admin-management"},
		{Label: "Manage Tickets", Href: "/support-page"},
	})
}

// TechTeam GET /pages/techteam-dashboard.
func (h *DashboardHandler) TechTeam(c *fiber.Ctx) error {
	return h.landing(c, "Tech Team Dashboard", []dto.NavLink{
		{Label: "View Tickets", Href: "/pages/tickets"},
	})
}

// User GET /pages/user-dashboard.
func (h *DashboardHandler) User(c *fiber.Ctx) error {
	return h.landing(c, "User Dashboard", nil)
}

func (h *DashboardHandler) landing(c *fiber.Ctx, heading string, links []dto.NavLink) error {
	now := h.now()
	var activity []dto.ActivityView
	if h.activity != nil {
		for _, e := range h.activity.Recent(recentActivityLimit) {
			activity = append(activity, dto.ActivityView{Label: describeEvent(e), Ago: view.Ago(e.Timestamp, now)})
		}
	}
	return h.views.HTML(c, fiber.StatusOK, view.PageLanding, pageData(c, now, fiber.Map{
		"heading":  heading,
		"links":    links,
		"activity": activity,
	}))
}

func describeEvent(e events.Event) string {
	switch p := e.Payload.(type) {
	case events.SessionPayload:
		return fmt.Sprintf("Signed in as %s", p.Role)
	case events.TicketStatusChangedPayload:
		if e.Type == events.EventTicketStatusReverted {
			return fmt.Sprintf("Status change on ticket %s failed; restored %s", e.TicketID, p.NewStatus)
		}
		return fmt.Sprintf("Ticket %s moved to %s", e.TicketID, p.NewStatus)
	case events.UserProvisionedPayload:
		return fmt.Sprintf("Added %s as %s", p.Email, p.Role)
	}
	if e.Type == events.EventTicketNotified {
		return fmt.Sprintf("Notified requester of ticket %s", e.TicketID)
	}
	return string(e.Type)
}
