package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-tools/ticket-dashboard/internal/api/dto"
	"github.com/helpdesk-tools/ticket-dashboard/internal/api/view"
	"github.com/helpdesk-tools/ticket-dashboard/internal/auth"
	"github.com/helpdesk-tools/ticket-dashboard/internal/observability"
)

const alertCookie = "dashboard_alert"

// Alert kinds.
const (
	alertSuccess = "success"
	alertError   = "error"
)

// setAlert stores a message to show once on the next page render.
func setAlert(c *fiber.Ctx, kind, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     alertCookie,
		Value:    url.QueryEscape(kind + "|" + message),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// popAlert reads and clears the pending alert.
func popAlert(c *fiber.Ctx) *dto.Alert {
	raw := c.Cookies(alertCookie)
	if raw == "" {
		return nil
	}
	c.ClearCookie(alertCookie)
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(decoded, "|")
	if !ok || message == "" {
		return nil
	}
	if kind != alertSuccess {
		kind = alertError
	}
	return &dto.Alert{Kind: kind, Message: message}
}

func identityView(p *auth.Principal, now time.Time) dto.IdentityView {
	v := dto.IdentityView{Role: string(p.Role), Email: p.Identity.Email}
	if p.Identity.ExpiresAt != nil {
		v.ExpiresAt = view.Ago(*p.Identity.ExpiresAt, now)
	}
	return v
}

// pageData adds the values every page template expects.
func pageData(c *fiber.Ctx, now time.Time, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	if p, ok := auth.PrincipalFromContext(c); ok {
		data["principal"] = identityView(p, now)
		data["landing_path"] = p.Role.LandingPath()
	}
	if _, set := data["alert"]; !set {
		if a := popAlert(c); a != nil {
			data["alert"] = a
		}
	}
	data["request_id"] = c.GetRespHeader(observability.RequestIDHeader)
	return data
}

func seeOther(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusSeeOther)
}
