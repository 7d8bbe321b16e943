package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
)

// SessionReader is the view of the session store the guard needs.
type SessionReader interface {
	IsAuthenticated() bool
	CurrentRole() (domain.Role, bool)
	Token() string
}

// Decision is the outcome of a route check.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Authorize grants access only to an authenticated session whose role equals
// required. Everything else is sent to the login page.
func Authorize(sessions SessionReader, required domain.Role) Decision {
	if !sessions.IsAuthenticated() {
		return Decision{Redirect: domain.LoginPath}
	}
	role, ok := sessions.CurrentRole()
	if !ok || role != required {
		return Decision{Redirect: domain.LoginPath}
	}
	return Decision{Allowed: true}
}

// RequireRole guards a route group for exactly one role.
func RequireRole(sessions SessionReader, required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := Authorize(sessions, required)
		if !decision.Allowed {
			return c.Redirect(decision.Redirect, fiber.StatusFound)
		}
		c.Locals(principalKey, &Principal{
			Role:     required,
			Identity: ParseIdentity(sessions.Token()),
		})
		return c.Next()
	}
}
