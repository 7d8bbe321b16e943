package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
)

const principalKey = "auth_principal"

// Principal represents the operator allowed through a guard.
type Principal struct {
	Role     domain.Role
	Identity Identity
}

// PrincipalFromContext retrieves the principal set by RequireRole.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
