package domain

import "fmt"

// Role enumerates dashboard roles. Comparison is exact; no role inherits another.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleTechTeam Role = "Tech Team"
	RoleUser     Role = "User"
)

// LoginPath is where unauthenticated or mismatched callers are sent.
const LoginPath = "/login"

// Roles lists every valid role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleTechTeam, RoleUser}
}

// ParseRole maps the backend's role string onto the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleTechTeam, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// LandingPath returns the dashboard page for the role.
func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return "/pages/admin-main-dashboard"
	case RoleTechTeam:
		return "/pages/techteam-dashboard"
	case RoleUser:
		return "/pages/user-dashboard"
	}
	return LoginPath
}

// Session is the client-side authentication state. The zero value means no session.
type Session struct {
	Token string
	Role  Role
}

// Present reports whether both halves of the session are set.
func (s Session) Present() bool {
	return s.Token != "" && s.Role != ""
}
