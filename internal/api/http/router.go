package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-tools/ticket-dashboard/internal/api/http/handlers"
	"github.com/helpdesk-tools/ticket-dashboard/internal/auth"
	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
)

// Ticket management mount points.
const (
	AdminTicketsPath    = "/support-page"
	TechTeamTicketsPath = "/pages/tickets"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Session   *handlers.SessionHandler
	Dashboard *handlers.DashboardHandler
	Tickets   *handlers.TicketsHandler
	Users     *handlers.UsersHandler
	Sessions  auth.SessionReader
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Get("/", cfg.Session.Root)
	app.Get(domain.LoginPath, cfg.Session.LoginPage)
	app.Post(domain.LoginPath, cfg.Session.Login)
	app.Post("/logout", cfg.Session.Logout)

	admin := auth.RequireRole(cfg.Sessions, domain.RoleAdmin)
	techTeam := auth.RequireRole(cfg.Sessions, domain.RoleTechTeam)
	user := auth.RequireRole(cfg.Sessions, domain.RoleUser)

	app.Get(domain.RoleAdmin.LandingPath(), admin, cfg.Dashboard.Admin)
	app.Get(domain.RoleTechTeam.LandingPath(), techTeam, cfg.Dashboard.TechTeam)
	app.Get(domain.RoleUser.LandingPath(), user, cfg.Dashboard.User)

	app.Get("/admin-management", admin, cfg.Users.Form)
	app.Post("/admin-management", admin, cfg.Users.Create)

	cfg.Tickets.Register(app.Group(AdminTicketsPath, admin), AdminTicketsPath)
	cfg.Tickets.Register(app.Group(TechTeamTicketsPath, techTeam), TechTeamTicketsPath)
}
