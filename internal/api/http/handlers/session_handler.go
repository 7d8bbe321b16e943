package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-dashboard/internal/api/dto"
	"github.com/helpdesk-tools/ticket-dashboard/internal/api/view"
	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
	"github.com/helpdesk-tools/ticket-dashboard/internal/service"
)

// SessionHandler serves the login page and logout.
type SessionHandler struct {
	auth   *service.AuthService
	views  *view.Renderer
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionHandler constructs handler.
func NewSessionHandler(authService *service.AuthService, views *view.Renderer, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{auth: authService, views: views, logger: logger, now: time.Now}
}

// Root GET /.
func (h *SessionHandler) Root(c *fiber.Ctx) error {
	return c.Redirect(domain.LoginPath, fiber.StatusFound)
}

// LoginPage GET /login.
func (h *SessionHandler) LoginPage(c *fiber.Ctx) error {
	return h.views.HTML(c, fiber.StatusOK, view.PageLogin, pageData(c, h.now(), nil))
}

// Login POST /login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return h.views.HTML(c, fiber.StatusBadRequest, view.PageLogin, pageData(c, h.now(), fiber.Map{
			"error": service.MsgCredentialsMissing,
		}))
	}

	landing, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		var loginErr *service.LoginError
		if !errors.As(err, &loginErr) {
			return err
		}
		status := fiber.StatusUnauthorized
		if loginErr.Message == service.MsgServerError {
			status = fiber.StatusBadGateway
		}
		return h.views.HTML(c, status, view.PageLogin, pageData(c, h.now(), fiber.Map{
			"error":    loginErr.Message,
			"username": req.Username,
		}))
	}
	return seeOther(c, landing)
}

// Logout POST /logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext()); err != nil {
		return err
	}
	return seeOther(c, domain.LoginPath)
}
