package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-tools/ticket-dashboard/internal/api/dto"
	"github.com/helpdesk-tools/ticket-dashboard/internal/api/view"
	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
	"github.com/helpdesk-tools/ticket-dashboard/internal/service"
)

// UsersHandler serves the admin's user provisioning form.
type UsersHandler struct {
	form  *service.UserForm
	views *view.Renderer
	now   func() time.Time
}

// NewUsersHandler constructs handler.
func NewUsersHandler(form *service.UserForm, views *view.Renderer) *UsersHandler {
	return &UsersHandler{form: form, views: views, now: time.Now}
}

// Form GET /admin-management.
func (h *UsersHandler) Form(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, fiber.Map{})
}

// Create POST /admin-management.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return h.render(c, fiber.StatusBadRequest, fiber.Map{"error": service.MsgFieldsRequired})
	}

	err := h.form.Submit(c.UserContext(), service.UserFields{
		Username: req.Username,
		Email:    req.Email,
		Role:     domain.Role(req.Role),
		Password: req.Password,
	})
	if err == nil {
		return h.render(c, fiber.StatusOK, fiber.Map{"success": service.MsgUserAdded})
	}

	var submitErr *service.SubmitError
	if !errors.As(err, &submitErr) {
		return err
	}
	return h.render(c, submitStatus(submitErr.Kind), fiber.Map{"error": submitErr.Message})
}

func (h *UsersHandler) render(c *fiber.Ctx, status int, data fiber.Map) error {
	fields := h.form.Fields()
	// The password is never written back into the page.
	formView := dto.UserFormView{
		Username:   fields.Username,
		Email:      fields.Email,
		Role:       string(fields.Role),
		Submitting: h.form.Submitting(),
	}
	if fields.Password != "" {
		formView.Strength = string(service.PasswordStrength(fields.Password))
	}
	data["form"] = formView
	roles := []string{}
	for _, r := range domain.Roles() {
		roles = append(roles, string(r))
	}
	data["roles"] = roles
	return h.views.HTML(c, status, view.PageUsers, pageData(c, h.now(), data))
}

func submitStatus(kind service.SubmitErrorKind) int {
	switch kind {
	case service.SubmitTransport:
		return fiber.StatusBadGateway
	case service.SubmitBusy:
		return fiber.StatusConflict
	case service.SubmitValidation:
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusBadRequest
}
