package http

import (
	"context"
	"errors"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-dashboard/internal/api/view"
	"github.com/helpdesk-tools/ticket-dashboard/internal/observability"
	apperrors "github.com/helpdesk-tools/ticket-dashboard/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, views *view.Renderer, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics, views))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, views *view.Renderer) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(domainErr))
				}
				err = renderError(c, views, domainErr)
			}
		}()
		return c.Next()
	}
}

// toDomainError keeps fiber's own errors (404, 405) at their status.
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.NewDomainError("HTTP_"+strconv.Itoa(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func renderError(c *fiber.Ctx, views *view.Renderer, domainErr *apperrors.DomainError) error {
	data := fiber.Map{
		"status":     domainErr.HTTPStatus,
		"code":       domainErr.Code,
		"message":    domainErr.Message,
		"request_id": c.GetRespHeader(observability.RequestIDHeader),
	}
	if views == nil {
		return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": data})
	}
	if renderErr := views.HTML(c, domainErr.HTTPStatus, view.PageError, data); renderErr != nil {
		return c.Status(domainErr.HTTPStatus).SendString(domainErr.Message)
	}
	return nil
}
