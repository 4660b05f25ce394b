package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ticketops/helpdesk-service/internal/api/dto"
	"github.com/ticketops/helpdesk-service/internal/observability"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

// RegisterMiddlewares attaches the global stack. The request logger wraps the
// error handler so it observes the status the error handler actually wrote,
// not the default 200 of an aborted handler.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware turns domain errors and panics into the JSON error
// envelope. Handlers return errors; nothing below this layer writes its own
// failure responses.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				writeDomainError(c, logger, metrics, err)
				err = nil
			}
		}()
		return c.Next()
	}
}

func writeDomainError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, err error) {
	domainErr := apperrors.ToDomainError(err)
	metrics.RecordError(domainErr.Code)
	if domainErr.HTTPStatus >= 500 {
		logger.Error("request failed", zap.String("code", domainErr.Code), zap.Error(domainErr))
	}

	c.Status(domainErr.HTTPStatus)
	_ = c.JSON(dto.ErrorResponse{Error: dto.ErrorBody{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Details: domainErr.Details,
	}})
}
