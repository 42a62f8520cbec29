package serverutils

import (
	"errors"

	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// envelope. Upstream detail is logged but never sent to the client.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", message, map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": code,
				"error":  err.Error(),
			})
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func statusFor(err error) (int, string) {
	var notFound *apperror.NotFoundError
	var conflict *apperror.ConflictError
	var upstream *apperror.UpstreamUnavailableError
	var validation *apperror.ValidationError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, validation.Error()
	case errors.As(err, &notFound):
		return fiber.StatusNotFound, notFound.Error()
	case errors.As(err, &conflict):
		return fiber.StatusConflict, conflict.Error()
	case errors.As(err, &upstream):
		return fiber.StatusBadGateway, "answer generation failed"
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}
