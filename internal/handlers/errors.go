package handlers

import (
	"errors"

	"helpdesk/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ErrorHandler renders errors returned by handlers and middleware as
// `{message, errors?}` bodies. Anything that is not an apperrors.Error or
// a fiber.Error becomes a generic 500.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		status := apperrors.Status(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		}
		return c.Status(status).JSON(apperrors.Public(err))
	}
}

func invalidBody(err error) error {
	return apperrors.Validation("Invalid request body", err.Error())
}
