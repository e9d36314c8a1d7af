package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
)

// verboseErrors controls whether unclassified error details are echoed in
// responses. Enabled outside production.
var verboseErrors bool

// SetVerboseErrors toggles error detail in 500 responses.
func SetVerboseErrors(v bool) {
	verboseErrors = v
}

// ErrorResponse writes the uniform error envelope.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

// HandleError maps a classified *domain.Error to its status and code;
// anything else is logged and answered as an opaque 500.
func HandleError(c fiber.Ctx, err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return ErrorResponse(c, derr.Status, derr.Code, derr.Message)
	}

	Logger.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("unclassified error")

	if verboseErrors {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
			"code":    domain.CodeInternal,
			"details": err.Error(),
		})
	}
	return ErrorResponse(c, fiber.StatusInternalServerError, domain.CodeInternal, "Internal server error")
}
