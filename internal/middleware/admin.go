package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v3"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
)

// RequireAdmin guards the admin routes with the X-Admin-Password header.
func RequireAdmin(password string) fiber.Handler {
	return func(c fiber.Ctx) error {
		supplied := c.Get("X-Admin-Password")
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(password)) != 1 {
			return ErrorResponse(c, fiber.StatusUnauthorized,
				domain.CodeAuthentication, "Contraseña de administrador incorrecta")
		}
		return c.Next()
	}
}
