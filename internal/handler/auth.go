// Package handler contains the Fiber HTTP handlers. They parse and
// validate the wire format, delegate to the services and translate
// classified errors into the uniform response envelope.
package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/middleware"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles POST /api/auth.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest,
			domain.CodeValidation, "Cuerpo de la petición inválido")
	}

	student, err := h.auth.Login(c.Context(), req)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	if student == nil {
		// Wrong credentials are a normal outcome for the login form, not a
		// transport error: 200 with success=false.
		return c.JSON(model.LoginResponse{
			Success: false,
			Error:   "Usuario o contraseña incorrectos",
		})
	}

	return c.JSON(model.LoginResponse{Success: true, Student: student})
}
