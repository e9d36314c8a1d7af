package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/middleware"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/service"
)

type StudentHandler struct {
	students *service.StudentService
}

func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List handles GET /api/students (admin). A backend outage is a 500 here,
// never an empty roster.
func (h *StudentHandler) List(c fiber.Ctx) error {
	students, err := h.students.List(c.Context())
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return c.JSON(students)
}

// Create handles POST /api/students (admin).
func (h *StudentHandler) Create(c fiber.Ctx) error {
	var req model.NewStudentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest,
			domain.CodeValidation, "Cuerpo de la petición inválido")
	}

	created, err := h.students.Create(c.Context(), req)
	if err != nil {
		return middleware.HandleError(c, err)
	}

	return c.JSON(model.StudentResponse{
		Success: true,
		Student: created,
	})
}
