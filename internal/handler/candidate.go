package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/middleware"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/service"
)

type CandidateHandler struct {
	candidates *service.CandidateService
}

func NewCandidateHandler(candidates *service.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidates: candidates}
}

// List handles GET /api/candidates, optionally filtered by ?grado=&curso=.
func (h *CandidateHandler) List(c fiber.Ctx) error {
	grado := fiber.Query[string](c, "grado")
	curso := fiber.Query[string](c, "curso")
	if grado != "" && curso != "" {
		return c.JSON(h.candidates.ListByGradeAndCourse(c.Context(), grado, curso))
	}
	return c.JSON(h.candidates.List(c.Context()))
}

// Create handles POST /api/candidates (admin).
func (h *CandidateHandler) Create(c fiber.Ctx) error {
	var req model.NewCandidateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest,
			domain.CodeValidation, "Cuerpo de la petición inválido")
	}

	created, err := h.candidates.Create(c.Context(), req)
	if err != nil {
		return middleware.HandleError(c, err)
	}

	return c.JSON(model.CandidateResponse{
		Success:   true,
		Candidate: created,
	})
}
