package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/service"
)

type DiagnosticsHandler struct {
	diagnostics *service.DiagnosticsService
}

func NewDiagnosticsHandler(diagnostics *service.DiagnosticsService) *DiagnosticsHandler {
	return &DiagnosticsHandler{diagnostics: diagnostics}
}

// Run handles GET /api/diagnostics (admin). `?type=status` collapses the
// battery to a status badge. The report always answers 200; the aggregated
// status lives in the body so the admin screen can render partial failures.
func (h *DiagnosticsHandler) Run(c fiber.Ctx) error {
	if fiber.Query[string](c, "type") == "status" {
		return c.JSON(h.diagnostics.Status(c.Context()))
	}
	return c.JSON(h.diagnostics.Run(c.Context()))
}
