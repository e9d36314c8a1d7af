package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/middleware"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/service"
)

type VoteHandler struct {
	votes *service.VoteService
}

func NewVoteHandler(votes *service.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// Counts handles GET /api/votes?mes=&ano= — the tally per candidate.
func (h *VoteHandler) Counts(c fiber.Ctx) error {
	mes := fiber.Query[string](c, "mes")
	ano := fiber.Query[string](c, "ano")

	counts, err := h.votes.Counts(c.Context(), mes, ano)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return c.JSON(counts)
}

// Cast handles POST /api/votes.
func (h *VoteHandler) Cast(c fiber.Ctx) error {
	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest,
			domain.CodeValidation, "Cuerpo de la petición inválido")
	}

	if err := h.votes.Cast(c.Context(), req); err != nil {
		return middleware.HandleError(c, err)
	}

	if Metrics.VotesTotal != nil {
		Metrics.VotesTotal.WithLabelValues(req.Mes).Inc()
	}
	return c.JSON(model.VoteResponse{Success: true})
}

// Check handles GET /api/check-vote?username= — has the student voted this
// month.
func (h *VoteHandler) Check(c fiber.Ctx) error {
	username := fiber.Query[string](c, "username")
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(model.CheckVoteResponse{HasVoted: false})
	}

	voted, err := h.votes.HasVoted(c.Context(), username)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return c.JSON(model.CheckVoteResponse{HasVoted: voted})
}

// ClearPeriod handles DELETE /api/votes (admin): removes the votes of the
// period given in the body.
func (h *VoteHandler) ClearPeriod(c fiber.Ctx) error {
	var req model.ClearVotesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest,
			domain.CodeValidation, "Cuerpo de la petición inválido")
	}

	resp, err := h.votes.ClearPeriod(c.Context(), req.Mes, req.Ano)
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return c.JSON(resp)
}

// ClearCurrentMonth handles POST /api/admin/clear-votes: the admin "reset"
// button for the running period.
func (h *VoteHandler) ClearCurrentMonth(c fiber.Ctx) error {
	resp, err := h.votes.ClearCurrentMonth(c.Context())
	if err != nil {
		return middleware.HandleError(c, err)
	}
	return c.JSON(resp)
}
