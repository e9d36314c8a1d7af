// Package router wires the middleware stack and the API routes.
package router

import (
	"time"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/cache"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/config"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/handler"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/middleware"
)

// checkVoteTTL is deliberately short: the answer flips the moment the
// student votes.
const checkVoteTTL = 30 * time.Second

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Candidate   *handler.CandidateHandler
	Student     *handler.StudentHandler
	Vote        *handler.VoteHandler
	Diagnostics *handler.DiagnosticsHandler
	Health      *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given
// Fiber app.
func Setup(app *fiber.App, h *Handlers, cfg *config.Config, responseCache cache.Cache) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(cfg.CORSOrigins))

	// Probes and metrics (outside the API group, no limits)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	limit := func(build func() *middleware.RateLimiter) fiber.Handler {
		if !cfg.RateLimitEnabled {
			return func(c fiber.Ctx) error { return c.Next() }
		}
		return build().Handler()
	}
	cached := func(prefix string, ttl time.Duration, params ...string) fiber.Handler {
		return middleware.NewResponseCache(middleware.CacheConfig{
			Cache:  responseCache,
			Prefix: prefix,
			TTL:    ttl,
			Params: params,
			Hits:   handler.Metrics.CacheHits,
			Misses: handler.Metrics.CacheMisses,
		})
	}
	admin := middleware.RequireAdmin(cfg.AdminPassword)

	api := app.Group("/api")

	// Auth
	api.Post("/auth", h.Auth.Login, limit(middleware.NewAuthRateLimiter))

	// Candidates
	api.Get("/candidates", h.Candidate.List,
		limit(middleware.NewCandidatesRateLimiter),
		cached("candidates", cfg.CacheTTL.Candidates, "grado", "curso"))
	api.Post("/candidates", h.Candidate.Create,
		limit(middleware.NewCandidatesRateLimiter))

	// Students
	api.Get("/students", h.Student.List,
		limit(middleware.NewStudentsRateLimiter),
		cached("students", cfg.CacheTTL.Students))
	api.Post("/students", h.Student.Create,
		limit(middleware.NewStudentsRateLimiter))

	// Votes
	api.Get("/votes", h.Vote.Counts,
		limit(middleware.NewVotesReadRateLimiter),
		cached("votes", cfg.CacheTTL.Votes, "mes", "ano"))
	api.Post("/votes", h.Vote.Cast, limit(middleware.NewCastVoteRateLimiter))
	api.Delete("/votes", h.Vote.ClearPeriod,
		limit(middleware.NewClearVotesRateLimiter), admin)

	// Check vote
	api.Get("/check-vote", h.Vote.Check,
		limit(middleware.NewCheckVoteRateLimiter),
		cached("check-vote", checkVoteTTL, "username"))

	// Admin utilities. Only the destructive clear endpoints are gated;
	// everything else is open like the voting frontend expects.
	api.Post("/admin/clear-votes", h.Vote.ClearCurrentMonth,
		limit(middleware.NewClearVotesRateLimiter), admin)
	api.Get("/diagnostics", h.Diagnostics.Run,
		limit(middleware.NewDiagnosticsRateLimiter))
}
