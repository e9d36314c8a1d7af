package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/cache"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/repository"
)

type HealthHandler struct {
	repos   *repository.Container
	cache   cache.Cache
	startAt time.Time
}

func NewHealthHandler(repos *repository.Container, c cache.Cache) *HealthHandler {
	return &HealthHandler{
		repos:   repos,
		cache:   c,
		startAt: time.Now(),
	}
}

// Live handles GET /health/live — liveness probe.
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready — readiness probe with dependency checks.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	checks := make(fiber.Map)
	overallStatus := "healthy"

	checks["backend"] = h.checkBackend(ctx)
	if backendCheck, ok := checks["backend"].(fiber.Map); ok {
		if backendCheck["status"] != "up" {
			overallStatus = "degraded"
		}
	}

	checks["cache"] = h.checkCache(ctx)
	if cacheCheck, ok := checks["cache"].(fiber.Map); ok {
		if cacheCheck["status"] != "up" && overallStatus == "healthy" {
			overallStatus = "degraded"
		}
	}

	uptimeSeconds := int(time.Since(h.startAt).Seconds())

	resp := fiber.Map{
		"status":         overallStatus,
		"backend":        h.repos.Backend,
		"checks":         checks,
		"uptime_seconds": uptimeSeconds,
		"version":        "1.0.0",
	}

	status := fiber.StatusOK
	if overallStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(resp)
}

func (h *HealthHandler) checkBackend(ctx context.Context) fiber.Map {
	start := time.Now()
	err := h.repos.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "connection failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}

func (h *HealthHandler) checkCache(ctx context.Context) fiber.Map {
	start := time.Now()
	err := h.cache.Set(ctx, "health:probe", []byte("ok"), 10*time.Second)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "write failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}
