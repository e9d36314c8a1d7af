package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/cache"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/config"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/handler"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/middleware"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/repository"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/router"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/service"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	middleware.InitLogger(cfg.LogLevel, "votacion-api")
	middleware.SetVerboseErrors(!cfg.IsProduction())
	logger := middleware.Logger

	for _, problem := range cfg.Validate() {
		logger.Warn().Msg(problem)
	}

	responseCache := buildCache(cfg, logger)
	defer responseCache.Close()

	ctx := context.Background()
	repos, err := repository.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not build repositories")
	}
	defer repos.Close()

	handler.InitMetrics(repos.Pool)

	authSvc := service.NewAuthService(repos.Students, logger)
	candidateSvc := service.NewCandidateService(repos.Candidates, responseCache, logger)
	studentSvc := service.NewStudentService(repos.Students, responseCache, logger)
	voteSvc := service.NewVoteService(repos, responseCache, cfg.DemoMode(), logger)
	diagnosticsSvc := service.NewDiagnosticsService(cfg, repos, responseCache, logger)

	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Candidate:   handler.NewCandidateHandler(candidateSvc),
		Student:     handler.NewStudentHandler(studentSvc),
		Vote:        handler.NewVoteHandler(voteSvc),
		Diagnostics: handler.NewDiagnosticsHandler(diagnosticsSvc),
		Health:      handler.NewHealthHandler(repos, responseCache),
	}

	app := fiber.New(fiber.Config{
		AppName:      "Sistema de Votación API",
		ServerHeader: "votacion",
	})
	router.Setup(app, handlers, cfg, responseCache)

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("environment", cfg.Environment).
			Str("backend", repos.Backend).
			Bool("demo_mode", cfg.DemoMode()).
			Msg("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}

// buildCache prefers Redis when configured but always degrades to the
// in-process cache: a dead Redis must not keep the school from voting.
func buildCache(cfg *config.Config, logger zerolog.Logger) cache.Cache {
	if cfg.CacheType == config.CacheRedis {
		redisCache, err := cache.NewRedis(cfg.RedisURL)
		if err == nil {
			logger.Info().Msg("redis cache connected")
			return redisCache
		}
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
	}
	return cache.NewMemory(cache.DefaultSweepInterval)
}
