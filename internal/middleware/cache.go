package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/cache"
)

// CacheConfig drives the response cache for one route.
type CacheConfig struct {
	Cache  cache.Cache
	Prefix string
	TTL    time.Duration
	Params []string // query parameters that participate in the key

	// Optional hit/miss counters, wired from the metrics registry.
	Hits   prometheus.Counter
	Misses prometheus.Counter
}

// NewResponseCache caches successful GET responses under a key derived
// from the route prefix and the listed query parameters. Cache failures
// never fail the request; the backend answer always wins.
func NewResponseCache(cfg CacheConfig) fiber.Handler {
	maxAge := int(cfg.TTL.Seconds())

	return func(c fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		params := make(map[string]string, len(cfg.Params))
		for _, p := range cfg.Params {
			if v := fiber.Query[string](c, p); v != "" {
				params[p] = v
			}
		}
		key := cache.Key(cfg.Prefix, params)
		ctx := c.Context()

		body, err := cfg.Cache.Get(ctx, key)
		if err != nil {
			Logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		if body != nil {
			if cfg.Hits != nil {
				cfg.Hits.Inc()
			}
			c.Set("X-Cache", "HIT")
			c.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			c.Response().Header.SetContentType(fiber.MIMEApplicationJSON)
			return c.Send(body)
		}

		if cfg.Misses != nil {
			cfg.Misses.Inc()
		}
		c.Set("X-Cache", "MISS")
		c.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))

		if err := c.Next(); err != nil {
			return err
		}

		if status := c.Response().StatusCode(); status >= 200 && status < 300 {
			stored := make([]byte, len(c.Response().Body()))
			copy(stored, c.Response().Body())
			if err := cfg.Cache.Set(ctx, key, stored, cfg.TTL); err != nil {
				Logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
			}
		}
		return nil
	}
}
