package middleware

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
)

// RateLimitConfig defines the limit for a specific route or group.
type RateLimitConfig struct {
	Max    int                      // Maximum requests allowed in the window
	Window time.Duration            // Time window for the limit
	KeyFn  func(c fiber.Ctx) string // Returns the key to rate limit on
}

// entry tracks request count and window start for a single key.
type entry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter is an in-memory sliding-window rate limiter.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	config  RateLimitConfig
}

// NewRateLimiter creates a rate limiter with the given config.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFn == nil {
		cfg.KeyFn = ClientKey
	}
	rl := &RateLimiter{
		entries: make(map[string]*entry),
		config:  cfg,
	}
	// Background cleanup every 5 minutes
	go rl.cleanup()
	return rl
}

// Handler returns a Fiber middleware handler that enforces the rate limit.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		key := rl.config.KeyFn(c)

		rl.mu.Lock()
		now := time.Now()
		e, exists := rl.entries[key]
		if !exists || now.After(e.windowEnd) {
			// New window
			rl.entries[key] = &entry{
				count:     1,
				windowEnd: now.Add(rl.config.Window),
			}
			e = rl.entries[key]
			rl.mu.Unlock()

			setRateLimitHeaders(c, rl.config.Max, rl.config.Max-1, e.windowEnd)
			return c.Next()
		}

		e.count++
		remaining := rl.config.Max - e.count
		rl.mu.Unlock()

		setRateLimitHeaders(c, rl.config.Max, max(remaining, 0), e.windowEnd)

		if remaining < 0 {
			retryAfter := int(time.Until(e.windowEnd).Seconds()) + 1
			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many requests. Please try again later.",
			})
		}

		return c.Next()
	}
}

// Allow checks if a request with the given key is allowed (for testing).
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	e, exists := rl.entries[key]
	if !exists || now.After(e.windowEnd) {
		rl.entries[key] = &entry{
			count:     1,
			windowEnd: now.Add(rl.config.Window),
		}
		return true
	}

	e.count++
	return e.count <= rl.config.Max
}

func setRateLimitHeaders(c fiber.Ctx, limit, remaining int, resetAt time.Time) {
	c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
	c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", max(remaining, 0)))
	c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt.Unix()))
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, e := range rl.entries {
			if now.After(e.windowEnd) {
				delete(rl.entries, key)
			}
		}
		rl.mu.Unlock()
	}
}

// ClientKey identifies the caller. Behind the school's reverse proxy the
// real address arrives in X-Forwarded-For; the first hop wins.
func ClientKey(c fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found {
			return "ip:" + strings.TrimSpace(first)
		}
		return "ip:" + strings.TrimSpace(fwd)
	}
	if real := c.Get("X-Real-IP"); real != "" {
		return "ip:" + real
	}
	if ip := c.IP(); ip != "" {
		return "ip:" + ip
	}
	return "ip:unknown"
}

// --- Pre-configured rate limiters matching the API contract ---

// NewAuthRateLimiter: 5 login attempts/min per IP.
func NewAuthRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{Max: 5, Window: time.Minute, KeyFn: ClientKey})
}

// NewCastVoteRateLimiter: 3 ballots/min per IP.
func NewCastVoteRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{Max: 3, Window: time.Minute, KeyFn: ClientKey})
}

// NewVotesReadRateLimiter: 30 tally reads/min per IP.
func NewVotesReadRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{Max: 30, Window: time.Minute, KeyFn: ClientKey})
}

// NewCandidatesRateLimiter: 20 req/min per IP.
func NewCandidatesRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{Max: 20, Window: time.Minute, KeyFn: ClientKey})
}

// NewCheckVoteRateLimiter: 15 req/min per IP.
func NewCheckVoteRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{Max: 15, Window: time.Minute, KeyFn: ClientKey})
}

// NewStudentsRateLimiter: 10 req/min per IP.
func NewStudentsRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{Max: 10, Window: time.Minute, KeyFn: ClientKey})
}

// NewClearVotesRateLimiter: 2 req per 5 min per IP.
func NewClearVotesRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{Max: 2, Window: 5 * time.Minute, KeyFn: ClientKey})
}

// NewDiagnosticsRateLimiter: 5 req per 5 min per IP.
func NewDiagnosticsRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{Max: 5, Window: 5 * time.Minute, KeyFn: ClientKey})
}
