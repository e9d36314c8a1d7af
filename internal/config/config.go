// Package config resolves the process configuration from the environment.
// The configuration is computed once at first access and memoized; there
// is no hot-reload.
package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Backend names accepted in DATABASE_TYPE.
const (
	BackendAirtable = "airtable"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Cache backend names accepted in CACHE_TYPE.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// DemoSentinel in either Airtable credential forces demo (memory) mode.
const DemoSentinel = "DEMO_MODE"

// TTLs holds the per-resource response cache lifetimes.
type TTLs struct {
	Candidates time.Duration
	Votes      time.Duration
	Students   time.Duration
}

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	CORSOrigins string

	DatabaseType   string
	AirtableAPIKey string
	AirtableBaseID string
	DatabaseURL    string
	DemoStateFile  string

	UseAuth       bool
	AdminPassword string

	CacheType string
	RedisURL  string
	CacheTTL  TTLs

	RateLimitEnabled bool
	RateLimitMax     int
	RateLimitWindow  time.Duration
}

var (
	once   sync.Once
	loaded *Config
)

// Load returns the process configuration, resolving it on first call.
func Load() *Config {
	once.Do(func() {
		loaded = loadFromEnv()
	})
	return loaded
}

func loadFromEnv() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		AirtableAPIKey: os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID: os.Getenv("AIRTABLE_BASE_ID"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DemoStateFile:  os.Getenv("DEMO_STATE_FILE"),

		UseAuth:       getEnv("USE_AUTH", "false") == "true",
		AdminPassword: getEnv("ADMIN_PASSWORD", "colegio2024"),

		CacheType: getEnv("CACHE_TYPE", CacheMemory),
		RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379"),
		CacheTTL: TTLs{
			Candidates: time.Duration(getEnvInt("CACHE_TTL_CANDIDATES", 300)) * time.Second,
			Votes:      time.Duration(getEnvInt("CACHE_TTL_VOTES", 60)) * time.Second,
			Students:   time.Duration(getEnvInt("CACHE_TTL_STUDENTS", 600)) * time.Second,
		},

		RateLimitEnabled: getEnv("RATE_LIMITING_ENABLED", "true") != "false",
		RateLimitMax:     getEnvInt("RATE_LIMIT_MAX_REQUESTS", 10),
		RateLimitWindow:  time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MS", 60000)) * time.Millisecond,
	}
	cfg.DatabaseType = resolveDatabaseType(cfg)
	return cfg
}

// resolveDatabaseType picks the repository backend: an explicit
// DATABASE_TYPE wins, then presence of real Airtable credentials, then a
// Postgres URL, else the in-memory demo backend.
func resolveDatabaseType(cfg *Config) string {
	switch dbType := os.Getenv("DATABASE_TYPE"); dbType {
	case BackendAirtable, BackendPostgres, BackendMemory:
		return dbType
	}
	if cfg.hasAirtableConfig() {
		return BackendAirtable
	}
	if cfg.DatabaseURL != "" {
		return BackendPostgres
	}
	return BackendMemory
}

func (c *Config) hasAirtableConfig() bool {
	return c.AirtableAPIKey != "" && c.AirtableBaseID != "" &&
		c.AirtableAPIKey != DemoSentinel && c.AirtableBaseID != DemoSentinel
}

// DemoMode reports whether the in-memory demo backend is active.
func (c *Config) DemoMode() bool {
	return c.DatabaseType == BackendMemory
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate returns the list of configuration problems without failing;
// callers decide whether any of them is fatal.
func (c *Config) Validate() []string {
	var errs []string

	switch c.DatabaseType {
	case BackendAirtable:
		if !c.hasAirtableConfig() {
			errs = append(errs, "Airtable configuration missing: AIRTABLE_API_KEY and AIRTABLE_BASE_ID required")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "PostgreSQL configuration missing: DATABASE_URL required")
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("unsupported database type: %s", c.DatabaseType))
	}

	if c.CacheType == CacheRedis && os.Getenv("REDIS_URL") == "" {
		errs = append(errs, "Redis configuration missing: REDIS_URL required when CACHE_TYPE=redis")
	}

	return errs
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
