package config

import (
	"testing"
	"time"
)

func clearBackendEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_TYPE", "AIRTABLE_API_KEY", "AIRTABLE_BASE_ID",
		"DATABASE_URL", "CACHE_TYPE", "REDIS_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestResolveDatabaseType_DefaultsToMemory(t *testing.T) {
	clearBackendEnv(t)

	cfg := loadFromEnv()
	if cfg.DatabaseType != BackendMemory {
		t.Fatalf("DatabaseType = %q, want %q", cfg.DatabaseType, BackendMemory)
	}
	if !cfg.DemoMode() {
		t.Fatal("DemoMode should be true without credentials")
	}
}

func TestResolveDatabaseType_AirtableFromCredentials(t *testing.T) {
	clearBackendEnv(t)
	t.Setenv("AIRTABLE_API_KEY", "key123")
	t.Setenv("AIRTABLE_BASE_ID", "app456")

	cfg := loadFromEnv()
	if cfg.DatabaseType != BackendAirtable {
		t.Fatalf("DatabaseType = %q, want %q", cfg.DatabaseType, BackendAirtable)
	}
}

func TestResolveDatabaseType_DemoSentinelIgnored(t *testing.T) {
	clearBackendEnv(t)
	t.Setenv("AIRTABLE_API_KEY", DemoSentinel)
	t.Setenv("AIRTABLE_BASE_ID", DemoSentinel)

	cfg := loadFromEnv()
	if cfg.DatabaseType != BackendMemory {
		t.Fatalf("DatabaseType = %q, want %q (sentinel credentials)", cfg.DatabaseType, BackendMemory)
	}
}

func TestResolveDatabaseType_PostgresFromURL(t *testing.T) {
	clearBackendEnv(t)
	t.Setenv("DATABASE_URL", "postgres://votacion:pw@localhost:5432/votacion")

	cfg := loadFromEnv()
	if cfg.DatabaseType != BackendPostgres {
		t.Fatalf("DatabaseType = %q, want %q", cfg.DatabaseType, BackendPostgres)
	}
}

func TestResolveDatabaseType_ExplicitOverrideWins(t *testing.T) {
	clearBackendEnv(t)
	t.Setenv("AIRTABLE_API_KEY", "key123")
	t.Setenv("AIRTABLE_BASE_ID", "app456")
	t.Setenv("DATABASE_TYPE", BackendMemory)

	cfg := loadFromEnv()
	if cfg.DatabaseType != BackendMemory {
		t.Fatalf("DatabaseType = %q, want explicit %q", cfg.DatabaseType, BackendMemory)
	}
}

func TestValidate_AirtableWithoutCredentials(t *testing.T) {
	clearBackendEnv(t)
	t.Setenv("DATABASE_TYPE", BackendAirtable)

	errs := loadFromEnv().Validate()
	if len(errs) != 1 {
		t.Fatalf("Validate returned %d errors, want 1: %v", len(errs), errs)
	}
}

func TestValidate_RedisWithoutURL(t *testing.T) {
	clearBackendEnv(t)
	t.Setenv("CACHE_TYPE", CacheRedis)

	errs := loadFromEnv().Validate()
	if len(errs) != 1 {
		t.Fatalf("Validate returned %d errors, want 1: %v", len(errs), errs)
	}
}

func TestValidate_CleanConfig(t *testing.T) {
	clearBackendEnv(t)

	if errs := loadFromEnv().Validate(); len(errs) != 0 {
		t.Fatalf("Validate returned errors for memory config: %v", errs)
	}
}

func TestDefaults(t *testing.T) {
	clearBackendEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "")
	t.Setenv("CACHE_TTL_VOTES", "")

	cfg := loadFromEnv()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.AdminPassword != "colegio2024" {
		t.Errorf("AdminPassword = %q, want colegio2024", cfg.AdminPassword)
	}
	if cfg.RateLimitMax != 10 {
		t.Errorf("RateLimitMax = %d, want 10", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v, want 1m", cfg.RateLimitWindow)
	}
	if cfg.CacheTTL.Votes != time.Minute {
		t.Errorf("CacheTTL.Votes = %v, want 1m", cfg.CacheTTL.Votes)
	}
}
