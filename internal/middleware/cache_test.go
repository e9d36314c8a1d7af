package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/cache"
)

func newCachedApp(t *testing.T, params ...string) (*fiber.App, *int) {
	t.Helper()
	Logger = zerolog.Nop()

	store := cache.NewMemory(time.Minute)
	t.Cleanup(func() { store.Close() })

	calls := 0
	app := fiber.New()
	app.Get("/data", func(c fiber.Ctx) error {
		calls++
		return c.JSON(fiber.Map{"calls": calls})
	}, NewResponseCache(CacheConfig{
		Cache:  store,
		Prefix: "data",
		TTL:    time.Minute,
		Params: params,
	}))
	app.Get("/broken", func(c fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false})
	}, NewResponseCache(CacheConfig{
		Cache:  store,
		Prefix: "broken",
		TTL:    time.Minute,
	}))
	return app, &calls
}

func TestResponseCache_MissThenHit(t *testing.T) {
	app, calls := newCachedApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/data", nil))
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	if got := resp.Header.Get("X-Cache"); got != "MISS" {
		t.Fatalf("first X-Cache = %q, want MISS", got)
	}
	first, _ := io.ReadAll(resp.Body)

	resp, err = app.Test(httptest.NewRequest("GET", "/data", nil))
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if got := resp.Header.Get("X-Cache"); got != "HIT" {
		t.Fatalf("second X-Cache = %q, want HIT", got)
	}
	second, _ := io.ReadAll(resp.Body)

	// The hit replays the stored body without re-running the handler.
	if *calls != 1 {
		t.Fatalf("handler ran %d times, want 1", *calls)
	}
	if string(first) != string(second) {
		t.Fatalf("replayed body %q differs from original %q", second, first)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=60" {
		t.Fatalf("Cache-Control = %q", cc)
	}
}

func TestResponseCache_Non2xxNotStored(t *testing.T) {
	app, calls := newCachedApp(t)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/broken", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if resp.StatusCode != fiber.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
		if got := resp.Header.Get("X-Cache"); got != "MISS" {
			t.Fatalf("request %d X-Cache = %q, want MISS", i+1, got)
		}
	}
	if *calls != 2 {
		t.Fatalf("handler ran %d times, want 2 (error responses must not be cached)", *calls)
	}
}

func TestResponseCache_KeysOnDeclaredParams(t *testing.T) {
	app, calls := newCachedApp(t, "mes", "ano")

	for _, target := range []string{
		"/data?mes=Enero&ano=2025",
		"/data?mes=Febrero&ano=2025",
		"/data?ano=2025&mes=Enero", // same params, different order: same key
	} {
		if _, err := app.Test(httptest.NewRequest("GET", target, nil)); err != nil {
			t.Fatalf("GET %s: %v", target, err)
		}
	}

	if *calls != 2 {
		t.Fatalf("handler ran %d times, want 2 (one per distinct period)", *calls)
	}
}
