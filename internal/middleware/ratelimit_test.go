package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    5,
		Window: time.Minute,
	})

	for i := 0; i < 5; i++ {
		if !rl.Allow("test-ip") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_BlocksAfterMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    3,
		Window: time.Minute,
	})

	for i := 0; i < 3; i++ {
		rl.Allow("test-ip")
	}

	if rl.Allow("test-ip") {
		t.Fatal("4th request should be blocked")
	}
}

func TestRateLimiter_DifferentKeysIndependent(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    2,
		Window: time.Minute,
	})

	rl.Allow("ip-a")
	rl.Allow("ip-a")

	// ip-a is exhausted
	if rl.Allow("ip-a") {
		t.Fatal("ip-a should be blocked")
	}

	// ip-b should still be allowed
	if !rl.Allow("ip-b") {
		t.Fatal("ip-b should be allowed (independent key)")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    2,
		Window: 50 * time.Millisecond,
	})

	rl.Allow("test")
	rl.Allow("test")

	if rl.Allow("test") {
		t.Fatal("should be blocked within window")
	}

	// Wait for window to expire
	time.Sleep(60 * time.Millisecond)

	if !rl.Allow("test") {
		t.Fatal("should be allowed after window reset")
	}
}

func TestRateLimiter_AuthConfig(t *testing.T) {
	rl := NewAuthRateLimiter()
	for i := 0; i < 5; i++ {
		if !rl.Allow("ip:127.0.0.1") {
			t.Fatalf("login attempt %d should be allowed (max 5)", i+1)
		}
	}
	if rl.Allow("ip:127.0.0.1") {
		t.Fatal("6th login attempt should be blocked")
	}
}

func TestRateLimiter_CastVoteConfig(t *testing.T) {
	rl := NewCastVoteRateLimiter()
	for i := 0; i < 3; i++ {
		if !rl.Allow("ip:127.0.0.1") {
			t.Fatalf("ballot %d should be allowed (max 3)", i+1)
		}
	}
	if rl.Allow("ip:127.0.0.1") {
		t.Fatal("4th ballot should be blocked")
	}
}

func TestRateLimiter_ClearVotesConfig(t *testing.T) {
	rl := NewClearVotesRateLimiter()
	for i := 0; i < 2; i++ {
		if !rl.Allow("ip:127.0.0.1") {
			t.Fatalf("clear request %d should be allowed (max 2/5min)", i+1)
		}
	}
	if rl.Allow("ip:127.0.0.1") {
		t.Fatal("3rd clear request should be blocked")
	}
}

func TestRateLimiter_DiagnosticsConfig(t *testing.T) {
	rl := NewDiagnosticsRateLimiter()
	for i := 0; i < 5; i++ {
		if !rl.Allow("ip:127.0.0.1") {
			t.Fatalf("diagnostics request %d should be allowed (max 5/5min)", i+1)
		}
	}
	if rl.Allow("ip:127.0.0.1") {
		t.Fatal("6th diagnostics request should be blocked")
	}
}
