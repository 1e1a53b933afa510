package config

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	original, existed := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
	t.Cleanup(func() {
		if !existed {
			_ = os.Unsetenv(key)
			return
		}
		_ = os.Setenv(key, original)
	})
}

func TestDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENABLE_REDIS", "SHELL_STATE_TTL", "SITE_NAME", "CORS_ORIGINS"} {
		unsetEnv(t, key)
	}

	cfg := New()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.EnableRedis {
		t.Fatalf("expected redis to be disabled by default")
	}
	if cfg.ShellStateTTL != 24*time.Hour {
		t.Fatalf("unexpected shell state TTL %s", cfg.ShellStateTTL)
	}
	if cfg.SiteName != "Trident Dashboards" {
		t.Fatalf("unexpected site name %q", cfg.SiteName)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected two default CORS origins, got %v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENABLE_REDIS", "1")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("SHELL_STATE_TTL", "30m")
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg := New()
	if cfg.Port != "9090" || !cfg.EnableRedis || cfg.RedisURL != "redis:6379" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ShellStateTTL != 30*time.Minute {
		t.Fatalf("unexpected shell state TTL %s", cfg.ShellStateTTL)
	}
	if cfg.RateLimitRequests != 100 {
		t.Fatalf("expected fallback to default for malformed int, got %d", cfg.RateLimitRequests)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestValidateRejectsBadTTL(t *testing.T) {
	t.Setenv("SHELL_STATE_TTL", "-5m")

	cfg := New()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for negative TTL")
	}
}
