package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "API_VERSION", "JWT_ACCESS_TTL", "BCRYPT_COST", "CORS_ORIGINS", "RATE_LIMIT_MAX"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Mode != ModeOffline {
		t.Fatalf("mode = %q", c.Mode)
	}
	if c.HTTPAddr != ":8080" || c.APIPrefix() != "/api/v1" {
		t.Fatalf("addr/prefix = %q %q", c.HTTPAddr, c.APIPrefix())
	}
	if c.AccessTTL != 15*time.Minute || c.RefreshTTL != 168*time.Hour {
		t.Fatalf("ttls = %v %v", c.AccessTTL, c.RefreshTTL)
	}
	if c.BcryptCost != 12 || c.RateLimitMax != 100 {
		t.Fatalf("cost/limit = %d %d", c.BcryptCost, c.RateLimitMax)
	}
	if len(c.CORSOrigins) != 2 {
		t.Fatalf("origins = %v", c.CORSOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("API_VERSION", "v2")
	t.Setenv("JWT_ACCESS_TTL", "1h")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("SEED_ON_START", "no")

	c := FromEnv()
	if c.Mode != ModeOnline || c.APIPrefix() != "/api/v2" {
		t.Fatalf("mode/prefix = %q %q", c.Mode, c.APIPrefix())
	}
	if c.AccessTTL != time.Hour {
		t.Fatalf("access ttl = %v", c.AccessTTL)
	}
	if c.BcryptCost != 12 {
		t.Fatalf("bad int should fall back, got %d", c.BcryptCost)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", c.CORSOrigins)
	}
	if c.SeedOnStart {
		t.Fatalf("seed on start should be off")
	}
}
