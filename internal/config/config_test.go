package config

import "testing"

func TestLoadIncludesServiceDefaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("JWT_TTL_MINUTES", "")
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("MAX_IN_FLIGHT", "")
	t.Setenv("SMARTDOCS_API_URL", "")

	cfg := Load()
	if cfg.APIPort != "8000" {
		t.Fatalf("expected default api port 8000, got %q", cfg.APIPort)
	}
	if cfg.NATSSubject != "documents.ingested" {
		t.Fatalf("expected default nats subject documents.ingested, got %q", cfg.NATSSubject)
	}
	if cfg.JWTTTLMinutes != 30 {
		t.Fatalf("expected default jwt ttl 30, got %d", cfg.JWTTTLMinutes)
	}
	if cfg.RateLimitRPS != 50 {
		t.Fatalf("expected default rate limit 50, got %v", cfg.RateLimitRPS)
	}
	if cfg.MaxInFlight != 64 {
		t.Fatalf("expected default max in flight 64, got %d", cfg.MaxInFlight)
	}
	if cfg.ClientBaseURL != "http://localhost:8000/api" {
		t.Fatalf("expected default client base url, got %q", cfg.ClientBaseURL)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9100")
	t.Setenv("JWT_TTL_MINUTES", "15")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("SMARTDOCS_API_URL", "https://docs.example.com/api")

	cfg := Load()
	if cfg.APIPort != "9100" {
		t.Fatalf("expected api port override, got %q", cfg.APIPort)
	}
	if cfg.JWTTTLMinutes != 15 {
		t.Fatalf("expected jwt ttl 15, got %d", cfg.JWTTTLMinutes)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.RateLimitRPS)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Fatalf("expected max upload bytes 1024, got %d", cfg.MaxUploadBytes)
	}
	if cfg.ClientBaseURL != "https://docs.example.com/api" {
		t.Fatalf("expected client base url override, got %q", cfg.ClientBaseURL)
	}
}

func TestLoadFallsBackOnInvalidNumbers(t *testing.T) {
	t.Setenv("JWT_TTL_MINUTES", "not-a-number")
	t.Setenv("RATE_LIMIT_RPS", "fast")

	cfg := Load()
	if cfg.JWTTTLMinutes != 30 {
		t.Fatalf("expected fallback jwt ttl 30, got %d", cfg.JWTTTLMinutes)
	}
	if cfg.RateLimitRPS != 50 {
		t.Fatalf("expected fallback rate limit 50, got %v", cfg.RateLimitRPS)
	}
}
