package infra

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("GATEWAY_BASE_URL", "https://gateway.example.com")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GATEWAY_TIMEOUT_SECONDS", "")
	t.Setenv("GATEWAY_RETRIES", "")
	t.Setenv("DEFAULT_PACE_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GatewayTimeout != 15*time.Second {
		t.Fatalf("GatewayTimeout = %s, want 15s", cfg.GatewayTimeout)
	}
	if cfg.GatewayRetries != 2 {
		t.Fatalf("GatewayRetries = %d, want 2", cfg.GatewayRetries)
	}
	if cfg.DefaultPaceSeconds != 15 {
		t.Fatalf("DefaultPaceSeconds = %d, want 15", cfg.DefaultPaceSeconds)
	}
	if cfg.DefaultCountryCode != "55" {
		t.Fatalf("DefaultCountryCode = %q, want 55", cfg.DefaultCountryCode)
	}
	if cfg.DefaultLocale != "pt-BR" {
		t.Fatalf("DefaultLocale = %q, want pt-BR", cfg.DefaultLocale)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
}

func TestLoadConfigSplitsOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://panel.example.com, https://admin.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigRequiresGatewayBaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("GATEWAY_BASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when GATEWAY_BASE_URL missing")
	}
}

func TestLoadConfigClampsNegativeTunables(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GATEWAY_RETRIES", "-3")
	t.Setenv("DEFAULT_PACE_SECONDS", "-1")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GatewayRetries != 0 {
		t.Fatalf("GatewayRetries = %d, want 0", cfg.GatewayRetries)
	}
	if cfg.DefaultPaceSeconds != 0 {
		t.Fatalf("DefaultPaceSeconds = %d, want 0", cfg.DefaultPaceSeconds)
	}
}
