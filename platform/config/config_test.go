package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/learnhub_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "168h")
	t.Setenv("LOGIN_RATE_LIMIT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AccessTokenTTL != 168*time.Hour {
		t.Fatalf("AccessTokenTTL = %v, want 168h", cfg.AccessTokenTTL)
	}
	if cfg.LoginRateLimit != 5 {
		t.Fatalf("LoginRateLimit = %d, want 5", cfg.LoginRateLimit)
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "one-week")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for malformed JWT_ACCESS_TTL")
	}
	if !strings.Contains(err.Error(), "JWT_ACCESS_TTL") {
		t.Fatalf("error %q does not name the offending variable", err)
	}
}

func TestLoadRejectsMalformedInteger(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMTP_PORT", "smtp")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for malformed SMTP_PORT")
	}
	if !strings.Contains(err.Error(), "SMTP_PORT") {
		t.Fatalf("error %q does not name the offending variable", err)
	}
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/learnhub_test")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}
