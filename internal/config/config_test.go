package config

import (
	"testing"
	"time"

	"github.com/spec-kit/middleman-engine/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("port = %s, want 8080", cfg.App.Port)
	}
	if cfg.Roles.CacheTTL() != 30*time.Second {
		t.Fatalf("cache ttl = %s, want 30s", cfg.Roles.CacheTTL())
	}
}

func TestTierRolesFromEnv(t *testing.T) {
	t.Setenv("TRIAL_MIDDLEMAN_ROLE_ID", "1001")
	t.Setenv("OWNER_ROLE_ID", "1005")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Roles.TierRoles[domain.TierTrial] != 1001 {
		t.Fatalf("trial role = %d, want 1001", cfg.Roles.TierRoles[domain.TierTrial])
	}
	if cfg.Roles.TierRoles[domain.TierOwner] != 1005 {
		t.Fatalf("owner role = %d, want 1005", cfg.Roles.TierRoles[domain.TierOwner])
	}
	if _, ok := cfg.Roles.TierRoles[domain.TierPro]; ok {
		t.Fatal("unset tier role should be absent")
	}
}

func TestTierRolesRejectMalformedEnv(t *testing.T) {
	t.Setenv("MIDDLEMAN_ROLE_ID", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("malformed role id accepted")
	}
}

func TestRequestTimeout(t *testing.T) {
	app := AppConfig{RequestTimeoutSeconds: 45}
	if app.RequestTimeout() != 45*time.Second {
		t.Fatalf("timeout = %s", app.RequestTimeout())
	}
	app.RequestTimeoutSeconds = 0
	if app.RequestTimeout() != 0 {
		t.Fatal("zero seconds should disable the timeout")
	}
}
