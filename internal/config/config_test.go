package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "4000" {
		t.Errorf("expected default port 4000, got %s", cfg.Port)
	}
	if cfg.PlayerTick != 20*time.Millisecond {
		t.Errorf("expected default player tick 20ms, got %s", cfg.PlayerTick)
	}
	if cfg.AdaptDrainGrace != 800*time.Millisecond {
		t.Errorf("expected default adapt drain grace 800ms, got %s", cfg.AdaptDrainGrace)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected default env to be development")
	}
	if cfg.IsProduction() {
		t.Error("did not expect default env to be production")
	}
}

func TestLoadRespectsEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("ADAPT_DRAIN_GRACE_MS", "100")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("expected overridden port 9000, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production env")
	}
	if cfg.AdaptDrainGrace != 100*time.Millisecond {
		t.Errorf("expected overridden drain grace 100ms, got %s", cfg.AdaptDrainGrace)
	}
}
