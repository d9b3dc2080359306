package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// No config file exists in the package directory, so every value
	// must come from the defaults.
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Room != "global" {
		t.Errorf("Room = %q, want global", cfg.Room)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("PingPeriod = %v, want 54s", cfg.PingPeriod)
	}
	if cfg.PongWait != 60*time.Second {
		t.Errorf("PongWait = %v, want 60s", cfg.PongWait)
	}
	if cfg.MessageRateLimit != 0 {
		t.Errorf("MessageRateLimit = %d, want 0 (disabled)", cfg.MessageRateLimit)
	}
}
