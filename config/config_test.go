package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_DRIVER", "MAX_PAGES", "SITES", "SETTLE_DELAY", "RESET_ON_HARVEST"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.StoreDriver != StoreSQLite {
		t.Errorf("StoreDriver: got %q, want %q", cfg.StoreDriver, StoreSQLite)
	}
	if cfg.MaxPages != 2 {
		t.Errorf("MaxPages: got %d, want 2", cfg.MaxPages)
	}
	if len(cfg.Sites) != 2 || cfg.Sites[0] != "amazon" || cfg.Sites[1] != "myntra" {
		t.Errorf("Sites: got %v", cfg.Sites)
	}
	if cfg.SettleDelay != 3*time.Second {
		t.Errorf("SettleDelay: got %v, want 3s", cfg.SettleDelay)
	}
	if !cfg.ResetOnHarvest {
		t.Error("ResetOnHarvest should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_PAGES", "5")
	t.Setenv("SITES", " Myntra , ,amazon")
	t.Setenv("SETTLE_DELAY", "250ms")
	t.Setenv("RESET_ON_HARVEST", "false")
	t.Setenv("BROWSER_DRIVER", "ROD")

	cfg := Load()
	if cfg.MaxPages != 5 {
		t.Errorf("MaxPages: got %d, want 5", cfg.MaxPages)
	}
	if len(cfg.Sites) != 2 || cfg.Sites[0] != "myntra" || cfg.Sites[1] != "amazon" {
		t.Errorf("Sites: got %v", cfg.Sites)
	}
	if cfg.SettleDelay != 250*time.Millisecond {
		t.Errorf("SettleDelay: got %v", cfg.SettleDelay)
	}
	if cfg.ResetOnHarvest {
		t.Error("ResetOnHarvest should be false")
	}
	if cfg.BrowserDriver != BrowserRod {
		t.Errorf("BrowserDriver: got %q", cfg.BrowserDriver)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_PAGES", "many")
	t.Setenv("SETTLE_DELAY", "soon")

	cfg := Load()
	if cfg.MaxPages != 2 {
		t.Errorf("MaxPages: got %d, want fallback 2", cfg.MaxPages)
	}
	if cfg.SettleDelay != 3*time.Second {
		t.Errorf("SettleDelay: got %v, want fallback 3s", cfg.SettleDelay)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"store driver", func(c *Config) { c.StoreDriver = "mongo" }},
		{"browser driver", func(c *Config) { c.BrowserDriver = "selenium" }},
		{"settle mode", func(c *Config) { c.SettleMode = "adaptive" }},
		{"max pages", func(c *Config) { c.MaxPages = 0 }},
		{"sites", func(c *Config) { c.Sites = nil }},
		{"rate limit", func(c *Config) { c.RateLimitPerSec = 0 }},
	}

	for _, tt := range tests {
		cfg := Load()
		tt.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
		}
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "shop", PostgresSSLMode: "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=shop sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
