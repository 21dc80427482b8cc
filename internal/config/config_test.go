package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Fatalf("default backend = %q, want %q", cfg.Store.Backend, BackendSQLite)
	}
	if cfg.Store.SQLite.Path != "pipeline.db" {
		t.Fatalf("default sqlite path = %q", cfg.Store.SQLite.Path)
	}
	if got := cfg.Browser.NavTimeout(); got != 8*time.Second {
		t.Fatalf("default nav timeout = %v", got)
	}
	if got := cfg.Browser.SocialSettle(); got != 2500*time.Millisecond {
		t.Fatalf("default social settle = %v", got)
	}
	if !cfg.Logging.Development {
		t.Fatal("development logging should default on")
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
store:
  backend: api
  api:
    base_url: http://localhost:8000
    timeout_seconds: 30
browser:
  user_agent: harvest-agent
  nav_timeout_ms: 12000
  settle_ms: 1000
  social_settle_ms: 3000
run:
  limit: 40
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != BackendAPI {
		t.Fatalf("backend = %q", cfg.Store.Backend)
	}
	if cfg.Store.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("base url = %q", cfg.Store.API.BaseURL)
	}
	if got := cfg.Store.API.APITimeout(); got != 30*time.Second {
		t.Fatalf("api timeout = %v", got)
	}
	if cfg.Run.Limit != 40 {
		t.Fatalf("limit = %d", cfg.Run.Limit)
	}
	if cfg.Browser.UserAgent != "harvest-agent" {
		t.Fatalf("user agent = %q", cfg.Browser.UserAgent)
	}
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	base := func() Config {
		cfg, err := Load(viper.New(), "")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "dynamo" }},
		{"api without base url", func(c *Config) { c.Store.Backend = BackendAPI }},
		{"empty sqlite path", func(c *Config) { c.Store.SQLite.Path = "" }},
		{"zero nav timeout", func(c *Config) { c.Browser.NavTimeoutMs = 0 }},
		{"social settle below settle", func(c *Config) { c.Browser.SocialSettleMs = 100 }},
		{"negative limit", func(c *Config) { c.Run.Limit = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
