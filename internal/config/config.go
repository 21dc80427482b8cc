// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names accepted for store.backend.
const (
	BackendSQLite = "sqlite"
	BackendAPI    = "api"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Browser BrowserConfig `mapstructure:"browser"`
	Run     RunConfig     `mapstructure:"run"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StoreConfig selects and parameterizes the storage backend. The choice is
// made once per run; everything downstream sees only the gateway port.
type StoreConfig struct {
	Backend string       `mapstructure:"backend"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`
	API     APIConfig    `mapstructure:"api"`
}

// SQLiteConfig locates the pipeline database shared with the other stages.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// APIConfig points at the remote pipeline data API.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// BrowserConfig governs the headless fetch client.
type BrowserConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	NavTimeoutMs   int    `mapstructure:"nav_timeout_ms"`
	SettleMs       int    `mapstructure:"settle_ms"`
	SocialSettleMs int    `mapstructure:"social_settle_ms"`
}

// RunConfig bounds one engine run.
type RunConfig struct {
	Limit int `mapstructure:"limit"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. path may be empty, in which
// case defaults and HARVEST_* environment variables apply.
func Load(v *viper.Viper, path string) (Config, error) {
	v.SetEnvPrefix("HARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SetDefaults registers default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.sqlite.path", "pipeline.db")
	v.SetDefault("store.api.base_url", "")
	v.SetDefault("store.api.timeout_seconds", 60)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("browser.nav_timeout_ms", 8000)
	v.SetDefault("browser.settle_ms", 1500)
	v.SetDefault("browser.social_settle_ms", 2500)
	v.SetDefault("run.limit", 0)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path must be set")
		}
	case BackendAPI:
		if c.Store.API.BaseURL == "" {
			return fmt.Errorf("store.api.base_url must be set when store.backend is %q", BackendAPI)
		}
		if c.Store.API.TimeoutSeconds <= 0 {
			return fmt.Errorf("store.api.timeout_seconds must be > 0")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if c.Browser.NavTimeoutMs <= 0 {
		return fmt.Errorf("browser.nav_timeout_ms must be > 0")
	}
	if c.Browser.SettleMs <= 0 {
		return fmt.Errorf("browser.settle_ms must be > 0")
	}
	if c.Browser.SocialSettleMs < c.Browser.SettleMs {
		return fmt.Errorf("browser.social_settle_ms must be >= browser.settle_ms")
	}
	if c.Run.Limit < 0 {
		return fmt.Errorf("run.limit must be >= 0")
	}
	return nil
}

// NavTimeout converts the millisecond knob into a duration.
func (c BrowserConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutMs) * time.Millisecond
}

// Settle is the post-navigation delay for generic websites.
func (c BrowserConfig) Settle() time.Duration {
	return time.Duration(c.SettleMs) * time.Millisecond
}

// SocialSettle is the longer delay for social profile About pages.
func (c BrowserConfig) SocialSettle() time.Duration {
	return time.Duration(c.SocialSettleMs) * time.Millisecond
}

// APITimeout converts the second knob into a duration.
func (c APIConfig) APITimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
