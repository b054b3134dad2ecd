package config

import (
	"time"

	"github.com/sublens/sublens/internal/summarize"
)

// Config represents the complete application configuration
// following the Fulmen Forge Workhorse Standard three-layer pattern:
// Layer 1: Crucible defaults (config/sublens/v0/sublens-defaults.yaml)
// Layer 2: User overrides (~/.config/sublens/sublens/config.yaml)
// Layer 3: Environment variables and runtime overrides
type Config struct {
	Server  ServerConfig     `mapstructure:"server"`
	Store   StoreConfig      `mapstructure:"store"`
	Cache   CacheConfig      `mapstructure:"cache"`
	Fetch   FetchConfig      `mapstructure:"fetch"`
	Summary summarize.Config `mapstructure:"summary"`
	Logging LoggingConfig    `mapstructure:"logging"`
	Metrics MetricsConfig    `mapstructure:"metrics"`
	Health  HealthConfig     `mapstructure:"health"`
	Debug   DebugConfig      `mapstructure:"debug"`
	Workers int              `mapstructure:"workers"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// CacheConfig contains cache TTL configuration.
type CacheConfig struct {
	TranscriptTTL time.Duration `mapstructure:"transcript_ttl"`
	SummaryTTL    time.Duration `mapstructure:"summary_ttl"`
}

// FetchConfig contains the fetch policy knobs. The five interval and
// retry values control admission and backoff; all of them can be set
// without code changes.
type FetchConfig struct {
	UserInterval   time.Duration `mapstructure:"user_interval"`
	GlobalInterval time.Duration `mapstructure:"global_interval"`
	MaxRetries     int           `mapstructure:"max_retries"`
	BaseDelay      time.Duration `mapstructure:"base_delay"`
	MaxDelay       time.Duration `mapstructure:"max_delay"`

	// UserTTL bounds how long idle users stay in the admission map;
	// SweepInterval is how often stale entries are evicted.
	UserTTL       time.Duration `mapstructure:"user_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	// Languages is the default language preference order.
	Languages []string `mapstructure:"languages"`

	// Timeout bounds a single upstream request; BaseURL and UserAgent
	// override the YouTube client defaults (tests, proxies).
	Timeout   time.Duration `mapstructure:"timeout"`
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
}

// LoggingConfig contains logging configuration
// Supports progressive logging profiles per Fulmen Forge Workhorse Standard:
// - SIMPLE: Console output only, minimal configuration (CLI tools)
// - STRUCTURED: Structured sinks, correlation IDs (API services)
// - ENTERPRISE: Multiple sinks, middleware, throttling, policy enforcement (production)
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	// Metrics are also available at the main HTTP port in JSON format
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	// Enabled controls whether health endpoints are exposed
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig contains debug and profiling configuration
type DebugConfig struct {
	// Enabled controls whether debug mode is active
	Enabled bool `mapstructure:"enabled"`

	// PprofEnabled controls whether pprof endpoints are exposed
	// WARNING: Only enable in development/staging environments
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}
