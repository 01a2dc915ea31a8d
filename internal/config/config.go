package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/componentbridge/internal/bridge"
	"github.com/GriffinCanCode/componentbridge/internal/types"
)

// Config holds all application configuration.
type Config struct {
	Bridge    BridgeConfig
	Transport TransportConfig
	Server    ServerConfig
	Logging   LogConfig
	Metrics   MetricsConfig
	RateLimit RateLimitConfig
}

// BridgeConfig holds protocol engine settings.
type BridgeConfig struct {
	CoalescedSaving bool          `envconfig:"BRIDGE_COALESCED_SAVING" default:"true"`
	SaveDelay       time.Duration `envconfig:"BRIDGE_SAVE_DELAY" default:"250ms"`
	AcceptsThemes   bool          `envconfig:"BRIDGE_ACCEPTS_THEMES" default:"true"`
	PendingMaxAge   time.Duration `envconfig:"BRIDGE_PENDING_MAX_AGE" default:"10m"`
	LogMessages     bool          `envconfig:"BRIDGE_LOG_MESSAGES" default:"false"`
	Permissions     []string      `envconfig:"BRIDGE_PERMISSIONS"`
}

// TransportConfig holds the component's connection to its host.
type TransportConfig struct {
	HostURL        string        `envconfig:"BRIDGE_HOST_URL" default:"ws://localhost:8000/component"`
	Origin         string        `envconfig:"BRIDGE_ORIGIN" default:"http://localhost"`
	OutboundBuffer int           `envconfig:"BRIDGE_OUTBOUND_BUFFER" default:"64"`
	WriteTimeout   time.Duration `envconfig:"BRIDGE_WRITE_TIMEOUT" default:"10s"`
	MaxMessageSize int64         `envconfig:"BRIDGE_MAX_MESSAGE_SIZE" default:"1048576"`
}

// ServerConfig holds host simulator settings.
type ServerConfig struct {
	Port        string `envconfig:"PORT" default:"8000"`
	Host        string `envconfig:"HOST" default:"0.0.0.0"`
	Environment string `envconfig:"HOST_ENVIRONMENT" default:"web"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds the Prometheus listener address.
type MetricsConfig struct {
	Address string `envconfig:"METRICS_ADDR" default:":9090"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			CoalescedSaving: true,
			SaveDelay:       bridge.DefaultSaveDelay,
			AcceptsThemes:   true,
			PendingMaxAge:   bridge.DefaultPendingMaxAge,
		},
		Transport: TransportConfig{
			HostURL:        "ws://localhost:8000/component",
			Origin:         "http://localhost",
			OutboundBuffer: 64,
			WriteTimeout:   10 * time.Second,
			MaxMessageSize: 1 << 20,
		},
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			Environment: "web",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// BridgeConfig projects the environment onto a bridge.Config. Capabilities
// (logger, metrics, stylesheets) are left for the caller to set.
func (c *Config) BridgeConfig() bridge.Config {
	cfg := bridge.DefaultConfig()
	cfg.CoalescedSaving = c.Bridge.CoalescedSaving
	cfg.SaveDelay = c.Bridge.SaveDelay
	cfg.AcceptsThemes = c.Bridge.AcceptsThemes
	cfg.PendingMaxAge = c.Bridge.PendingMaxAge
	cfg.LogMessages = c.Bridge.LogMessages
	cfg.EventBuffer = c.Transport.OutboundBuffer
	for _, name := range c.Bridge.Permissions {
		cfg.InitialPermissions = append(cfg.InitialPermissions, types.Permission{Name: name})
	}
	return cfg
}
