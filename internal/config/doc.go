// Package config provides 12-factor configuration management for the
// component bridge and its host simulator.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Bridge: coalesced saving, theme acceptance, pending call lifetime
//   - Transport: host websocket URL, origin, buffer and size limits
//   - Server: host simulator listener and advertised environment
//   - Logging: Log level and output format
//   - Metrics: Prometheus listener
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	b := bridge.New(parent, cfg.BridgeConfig())
//
// Environment Variables:
//   - BRIDGE_COALESCED_SAVING, BRIDGE_SAVE_DELAY, BRIDGE_ACCEPTS_THEMES
//   - BRIDGE_PENDING_MAX_AGE, BRIDGE_LOG_MESSAGES, BRIDGE_PERMISSIONS
//   - BRIDGE_HOST_URL, BRIDGE_ORIGIN, BRIDGE_OUTBOUND_BUFFER
//   - BRIDGE_WRITE_TIMEOUT, BRIDGE_MAX_MESSAGE_SIZE
//   - PORT, HOST, HOST_ENVIRONMENT, METRICS_ADDR
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
