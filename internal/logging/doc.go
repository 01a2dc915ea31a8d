// Package logging provides structured logging using uber/zap.
//
// This package offers two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The bridge and transport packages take a plain *zap.Logger; this
// package only builds one from configuration.
//
// Example Usage:
//
//	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
//	defer logger.Sync()
//	bridgeCfg.Logger = logger.Logger
package logging
