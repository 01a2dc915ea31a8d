// Package middleware provides HTTP middleware for the host simulator.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting
//
// Rate Limiting:
//   - Per-IP tracking with idle client cleanup
//   - Token bucket algorithm
//   - Configurable RPS and burst capacity
//   - Global rate limiting option
//   - NewLimiter for non-HTTP traffic such as websocket messages
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
