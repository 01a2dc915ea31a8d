// Package main is the entry point for the component host simulator.
//
// The simulator stands in for the host application during component
// development. Components connect over WebSocket, receive a
// component-registered handshake and get replies to their calls from an
// in-memory item store.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	./server -port 8000 -environment desktop
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
//	# Push a theme to every connected component
//	curl -X POST localhost:8000/themes -d '{"themes":["https://example.com/dark.css"]}'
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
