// Package server provides the HTTP server for the host simulator.
//
// The simulator plays the host application for components under
// development: it registers each component that connects over WebSocket,
// answers its calls from an in-memory item store, and lets an operator
// push theme changes.
//
// Routes:
//   - GET  /component    WebSocket endpoint for components
//   - POST /themes       {"themes": [...]} broadcast to every component
//   - GET  /items        stored items, optional ?content_type=
//   - GET  /items/:id    one stored item
//   - GET  /health       liveness and connection count
//   - GET  /metrics      Prometheus exposition
//   - GET  /metrics/json snapshot of counters
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = srv.Run(ctx)
package server
