// Package main runs a terminal note editor as a bridged component.
//
// It dials a host over WebSocket, completes the component handshake and
// edits the host's context item line by line. See package editor for
// the command set.
//
// Usage:
//
//	./component -host ws://localhost:8000/component -origin http://localhost
//
// Metrics are served on -metrics (default :9090) while the editor runs.
package main
