// Package main runs the switcher backend server.
//
// The server owns the authoritative app list: views read it over HTTP,
// receive every change over WebSocket and post events back.
//
// Configuration:
//   - Environment variables (PORT, HOST, LOG_LEVEL, LOG_DEV, RATE_LIMIT_*,
//     SWITCHER_SNAPSHOT_PATH, SWITCHER_MAX_SNAPSHOT_BYTES)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Start from a persisted snapshot
//	./server -snapshot ~/.config/switcher/storage.json
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
