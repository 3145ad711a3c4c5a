// Package main is the entry point for the WebOS desktop backend.
//
// The server hosts the window manager, app catalog, permission broker,
// worker pool and virtual file store behind a REST API, and streams desktop
// state and drag/resize gestures over a websocket.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -apps ./apps -workers 4
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
