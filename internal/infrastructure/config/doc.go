// Package config provides 12-factor configuration management for the desktop backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Worker: Worker pool size and script task timeout
//   - Storage: Virtual file store backend, path and quota
//   - Desktop: App manifest directory and desktop bounds
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, MAX_CONNECTIONS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - WORKER_POOL_SIZE, WORKER_SCRIPT_TIMEOUT
//   - STORAGE_BACKEND, STORAGE_PATH, STORAGE_QUOTA_BYTES
//   - APPS_DIR, DESKTOP_CLAMP, DESKTOP_WIDTH, DESKTOP_HEIGHT
package config
