// Package server wires the desktop backend together.
//
// New builds every component from a config.Config and mounts them on one
// Gin router:
//   - app catalog: built-in apps plus manifests from APPS_DIR
//   - window manager, permission broker and worker pool
//   - virtual file store over memory or SQLite; SQLite sits behind a
//     circuit breaker
//   - middleware: request ids, recovery, request logging, metrics, CORS
//     and optional per-client rate limiting
//   - REST routes, the /stream websocket and Prometheus /metrics
//
// Server Lifecycle:
//  1. Load configuration from environment and flags
//  2. Build the logger (production or development)
//  3. Build the catalog and desktop components
//  4. Open storage
//  5. Register routes and middleware
//  6. Launch auto-start apps
//  7. Serve until Shutdown
//  8. Stop the worker pool and close storage
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go srv.Run()
//	defer srv.Shutdown(context.Background())
package server
