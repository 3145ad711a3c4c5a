// Package http provides the REST surface of the desktop backend.
//
// Handlers are thin: they validate input, call one domain component and map
// its errors to status codes (see statusFor). State changes made here reach
// websocket subscribers through the components' own notifications.
//
// Endpoints:
//   - Health: / and /health, /metrics/json
//   - Apps: /apps, /apps/:id
//   - Desktop: /desktop, /windows, /windows/:id and its focus, minimize,
//     toggle, position and geometry actions
//   - Permissions: /permissions, /permissions/:id/resolve
//   - Files: /files, /files/*path (GET, PUT, PATCH to rename, DELETE), /storage
//   - Jobs: /jobs, /jobs/:id
//   - Sessions: /sessions, /sessions/:id, /sessions/:id/restore
//   - Logs: /logs
//
// Example Usage:
//
//	handlers := http.NewHandlers(http.Services{...}, logger)
//	handlers.Register(router)
package http
