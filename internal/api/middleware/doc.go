// Package middleware provides the HTTP middleware stack for the desktop backend.
//
// Middleware stack includes:
//   - RequestID: tags requests with a prefixed ULID (X-Request-ID)
//   - Logger: one zap line per request, level by status
//   - Recovery: panic recovery with a JSON 500
//   - CORS: cross-origin resource sharing with configurable origins
//   - RateLimit: per-IP token bucket rate limiting with idle client eviction
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
