// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Domain packages take a plain *zap.Logger; the server hands each one a
// named child via Logger.Component so log lines carry their subsystem.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	pool := worker.NewPool(3, worker.WithLogger(logger.Component("worker")))
package logging
