package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/GriffinCanCode/WebOS/internal/domain/desktop"
	"github.com/GriffinCanCode/WebOS/internal/domain/geometry"
	"github.com/GriffinCanCode/WebOS/internal/domain/permission"
	"github.com/GriffinCanCode/WebOS/internal/domain/session"
	"github.com/GriffinCanCode/WebOS/internal/domain/vfs"
	"github.com/GriffinCanCode/WebOS/internal/domain/worker"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/resilience"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusClientClosed is reported when the caller went away mid-request
const statusClientClosed = 499

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var taskErr *worker.TaskError

	switch {
	case errors.Is(err, desktop.ErrUnknownApp),
		errors.Is(err, desktop.ErrWindowNotFound),
		errors.Is(err, permission.ErrPromptNotFound),
		errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, permission.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, geometry.ErrGestureActive):
		return http.StatusConflict
	case errors.Is(err, worker.ErrPoolShutdown),
		errors.Is(err, resilience.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, permission.ErrUnknownChannel),
		errors.Is(err, permission.ErrInvalidDecision),
		errors.Is(err, worker.ErrUnknownTask),
		errors.Is(err, vfs.ErrEmptyPath),
		errors.Is(err, session.ErrEmptyName):
		return http.StatusBadRequest
	case errors.As(err, &taskErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosed
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status and logs server faults
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// badRequest writes a validation failure
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
