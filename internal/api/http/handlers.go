package http

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/WebOS/internal/domain/desktop"
	"github.com/GriffinCanCode/WebOS/internal/domain/permission"
	"github.com/GriffinCanCode/WebOS/internal/domain/registry"
	"github.com/GriffinCanCode/WebOS/internal/domain/session"
	"github.com/GriffinCanCode/WebOS/internal/domain/vfs"
	"github.com/GriffinCanCode/WebOS/internal/domain/worker"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root and health endpoints
const Version = "0.3.0"

// Services bundles the components the handlers operate on
type Services struct {
	Catalog  *registry.Catalog
	Desktop  *desktop.Manager
	Broker   *permission.Broker
	Pool     *worker.Pool
	Files    *vfs.Store
	Sessions *session.Manager
	Metrics  *monitoring.Metrics
}

// Handlers contains all HTTP handlers
type Handlers struct {
	catalog  *registry.Catalog
	desktop  *desktop.Manager
	broker   *permission.Broker
	pool     *worker.Pool
	files    *vfs.Store
	sessions *session.Manager
	metrics  *monitoring.Metrics
	jobs     *jobTracker
	logger   *zap.Logger
	started  time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(svc Services, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		catalog:  svc.Catalog,
		desktop:  svc.Desktop,
		broker:   svc.Broker,
		pool:     svc.Pool,
		files:    svc.Files,
		sessions: svc.Sessions,
		metrics:  svc.Metrics,
		jobs:     newJobTracker(maxTrackedJobs),
		logger:   logger,
		started:  time.Now(),
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "WebOS desktop backend",
		"version": Version,
	})
}

// Health reports the state of every component
func (h *Handlers) Health(c *gin.Context) {
	pool := h.pool.Snapshot()
	perms := h.broker.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": Version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"apps":    h.catalog.Len(),
		"desktop": h.desktop.Stats(),
		"workers": gin.H{
			"size":   pool.Size,
			"active": len(pool.ActiveJobs),
			"queued": len(pool.Queue),
		},
		"permissions": gin.H{
			"pending": len(perms.Pending),
		},
	})
}

// MetricsSnapshot returns the JSON view of the collected metrics
func (h *Handlers) MetricsSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.GetSnapshot())
}
