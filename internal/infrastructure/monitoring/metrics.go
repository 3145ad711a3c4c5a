package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. Every Record/Set method is safe to
// call on a nil *Metrics, so components can carry an optional collector.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Window manager metrics
	WindowsOpen prometheus.Gauge
	WindowOps   *prometheus.CounterVec

	// Worker pool metrics
	JobsActive  prometheus.Gauge
	QueueDepth  prometheus.Gauge
	JobsTotal   *prometheus.CounterVec
	JobDuration *prometheus.HistogramVec

	// Permission metrics
	PromptsPending    prometheus.Gauge
	PermissionResults *prometheus.CounterVec

	// File store metrics
	FileOps *prometheus.CounterVec

	// Session metrics
	SessionsSaved    prometheus.Counter
	SessionsRestored prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON health endpoint
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	WindowsOpen   int64   `json:"windows_open"`
	JobsActive    int64   `json:"jobs_active"`
	QueueDepth    int64   `json:"queue_depth"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector registered on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webos_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webos_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		WindowsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webos_windows_open",
				Help: "Number of open windows",
			},
		),
		WindowOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webos_window_operations_total",
				Help: "Window manager transitions by operation",
			},
			[]string{"op"},
		),

		JobsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webos_worker_jobs_active",
				Help: "Jobs currently bound to a worker",
			},
		),
		QueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webos_worker_queue_depth",
				Help: "Jobs waiting for a free worker",
			},
		),
		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webos_worker_jobs_total",
				Help: "Completed jobs by task and status",
			},
			[]string{"task", "status"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webos_worker_job_duration_seconds",
				Help:    "Time from dispatch to completion",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"task"},
		),

		PromptsPending: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webos_permission_prompts_pending",
				Help: "Permission prompts awaiting a decision",
			},
		),
		PermissionResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webos_permission_decisions_total",
				Help: "Permission decisions by channel",
			},
			[]string{"channel", "decision"},
		),

		FileOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webos_file_operations_total",
				Help: "Virtual file store operations",
			},
			[]string{"op", "status"},
		),

		SessionsSaved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "webos_sessions_saved_total",
				Help: "Desktop layouts saved",
			},
		),
		SessionsRestored: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "webos_sessions_restored_total",
				Help: "Desktop layouts restored",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webos_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webos_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "webos_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordWindowOp records a window manager transition and the resulting window count
func (m *Metrics) RecordWindowOp(op string, open int) {
	if m == nil {
		return
	}
	m.WindowOps.WithLabelValues(op).Inc()
	m.WindowsOpen.Set(float64(open))

	m.mu.Lock()
	m.snapshot.WindowsOpen = int64(open)
	m.mu.Unlock()
}

// SetPoolState records the worker pool occupancy
func (m *Metrics) SetPoolState(active, queued int) {
	if m == nil {
		return
	}
	m.JobsActive.Set(float64(active))
	m.QueueDepth.Set(float64(queued))

	m.mu.Lock()
	m.snapshot.JobsActive = int64(active)
	m.snapshot.QueueDepth = int64(queued)
	m.mu.Unlock()
}

// RecordJob records a finished job
func (m *Metrics) RecordJob(task, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(task, status).Inc()
	m.JobDuration.WithLabelValues(task).Observe(duration.Seconds())
}

// SetPromptsPending records the prompt queue length
func (m *Metrics) SetPromptsPending(count int) {
	if m == nil {
		return
	}
	m.PromptsPending.Set(float64(count))
}

// RecordPermissionDecision records a resolved prompt
func (m *Metrics) RecordPermissionDecision(channel, decision string) {
	if m == nil {
		return
	}
	m.PermissionResults.WithLabelValues(channel, decision).Inc()
}

// RecordFileOp records a virtual file store operation
func (m *Metrics) RecordFileOp(op string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FileOps.WithLabelValues(op, status).Inc()
}

// IncSessionsSaved increments the sessions saved counter
func (m *Metrics) IncSessionsSaved() {
	if m == nil {
		return
	}
	m.SessionsSaved.Inc()
}

// IncSessionsRestored increments the sessions restored counter
func (m *Metrics) IncSessionsRestored() {
	if m == nil {
		return
	}
	m.SessionsRestored.Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// GetSnapshot returns the current values for JSON consumers
func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
