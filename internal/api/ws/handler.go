package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/GriffinCanCode/WebOS/internal/domain/desktop"
	"github.com/GriffinCanCode/WebOS/internal/domain/geometry"
	"github.com/GriffinCanCode/WebOS/internal/domain/permission"
	"github.com/GriffinCanCode/WebOS/internal/domain/worker"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxPendingReplies disconnects clients that stop reading
	maxPendingReplies = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Option configures a Handler
type Option func(*Handler)

// WithBounds keeps gesture frames inside the desktop area
func WithBounds(b geometry.Bounds) Option {
	return func(h *Handler) {
		h.bounds = &b
	}
}

// WithLogger sets the handler logger
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics records connection and message counts
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(h *Handler) {
		h.metrics = metrics
	}
}

// Handler manages WebSocket connections
type Handler struct {
	desktop *desktop.Manager
	broker  *permission.Broker
	pool    *worker.Pool
	bounds  *geometry.Bounds
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(d *desktop.Manager, broker *permission.Broker, pool *worker.Pool, opts ...Option) *Handler {
	h := &Handler{
		desktop: d,
		broker:  broker,
		pool:    pool,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleConnection upgrades the request and serves the stream until the
// client goes away
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	s := h.newSession(conn)
	s.run()
}

func (h *Handler) newSession(conn *websocket.Conn) *session {
	var opts []geometry.TrackerOption
	if h.bounds != nil {
		opts = append(opts, geometry.WithBounds(*h.bounds))
	}
	logger := h.logger.With(zap.String("remote", conn.RemoteAddr().String()))
	opts = append(opts, geometry.WithTrackerLogger(logger))

	return &session{
		h:       h,
		conn:    conn,
		tracker: geometry.NewTracker(h.desktop, opts...),
		logger:  logger,
		dirty:   make(map[string]bool),
		wake:    make(chan struct{}, 1),
	}
}

func (s *session) run() {
	ctx, cancel := context.WithCancel(context.Background())

	unsubscribe := []func(){
		s.h.desktop.Subscribe(func(types.DesktopSnapshot) { s.markDirty(TypeDesktop) }),
		s.h.pool.Subscribe(func(types.PoolSnapshot) { s.markDirty(TypeWorkers) }),
		s.h.broker.Subscribe(func(types.PermissionSnapshot) { s.markDirty(TypePrompt) }),
	}

	hello := newMessage(TypeHello)
	hello.Message = "Connected to WebOS desktop"
	s.reply(hello)
	s.markDirty(TypeDesktop, TypeWorkers, TypePrompt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(ctx)
	}()

	s.logger.Debug("Stream connected")
	s.readLoop()

	for _, fn := range unsubscribe {
		fn()
	}
	s.tracker.Close()
	cancel()
	<-done
	s.conn.Close()
	s.logger.Debug("Stream disconnected")
}
