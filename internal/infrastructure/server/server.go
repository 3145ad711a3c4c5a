package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/GriffinCanCode/WebOS/internal/api/http"
	"github.com/GriffinCanCode/WebOS/internal/api/middleware"
	"github.com/GriffinCanCode/WebOS/internal/api/ws"
	"github.com/GriffinCanCode/WebOS/internal/domain/desktop"
	"github.com/GriffinCanCode/WebOS/internal/domain/geometry"
	"github.com/GriffinCanCode/WebOS/internal/domain/permission"
	"github.com/GriffinCanCode/WebOS/internal/domain/registry"
	"github.com/GriffinCanCode/WebOS/internal/domain/session"
	"github.com/GriffinCanCode/WebOS/internal/domain/vfs"
	"github.com/GriffinCanCode/WebOS/internal/domain/worker"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/config"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/resilience"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and the desktop components
type Server struct {
	router  *gin.Engine
	http    *nethttp.Server
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics

	catalog  *registry.Catalog
	desktop  *desktop.Manager
	broker   *permission.Broker
	pool     *worker.Pool
	files    *vfs.Store
	sessions *session.Manager
	sqlite   *vfs.SQLiteBackend

	shutdownOnce sync.Once
	shutdownErr  error
}

// Option configures a Server
type Option func(*options)

type options struct {
	logger     *logging.Logger
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// WithLogger uses logger instead of building one from the config
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry registers metrics on reg and serves /metrics from it
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registerer = reg
		o.gatherer = reg
	}
}

// New builds every component and the router. It launches the auto-start apps.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	logger.Info("Initializing WebOS server",
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.Int("workers", cfg.Worker.PoolSize),
	)

	metrics := monitoring.NewMetrics(o.registerer)

	catalog, err := buildCatalog(cfg.Desktop.AppsDir, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		catalog: catalog,
	}

	s.desktop = desktop.NewManager(catalog,
		desktop.WithLogger(logger.Component("desktop")),
		desktop.WithMetrics(metrics))
	s.broker = permission.NewBroker(
		permission.WithLogger(logger.Component("permission")),
		permission.WithMetrics(metrics))
	s.pool = worker.NewPool(cfg.Worker.PoolSize, worker.BuiltinTasks(cfg.Worker.ScriptTimeout),
		worker.WithLogger(logger.Component("worker")),
		worker.WithMetrics(metrics))

	backend, err := s.openBackend()
	if err != nil {
		s.pool.Destroy()
		return nil, err
	}
	s.files = vfs.NewStore(backend, s.broker,
		vfs.WithQuota(cfg.Storage.QuotaBytes),
		vfs.WithLogger(logger.Component("vfs")),
		vfs.WithMetrics(metrics))
	s.sessions = session.NewManager(s.desktop, backend,
		session.WithLogger(logger.Component("session")),
		session.WithMetrics(metrics))

	s.router = s.buildRouter(o.gatherer)
	s.http = &nethttp.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	launched := s.desktop.LaunchAutoStart()
	logger.Info("Server initialized successfully",
		zap.Int("apps", catalog.Len()),
		zap.Int("autostarted", len(launched)),
	)

	return s, nil
}

func buildCatalog(appsDir string, logger *logging.Logger) (*registry.Catalog, error) {
	b := registry.NewBuilder()
	registry.RegisterBuiltins(b)

	if appsDir != "" {
		info, err := os.Stat(appsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open apps dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("apps dir %s is not a directory", appsDir)
		}

		seeder := registry.NewSeeder(os.DirFS(appsDir), logger.Component("registry"))
		result, err := seeder.Seed(b)
		if err != nil {
			return nil, fmt.Errorf("failed to seed apps from %s: %w", appsDir, err)
		}
		logger.Info("Loaded app manifests",
			zap.String("dir", appsDir),
			zap.Int("loaded", result.Loaded),
			zap.Int("failed", result.Failed),
		)
	}

	return b.Build(), nil
}

func (s *Server) openBackend() (vfs.Backend, error) {
	cfg := s.config.Storage
	if cfg.Backend != config.BackendSQLite {
		return vfs.NewMemoryBackend(), nil
	}

	sqlite, err := vfs.OpenSQLite(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	s.sqlite = sqlite

	log := s.logger.Component("storage")
	breaker := resilience.New("storage", resilience.Settings{
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	s.logger.Info("Opened SQLite storage", zap.String("path", cfg.Path))
	return vfs.NewGuardedBackend(sqlite, breaker), nil
}

func (s *Server) buildRouter(gatherer prometheus.Gatherer) *gin.Engine {
	if !s.config.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	httpLog := s.logger.Component("http")
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(httpLog))
	router.Use(middleware.Logger(httpLog))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if s.config.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", s.config.RateLimit.RequestsPerSecond),
			zap.Int("burst", s.config.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: s.config.RateLimit.RequestsPerSecond,
			Burst:             s.config.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(http.Services{
		Catalog:  s.catalog,
		Desktop:  s.desktop,
		Broker:   s.broker,
		Pool:     s.pool,
		Files:    s.files,
		Sessions: s.sessions,
		Metrics:  s.metrics,
	}, s.logger.Component("api"))
	handlers.Register(router)

	wsOpts := []ws.Option{
		ws.WithLogger(s.logger.Component("ws")),
		ws.WithMetrics(s.metrics),
	}
	if s.config.Desktop.Clamp {
		wsOpts = append(wsOpts, ws.WithBounds(geometry.Bounds{
			Width:  s.config.Desktop.Width,
			Height: s.config.Desktop.Height,
		}))
	}
	wsHandler := ws.NewHandler(s.desktop, s.broker, s.pool, wsOpts...)
	router.GET("/stream", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return router
}

// Handler returns the root HTTP handler
func (s *Server) Handler() nethttp.Handler {
	return s.router
}

// Desktop returns the window manager
func (s *Server) Desktop() *desktop.Manager {
	return s.desktop
}

// Run serves until Shutdown is called
func (s *Server) Run() error {
	addr := s.http.Addr
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if limit := s.config.Server.MaxConnections; limit > 0 {
		ln = netutil.LimitListener(ln, limit)
	}

	s.logger.Info("Starting HTTP server",
		zap.String("addr", addr),
		zap.Int("max_connections", s.config.Server.MaxConnections))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, then tears down the worker pool and
// storage. Websocket sessions end when their connections close. Calls after
// the first return the first result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.shutdownErr = s.shutdown(ctx)
	})
	return s.shutdownErr
}

func (s *Server) shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop http server: %w", err))
	}

	s.pool.Destroy()

	if s.sqlite != nil {
		if err := s.sqlite.Close(); err != nil {
			s.logger.Error("Failed to close storage", zap.Error(err))
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		}
	}

	_ = s.logger.Sync()
	return errors.Join(errs...)
}
