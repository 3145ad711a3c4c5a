package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Worker    WorkerConfig
	Storage   StorageConfig
	Desktop   DesktopConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// MaxConnections caps concurrent connections, websockets included. Zero disables the cap.
	MaxConnections int `envconfig:"MAX_CONNECTIONS" default:"1024"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// WorkerConfig holds worker pool configuration.
type WorkerConfig struct {
	PoolSize      int           `envconfig:"WORKER_POOL_SIZE" default:"3"`
	ScriptTimeout time.Duration `envconfig:"WORKER_SCRIPT_TIMEOUT" default:"2s"`
}

// StorageConfig holds virtual file store configuration.
type StorageConfig struct {
	Backend    string `envconfig:"STORAGE_BACKEND" default:"memory"`
	Path       string `envconfig:"STORAGE_PATH" default:"webos.db"`
	QuotaBytes int64  `envconfig:"STORAGE_QUOTA_BYTES" default:"5242880"`
}

// DesktopConfig holds window manager configuration.
type DesktopConfig struct {
	AppsDir string `envconfig:"APPS_DIR" default:""`
	Clamp   bool   `envconfig:"DESKTOP_CLAMP" default:"false"`
	Width   int    `envconfig:"DESKTOP_WIDTH" default:"1920"`
	Height  int    `envconfig:"DESKTOP_HEIGHT" default:"1080"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot constrain on its own.
func (c *Config) Validate() error {
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("MAX_CONNECTIONS must not be negative")
	}
	if c.Worker.PoolSize < 1 {
		return fmt.Errorf("WORKER_POOL_SIZE must be at least 1, got %d", c.Worker.PoolSize)
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.Storage.QuotaBytes < 0 {
		return fmt.Errorf("STORAGE_QUOTA_BYTES must not be negative")
	}
	if c.Desktop.Clamp && (c.Desktop.Width <= 0 || c.Desktop.Height <= 0) {
		return fmt.Errorf("desktop bounds must be positive when clamping")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8000",
			Host:           "0.0.0.0",
			MaxConnections: 1024,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Worker: WorkerConfig{
			PoolSize:      3,
			ScriptTimeout: 2 * time.Second,
		},
		Storage: StorageConfig{
			Backend:    BackendMemory,
			Path:       "webos.db",
			QuotaBytes: 5 * 1024 * 1024,
		},
		Desktop: DesktopConfig{
			Width:  1920,
			Height: 1080,
		},
	}
}
