package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 1024, cfg.Server.MaxConnections)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Worker config
	assert.Equal(t, 3, cfg.Worker.PoolSize)
	assert.Equal(t, 2*time.Second, cfg.Worker.ScriptTimeout)

	// Storage config
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, int64(5242880), cfg.Storage.QuotaBytes)

	// Desktop config
	assert.False(t, cfg.Desktop.Clamp)
	assert.Equal(t, 1920, cfg.Desktop.Width)
	assert.Equal(t, 1080, cfg.Desktop.Height)

	assert.NoError(t, cfg.Validate())
}

func TestLoadOrDefault(t *testing.T) {
	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Worker.PoolSize)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                  "9000",
		"HOST":                  "127.0.0.1",
		"MAX_CONNECTIONS":       "64",
		"LOG_LEVEL":             "debug",
		"LOG_DEV":               "true",
		"RATE_LIMIT_RPS":        "500",
		"RATE_LIMIT_BURST":      "1000",
		"RATE_LIMIT_ENABLED":    "false",
		"WORKER_POOL_SIZE":      "8",
		"WORKER_SCRIPT_TIMEOUT": "500ms",
		"STORAGE_BACKEND":       "sqlite",
		"STORAGE_PATH":          "/tmp/files.db",
		"STORAGE_QUOTA_BYTES":   "1024",
		"APPS_DIR":              "/etc/webos/apps",
		"DESKTOP_CLAMP":         "true",
		"DESKTOP_WIDTH":         "1280",
		"DESKTOP_HEIGHT":        "720",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 64, cfg.Server.MaxConnections)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)

	assert.Equal(t, 8, cfg.Worker.PoolSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Worker.ScriptTimeout)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/files.db", cfg.Storage.Path)
	assert.Equal(t, int64(1024), cfg.Storage.QuotaBytes)

	assert.Equal(t, "/etc/webos/apps", cfg.Desktop.AppsDir)
	assert.True(t, cfg.Desktop.Clamp)
	assert.Equal(t, 1280, cfg.Desktop.Width)
	assert.Equal(t, 720, cfg.Desktop.Height)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "malformed integer",
			env:  map[string]string{"WORKER_POOL_SIZE": "lots"},
		},
		{
			name: "empty pool",
			env:  map[string]string{"WORKER_POOL_SIZE": "0"},
		},
		{
			name: "negative connection cap",
			env:  map[string]string{"MAX_CONNECTIONS": "-1"},
		},
		{
			name: "unknown backend",
			env:  map[string]string{"STORAGE_BACKEND": "redis"},
		},
		{
			name: "clamp without bounds",
			env:  map[string]string{"DESKTOP_CLAMP": "true", "DESKTOP_WIDTH": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			assert.Error(t, err)

			cfg := LoadOrDefault()
			assert.Equal(t, Default(), cfg)
		})
	}
}
