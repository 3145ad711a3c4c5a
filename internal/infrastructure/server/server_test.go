package server

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/WebOS/internal/api/middleware"
	"github.com/GriffinCanCode/WebOS/internal/domain/registry"
	"github.com/GriffinCanCode/WebOS/internal/domain/vfs"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/config"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	s, err := New(cfg,
		WithLogger(logging.NewNop()),
		WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, path, nil))
	return w
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNewLaunchesAutoStartApps(t *testing.T) {
	s := newTestServer(t, config.Default())

	var apps []string
	for _, w := range s.Desktop().Windows() {
		apps = append(apps, w.AppID)
	}
	assert.ElementsMatch(t, []string{registry.AppWelcome, registry.AppPermissions}, apps)
}

func TestRoutesAndMiddleware(t *testing.T) {
	s := newTestServer(t, config.Default())

	w := get(t, s, "/health")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])

	w = get(t, s, "/metrics")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "webos_http_requests_total")
	assert.Contains(t, w.Body.String(), "webos_windows_open")
}

func TestSeedsAppsDir(t *testing.T) {
	dir := t.TempDir()
	manifest := "id: notes\ntitle: Notes\ndefault_size:\n  width: 400\n  height: 300\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.yaml"), []byte(manifest), 0o644))

	cfg := config.Default()
	cfg.Desktop.AppsDir = dir
	s := newTestServer(t, cfg)

	w := get(t, s, "/apps/notes")
	assert.Equal(t, nethttp.StatusOK, w.Code)
}

func TestMissingAppsDir(t *testing.T) {
	cfg := config.Default()
	cfg.Desktop.AppsDir = filepath.Join(t.TempDir(), "missing")

	_, err := New(cfg, WithLogger(logging.NewNop()), WithRegistry(prometheus.NewRegistry()))
	assert.Error(t, err)
}

func TestSQLiteStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendSQLite
	cfg.Storage.Path = filepath.Join(t.TempDir(), "webos.db")
	s := newTestServer(t, cfg)
	require.NotNil(t, s.sqlite)

	// The first file request raises the storage prompt; answer it the way
	// the permission gateway would.
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- serve(s, nethttp.MethodPut, "/files/notes.txt", `{"content":"hello"}`)
	}()

	var head types.Prompt
	require.Eventually(t, func() bool {
		var ok bool
		head, ok = s.broker.Head()
		return ok
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, types.ChannelStorage, head.Channel)
	require.NoError(t, s.broker.Resolve(head.ID, types.DecisionGranted))

	select {
	case w := <-done:
		require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	case <-time.After(2 * time.Second):
		t.Fatal("write did not finish after the prompt was granted")
	}

	w := get(t, s, "/files/notes.txt")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello")
	assert.Equal(t, nethttp.StatusOK, get(t, s, "/storage").Code)

	require.NoError(t, s.Shutdown(context.Background()))

	reopened, err := vfs.OpenSQLite(cfg.Storage.Path)
	require.NoError(t, err)
	defer reopened.Close()

	_, ok, err := reopened.Get(context.Background(), vfs.KeyPrefix+"notes.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimitToggle(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1
	s := newTestServer(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, get(t, s, "/health").Code)
	}
	assert.Contains(t, codes, nethttp.StatusTooManyRequests)

	cfg = config.Default()
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1
	s = newTestServer(t, cfg)
	for i := 0; i < 3; i++ {
		assert.Equal(t, nethttp.StatusOK, get(t, s, "/health").Code)
	}
}

func TestShutdownWithoutRun(t *testing.T) {
	s, err := New(config.Default(), WithLogger(logging.NewNop()), WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)

	require.NoError(t, s.Shutdown(context.Background()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodPost, "/jobs", strings.NewReader(`{"task":"ping","wait":true}`))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, nethttp.StatusServiceUnavailable, w.Code)
}

func TestRunAfterShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Server.MaxConnections = 4
	s := newTestServer(t, cfg)

	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, s.Run())
	assert.NoError(t, s.Shutdown(context.Background()))
}
