package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Logging.Level = "error"
	cfg.Storage.Driver = "memory"
	cfg.Blob.Dir = t.TempDir()
	cfg.Blob.PublicURL = "http://localhost:3000/files"
	return cfg
}

func TestNewServerRoutes(t *testing.T) {
	cfg := testConfig(t)
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	for _, path := range []string{"/", "/health", "/api/landscape/categories"} {
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Trace-ID"), path)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dwpnxt_http_requests_total")

	// Local objects are served under the public URL path
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Blob.Dir, "t.csv"), []byte("a,b\n"), 0o644))
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/t.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a,b\n", w.Body.String())
}

func TestNewServerRejectsBadStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "sqlite"

	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "/blobs", staticMount("http://localhost:3000"))
	assert.Equal(t, "/files", staticMount("http://localhost:3000/files/"))

	cfg := config.Default()
	assert.Equal(t, []string{"http://localhost:3000/blobs/"}, allowedSources(cfg))
	cfg.Analysis.AllowedSources = []string{"https://cdn.example/"}
	assert.Equal(t, []string{"https://cdn.example/"}, allowedSources(cfg))
}
