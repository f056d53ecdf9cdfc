package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentist-sync/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Port:          "0",
		JWTSecret:     "test-secret",
		RemoteBackend: config.BackendMemory,
		LocalDBPath:   filepath.Join(dir, "clinic.db"),
		LogFile:       filepath.Join(dir, "agent.log"),
		CORSOrigins:   []string{"http://localhost:5173"},
	}
}

func TestNewMemoryBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(ctx)
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r := a.Router()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("healthz = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "clinicsync_status") {
		t.Errorf("metrics = %d %s", w.Code, w.Body.String())
	}

	if a.Handler.Assistant != nil || a.Handler.Notifier != nil {
		t.Error("outer services enabled without keys")
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if !strings.Contains(string(data), "[app] Remote backend: memory") {
		t.Errorf("log = %q", data)
	}
}

func TestNewRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.RemoteBackend = config.BackendRedis
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"
	cfg.GeminiAPIKey = "k"

	ctx := context.Background()
	a, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(ctx)
	if err := a.Remote.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if a.Handler.Assistant == nil {
		t.Error("assistant not enabled")
	}
}

func TestNewUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.RemoteBackend = "dropbox"
	if _, err := New(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "dropbox") {
		t.Errorf("err = %v", err)
	}
}
