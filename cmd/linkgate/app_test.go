package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/linkgate/pkg/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildApp_Memory(t *testing.T) {
	cfg := config.NewDefault()
	cfg.RateLimit.RateLimit = 2

	a, err := buildApp(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("buildApp failed: %v", err)
	}
	defer a.Close()

	if a.registry == nil {
		t.Fatal("Expected a rate limit registry")
	}
	if a.scheduler != nil {
		t.Error("Expected no retention scheduler when retention is disabled")
	}

	h := a.server.Handler()

	req := httptest.NewRequest(http.MethodPost, "/shorten", strings.NewReader(`{"url":"https://example.com/a"}`))
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /shorten = %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ShortCode string `json:"short_code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/"+created.ShortCode, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("GET /{code} = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://example.com/a" {
		t.Errorf("Location = %q", loc)
	}

	// Third request from the same client exceeds the limit of 2.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Third request = %d, want 429", rec.Code)
	}

	if a.registry.Len() != 1 {
		t.Errorf("registry.Len() = %d, want 1", a.registry.Len())
	}
}

func TestBuildApp_SQLiteWithRetention(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Store.Backend = "sqlite"
	cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "links.db")
	cfg.Store.Retention.Days = 7
	cfg.RateLimit.Enabled = false

	a, err := buildApp(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("buildApp failed: %v", err)
	}

	if a.registry != nil {
		t.Error("Expected no registry when rate limiting is disabled")
	}
	if a.scheduler == nil {
		t.Fatal("Expected a retention scheduler")
	}

	rec, err := a.service.Shorten(context.Background(), "https://example.com/kept")
	if err != nil {
		t.Fatalf("Shorten failed: %v", err)
	}
	if rec.ExpiresAt.IsZero() {
		t.Error("Expected an expiry with retention enabled")
	}
	if n := a.scheduler.RunOnce(context.Background()); n != 0 {
		t.Errorf("RunOnce pruned %d live links", n)
	}

	if err := a.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestBuildApp_UnknownBackend(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Store.Backend = "cassandra"

	if _, err := buildApp(context.Background(), cfg, discardLogger()); err == nil {
		t.Fatal("Expected error for unknown backend")
	}
}

func TestBuildApp_ServeAndStop(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Server.ListenAddress = "127.0.0.1:0"

	a, err := buildApp(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("buildApp failed: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- a.server.Start(ctx) }()

	select {
	case <-a.server.Ready():
	case err := <-errChan:
		t.Fatalf("Start failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not become ready")
	}

	resp, err := http.Get("http://" + a.server.Addr() + "/ready")
	if err != nil {
		t.Fatalf("GET /ready failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Start returned %v after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not stop")
	}
}
