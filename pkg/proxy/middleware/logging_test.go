package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/linkgate/pkg/telemetry/logging"
)

type requestLog struct {
	method   string
	status   int
	duration time.Duration
}

type requestLogRecorder struct {
	entries []requestLog
}

func (r *requestLogRecorder) RecordHTTPRequest(method string, status int, duration time.Duration) {
	r.entries = append(r.entries, requestLog{method, status, duration})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	wrapped := LoggingMiddleware(handler)
	req := httptest.NewRequest(http.MethodPost, "/shorten", nil)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	out := buf.String()
	if !strings.Contains(out, "request completed") {
		t.Fatalf("Expected completion log, got %q", out)
	}
	if !strings.Contains(out, "status=418") || !strings.Contains(out, "level=WARN") {
		t.Errorf("Expected WARN with status 418, got %q", out)
	}
}

func TestLoggingMiddleware_IncludesClientKey(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	prev := slog.Default()
	logger.SetDefault()
	defer slog.SetDefault(prev)

	reg, _ := newTestRegistry(t, 1, 60)
	h := LoggingMiddleware(RateLimitMiddleware(reg, WithLogger(quietLogger()))(&countingHandler{}))

	get(h, "192.0.2.10:4444", nil)
	get(h, "192.0.2.10:4444", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 completion logs, got %d: %q", len(lines), buf.String())
	}
	for i, wantStatus := range []float64{200, 429} {
		var entry map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &entry); err != nil {
			t.Fatalf("Line %d is not JSON: %v", i, err)
		}
		if entry["msg"] != "request completed" || entry["status"] != wantStatus {
			t.Errorf("Line %d: unexpected entry %v", i, entry)
		}
		if entry["client"] != "192.0.2.10" {
			t.Errorf("Line %d: expected client 192.0.2.10, got %v", i, entry["client"])
		}
	}
}

func TestLoggingMiddleware_NotFoundIsInfo(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	wrapped := LoggingMiddleware(http.NotFoundHandler())
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if !strings.Contains(buf.String(), "level=INFO") {
		t.Errorf("Expected 404 at INFO, got %q", buf.String())
	}
}

func TestMetricsMiddleware(t *testing.T) {
	recorder := &requestLogRecorder{}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}), MetricsMiddleware(recorder))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(recorder.entries) != 1 {
		t.Fatalf("Expected 1 observation, got %d", len(recorder.entries))
	}
	if recorder.entries[0].method != http.MethodGet || recorder.entries[0].status != http.StatusOK {
		t.Errorf("Unexpected observation: %+v", recorder.entries[0])
	}
}

func TestMetricsMiddleware_ObservesRejections(t *testing.T) {
	reg, _ := newTestRegistry(t, 1, 60)
	recorder := &requestLogRecorder{}

	h := Chain(&countingHandler{},
		MetricsMiddleware(recorder),
		RateLimitMiddleware(reg, WithLogger(quietLogger())),
	)

	get(h, "10.0.0.1:1", nil)
	get(h, "10.0.0.1:1", nil)

	if len(recorder.entries) != 2 {
		t.Fatalf("Expected 2 observations, got %d", len(recorder.entries))
	}
	if recorder.entries[1].status != http.StatusTooManyRequests {
		t.Errorf("Expected 429 to be observed, got %d", recorder.entries[1].status)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "outer,inner,handler" {
		t.Errorf("Unexpected order: %v", order)
	}
}

func TestResponseWriter_SharedAcrossLayers(t *testing.T) {
	w := httptest.NewRecorder()
	outer := newResponseWriter(w)
	inner := newResponseWriter(outer)

	if inner != outer {
		t.Error("Expected nested wrappers to be reused")
	}
	inner.WriteHeader(http.StatusCreated)
	if outer.statusCode != http.StatusCreated {
		t.Errorf("Expected shared status 201, got %d", outer.statusCode)
	}
}
