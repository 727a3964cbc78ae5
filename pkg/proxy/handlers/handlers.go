package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"mercator-hq/linkgate/pkg/proxy"
	"mercator-hq/linkgate/pkg/proxy/middleware"
	"mercator-hq/linkgate/pkg/proxy/types"
	"mercator-hq/linkgate/pkg/shortener"
	"mercator-hq/linkgate/pkg/shortener/storage"
)

// Shortener is the subset of *shortener.Service the handlers use.
type Shortener interface {
	Shorten(ctx context.Context, rawURL string) (*storage.URLRecord, error)
	Resolve(ctx context.Context, code string) (string, error)
	Redirect(ctx context.Context, code string) (string, error)
	Stats(ctx context.Context, code string) (*storage.URLRecord, error)
}

// Config configures the shortener handlers.
type Config struct {
	// BaseURL overrides the scheme and host of generated short URLs.
	// Empty derives them from each request.
	BaseURL string

	// MaxBodyBytes limits POST /shorten bodies.
	// Default: proxy.DefaultMaxBodyBytes
	MaxBodyBytes int64
}

// Register mounts the shortener endpoints on mux:
//
//	POST /shorten
//	GET  /stats/{code}
//	GET  /{code}
//
// Fixed routes registered elsewhere on the same mux (e.g. /health) take
// precedence over /{code}.
func Register(mux *http.ServeMux, svc Shortener, cfg Config) {
	mux.Handle("POST /shorten", NewShortenHandler(svc, cfg))
	mux.Handle("GET /stats/{code}", NewStatsHandler(svc))
	mux.Handle("GET /{code}", NewRedirectHandler(svc))
}

// ShortenHandler handles POST /shorten.
type ShortenHandler struct {
	svc    Shortener
	config Config
}

// NewShortenHandler creates a new shorten handler.
func NewShortenHandler(svc Shortener, cfg Config) *ShortenHandler {
	return &ShortenHandler{svc: svc, config: cfg}
}

// ServeHTTP implements http.Handler.
func (h *ShortenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := proxy.ParseShortenRequest(w, r, h.config.MaxBodyBytes)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rec, err := h.svc.Shorten(ctx, req.URL)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	slog.InfoContext(ctx, "link created", "code", rec.Code)

	resp := types.ShortenResponse{
		ShortCode:   rec.Code,
		OriginalURL: rec.OriginalURL,
		ShortURL:    proxy.ShortURL(r, h.config.BaseURL, rec.Code),
	}
	if err := proxy.WriteJSONResponse(w, http.StatusCreated, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// RedirectHandler handles GET /{code}.
type RedirectHandler struct {
	svc Shortener
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(svc Shortener) *RedirectHandler {
	return &RedirectHandler{svc: svc}
}

// ServeHTTP implements http.Handler. GET redirects count a click; HEAD
// resolves without counting.
func (h *RedirectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")

	if !shortener.ValidCode(code) {
		writeError(ctx, w, shortener.ErrNotFound)
		return
	}

	var (
		target string
		err    error
	)
	if r.Method == http.MethodHead {
		target, err = h.svc.Resolve(ctx, code)
	} else {
		target, err = h.svc.Redirect(ctx, code)
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Location", target)
	w.WriteHeader(http.StatusMovedPermanently)
}

// StatsHandler handles GET /stats/{code}.
type StatsHandler struct {
	svc Shortener
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc Shortener) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// ServeHTTP implements http.Handler.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")

	if !shortener.ValidCode(code) {
		writeError(ctx, w, shortener.ErrNotFound)
		return
	}

	rec, err := h.svc.Stats(ctx, code)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	resp := types.StatsResponse{
		ShortCode:   rec.Code,
		OriginalURL: rec.OriginalURL,
		CreatedAt:   rec.CreatedAt,
		ClickCount:  rec.ClickCount,
	}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// writeError maps err and writes it. Server-side failures are logged;
// client errors are already covered by the request log.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := proxy.HandleError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed",
			"request_id", middleware.GetRequestID(ctx),
			"status", status,
			"error", err,
		)
	}
	if err := proxy.WriteErrorResponse(w, status, body); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}
