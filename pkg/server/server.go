// Package server provides the linkgate HTTP server.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"

	"mercator-hq/linkgate/pkg/config"
	"mercator-hq/linkgate/pkg/limits/ratelimit"
	"mercator-hq/linkgate/pkg/proxy/handlers"
	"mercator-hq/linkgate/pkg/proxy/middleware"
	"mercator-hq/linkgate/pkg/telemetry/health"
	"mercator-hq/linkgate/pkg/telemetry/metrics"
)

// VersionInfo is reported by GET /version.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Dependencies are the components the server routes requests to.
type Dependencies struct {
	// Shortener serves /shorten, /stats/{code} and /{code}. Required.
	Shortener handlers.Shortener

	// Registry gates every request when rate limiting is enabled.
	// Required when cfg.RateLimit.Enabled is true.
	Registry *ratelimit.Registry

	// Metrics records request and limiter metrics and serves the metrics
	// endpoint. Nil disables both.
	Metrics *metrics.Collector

	// Health serves /health and /ready. Nil uses a checker with no checks.
	Health *health.Checker

	// Version is reported by /version.
	Version VersionInfo

	// Logger is used for server lifecycle and denial messages.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Server is the linkgate HTTP server.
type Server struct {
	config     *config.Config
	deps       Dependencies
	logger     *slog.Logger
	httpServer *http.Server

	ready        chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         string
}

// NewServer creates a new server. It returns an error when a required
// dependency is missing.
func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if deps.Shortener == nil {
		return nil, fmt.Errorf("shortener cannot be nil")
	}
	if cfg.RateLimit.Enabled && deps.Registry == nil {
		return nil, fmt.Errorf("rate limiting is enabled but no registry was provided")
	}
	if deps.Health == nil {
		deps.Health = health.New(0)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config: cfg,
		deps:   deps,
		logger: logger.With("component", "server"),
		ready:  make(chan struct{}),
	}, nil
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully. It returns nil after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	srvCfg := s.config.Server
	s.httpServer = &http.Server{
		Addr:           srvCfg.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    srvCfg.ReadTimeout,
		WriteTimeout:   srvCfg.WriteTimeout,
		IdleTimeout:    srvCfg.IdleTimeout,
		MaxHeaderBytes: srvCfg.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	tlsEnabled := srvCfg.TLS.Enabled()
	if tlsEnabled {
		tlsConfig, err := s.configureTLS(ctx)
		if err != nil {
			s.setRunning(false)
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	ln, err := net.Listen("tcp", srvCfg.ListenAddress)
	if err != nil {
		s.setRunning(false)
		return fmt.Errorf("failed to listen on %s: %w", srvCfg.ListenAddress, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()
	close(s.ready)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"address", ln.Addr().String(),
			"tls_enabled", tlsEnabled,
			"rate_limit_enabled", s.config.RateLimit.Enabled,
		)

		var err error
		if tlsEnabled {
			err = s.httpServer.ServeTLS(ln, "", "")
		} else {
			err = s.httpServer.Serve(ln)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.setRunning(false)
		return err
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if !s.IsRunning() {
			return
		}

		timeout := s.config.Server.ShutdownTimeout
		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.setRunning(false)
		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// Handler returns the fully wrapped HTTP handler.
//
// Chain, outermost first: recovery, request ID, logging, metrics, rate
// limit, then the mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.deps.Health.Register(mux, s.deps.Version.Version, s.deps.Version.Commit, s.deps.Version.BuildTime)

	collector := s.deps.Metrics
	metricsEnabled := collector != nil && collector.Enabled()
	metricsPath := s.config.Telemetry.Metrics.Path
	if metricsEnabled {
		mux.Handle("GET "+metricsPath, collector.Handler())
	}

	handlers.Register(mux, s.deps.Shortener, handlers.Config{
		BaseURL:      s.config.Server.BaseURL,
		MaxBodyBytes: s.config.Server.MaxBodyBytes,
	})

	chain := []func(http.Handler) http.Handler{
		middleware.RecoveryMiddleware,
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware,
	}
	if metricsEnabled {
		chain = append(chain, middleware.MetricsMiddleware(collector))
	}
	if s.config.RateLimit.Enabled {
		opts := []middleware.RateLimitOption{
			middleware.WithLogger(s.logger),
			middleware.WithDenialLogInterval(s.config.Telemetry.Logging.DenialSampleInterval),
		}
		if metricsEnabled {
			opts = append(opts,
				middleware.WithDecisionRecorder(collector),
				middleware.WithExemptPaths(metricsPath),
			)
		}
		chain = append(chain, middleware.RateLimitMiddleware(s.deps.Registry, opts...))
	}

	return middleware.Chain(mux, chain...)
}

// configureTLS loads the key pair and keeps it fresh until ctx is done.
func (s *Server) configureTLS(ctx context.Context) (*tls.Config, error) {
	tlsCfg := s.config.Server.TLS

	if _, err := os.Stat(tlsCfg.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", tlsCfg.CertFile)
	}
	if _, err := os.Stat(tlsCfg.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", tlsCfg.KeyFile)
	}

	reloader, err := newCertReloader(tlsCfg.CertFile, tlsCfg.KeyFile, s.logger)
	if err != nil {
		return nil, err
	}
	if tlsCfg.ReloadInterval > 0 {
		go reloader.watch(ctx, tlsCfg.ReloadInterval)
	}

	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: reloader.GetCertificate,
	}, nil
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listen address, or "" before Ready.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Server) setRunning(running bool) {
	s.mu.Lock()
	s.isRunning = running
	s.mu.Unlock()
}
