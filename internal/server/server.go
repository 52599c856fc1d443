package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/database"
	"github.com/nao1215/shopaudit/internal/metrics"
	"github.com/nao1215/shopaudit/internal/pipeline"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// maxBodyBytes limits request bodies. Posted audit results fit easily.
const maxBodyBytes = 1 << 20

// Server is the HTTP API.
type Server struct {
	auditor pipeline.Auditor
	store   database.Store
	gate    Gate
	cfg     *config.ServerConfig
	metrics *metrics.Collector
	logger  *slog.Logger
	version string
	clock   func() time.Time
	limiter *rateLimiter

	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records HTTP metrics and serves them on /metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// WithGate replaces the default TokenGate built from the premium token.
func WithGate(g Gate) Option {
	return func(s *Server) {
		s.gate = g
	}
}

// WithVersion sets the version reported by /api/status.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithClock sets the time source for export file names, status and rate limiting.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// New creates a Server auditing with auditor and saving to store.
func New(auditor pipeline.Auditor, store database.Store, cfg *config.ServerConfig, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.NewServerConfig()
	}
	s := &Server{
		auditor: auditor,
		store:   store,
		cfg:     cfg,
		version: "dev",
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.gate == nil {
		s.gate = NewTokenGate(cfg.PremiumToken)
	}
	if cfg.RateLimit > 0 {
		s.limiter = newRateLimiter(cfg.RateLimit, cfg.Burst)
	}

	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/audit", s.rateLimit(http.HandlerFunc(s.handleAudit)))
	mux.HandleFunc("GET /api/audits/recent", s.handleRecent)
	mux.HandleFunc("GET /api/audits/{id}", s.handleGetAudit)
	mux.HandleFunc("POST /api/export/{format}", s.handleExport)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	mux.HandleFunc("/", s.handleNotFound)

	return requestIDMiddleware(s.accessLog(s.recovery(s.cors(mux))))
}

// ListenAndServe serves on the configured address until ctx is canceled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
