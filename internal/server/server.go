// Package server exposes definition builds over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kataras/dicebear-exporter/internal/logging"
	"github.com/kataras/dicebear-exporter/pkg/optimize"
)

// DefaultMaxBodyBytes bounds the size of a manifest accepted by the service.
const DefaultMaxBodyBytes = 8 << 20

// Config configures the HTTP service.
type Config struct {
	Addr         string
	Version      string
	Logger       *slog.Logger
	Optimizer    optimize.Optimizer // defaults to optimize.NewMinifier()
	MaxBodyBytes int64              // defaults to DefaultMaxBodyBytes
	StartTime    time.Time
}

func (cfg *Config) setDefaults() {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Optimizer == nil {
		cfg.Optimizer = optimize.NewMinifier()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Now()
	}
}

// Server is the definition build service.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New returns a Server listening on cfg.Addr once started.
func New(cfg Config) *Server {
	cfg.setDefaults()

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(cfg),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
