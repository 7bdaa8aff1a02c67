// Package server exposes a loaded search index over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/skelly-dev/doxsearch/internal/config"
	"github.com/skelly-dev/doxsearch/internal/logger"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

// ErrNoAllSection is returned for an index without an "all" section.
var ErrNoAllSection = errors.New(`index has no "all" section`)

// Loader reads the index the server should serve.
type Loader func(ctx context.Context) (*searchdata.Index, error)

// FileLoader loads a site directory or a single searchData file.
func FileLoader(path string) Loader {
	return func(ctx context.Context) (*searchdata.Index, error) {
		return searchdata.Open(ctx, path)
	}
}

// Server is the lookup HTTP server.
type Server struct {
	cfg     config.ServerConfig
	load    Loader
	handler *Handler
	metrics *Metrics
	mux     *http.ServeMux
	logger  *slog.Logger
}

// New loads the initial index and builds the routes.
func New(ctx context.Context, cfg config.ServerConfig, load Loader) (*Server, error) {
	idx, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	if idx.All() == nil {
		return nil, fmt.Errorf("failed to load index: %w", ErrNoAllSection)
	}

	metrics := NewMetrics()
	s := &Server{
		cfg:     cfg,
		load:    load,
		handler: NewHandler(idx, metrics, cfg.DefaultLimit, cfg.MaxLimit),
		metrics: metrics,
		mux:     http.NewServeMux(),
		logger:  logger.WithComponent("server"),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/search", s.handler.Search)
	s.mux.HandleFunc("GET /api/v1/sections", s.handler.Sections)
	s.mux.HandleFunc("POST /api/v1/reload", s.handleReload)
	s.mux.HandleFunc("GET /health/live", s.handler.Live)
	s.mux.HandleFunc("GET /health/ready", s.handler.Ready)
	s.mux.Handle("GET /metrics", s.metrics.Handler())
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return withRequestID(withMetrics(s.metrics)(s.mux))
}

// Reload replaces the served index. On failure the previous index stays in
// place.
func (s *Server) Reload(ctx context.Context) error {
	idx, err := s.load(ctx)
	if err == nil && idx.All() == nil {
		err = ErrNoAllSection
	}
	if err != nil {
		s.metrics.IndexReloadsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to reload index: %w", err)
	}
	s.handler.Swap(idx)
	s.metrics.IndexReloadsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("index reloaded", "keys", idx.All().Len(), "sections", len(idx.Sections()))
	return nil
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(r.Context()); err != nil {
		logger.FromContext(r.Context()).Error("reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reloaded", "keys": s.handler.Index().All().Len()})
}

// Run serves on the configured port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("search server started", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down search server")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}
