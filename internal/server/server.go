// Package server exposes the continuation HTTP surface: the stateless
// /continue endpoint, a health check, and the websocket bridge that hosts
// live editor sessions.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/inkwell-dev/inkwell/internal/history"
	"github.com/inkwell-dev/inkwell/internal/provider"
	"github.com/inkwell-dev/inkwell/internal/session"
)

// Options configures the server.
type Options struct {
	Port     int
	Provider provider.Provider
	History  *history.Store
	// Session carries the protocol timings for websocket-hosted sessions.
	Session session.Options
	// RequestTimeout bounds each /continue provider call.
	RequestTimeout time.Duration
	// MaxTokens is the default token budget for /continue.
	MaxTokens int
}

// Server hosts the HTTP surface.
type Server struct {
	opts   Options
	bridge *Bridge
	start  time.Time
}

// New creates a Server. The provider is required; the history store may be
// nil, in which case nothing is recorded.
func New(opts Options) *Server {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = session.DefaultRequestTimeout
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = provider.DefaultMaxTokens
	}
	s := &Server{opts: opts}
	s.bridge = NewBridge(opts.Provider, opts.History, opts.Session)
	return s
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.start = time.Now()

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	addr := fmt.Sprintf(":%d", s.opts.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	var wg sync.WaitGroup

	// Shutdown on context cancellation.
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown error", "error", err)
		}
		s.bridge.CloseAll()
	}()

	slog.Info("starting HTTP server", "addr", addr, "provider", s.opts.Provider.Name())
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	wg.Wait()
	return nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /continue", s.handleContinue)
	mux.HandleFunc("GET /ws", s.bridge.HandleWS)
}
