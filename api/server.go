// Package api provides the HTTP REST API for the answering engine.
//
//	POST /api/ask      →  answer a question
//	POST /api/farmer   →  save the farm profile
//	GET  /api/history  →  recent chat history
//	POST /api/weather  →  current weather with farm advice
//	GET  /health       →  liveness probe
//	GET  /ready        →  readiness probe (index built, database up)
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/team-sapphire/vayazh/internal/farmer"
	"github.com/team-sapphire/vayazh/internal/log"
	"github.com/team-sapphire/vayazh/internal/weather"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against slow-header clients.
	ReadHeaderTimeout = 10 * time.Second

	ReadTimeout  = 30 * time.Second
	WriteTimeout = 60 * time.Second
	IdleTimeout  = 120 * time.Second
)

// Assistant is the answering surface the API exposes.
type Assistant interface {
	Ask(ctx context.Context, message string) (string, error)
	Weather(ctx context.Context, location string) (string, []string, *weather.Snapshot)
	Ready() bool
}

// FarmStore persists profiles and serves chat history.
type FarmStore interface {
	SaveProfile(ctx context.Context, p farmer.Profile) (int64, error)
	RecentHistory(ctx context.Context, limit int) ([]farmer.ChatTurn, error)
}

// Server is the HTTP server for the REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health  *HealthHandler
	ask     *AskHandler
	farm    *FarmHandler
	weather *WeatherHandler
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(assistant Assistant, store FarmStore, pool *pgxpool.Pool, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	mux := http.NewServeMux()

	s := &Server{
		mux:     mux,
		logger:  logger,
		health:  NewHealthHandler(assistant, pool, logger),
		ask:     NewAskHandler(assistant, logger),
		farm:    NewFarmHandler(store, logger),
		weather: NewWeatherHandler(assistant, logger),
	}

	s.health.RegisterRoutes(mux)
	s.ask.RegisterRoutes(mux)
	s.farm.RegisterRoutes(mux)
	s.weather.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux, s.recoveryMiddleware, s.loggingMiddleware)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
