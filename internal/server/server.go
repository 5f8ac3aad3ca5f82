// Package server exposes the viability engine over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rgehrsitz/flipcalc/internal/breakeven"
	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/config"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"go.uber.org/zap"
)

// Backend is the slice of the REST backend the API needs.
type Backend interface {
	LoadAnalysis(ctx context.Context, ac domain.AnalysisContext) (*domain.Analysis, error)
	UpdateSimulation(ctx context.Context, ac domain.AnalysisContext, id string, params domain.SimulationParameters) (*domain.Simulation, error)
}

// Server serves the HTTP API.
type Server struct {
	engine   *calculation.CalculationEngine
	solver   *breakeven.Solver
	backend  Backend
	logger   *zap.Logger
	settings config.ServerSettings
	limiter  *RateLimiter
}

// New creates a server. backend may be nil, in which case the analysis
// routes answer 503.
func New(engine *calculation.CalculationEngine, backend Backend, settings config.ServerSettings, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.MaxBodyBytes <= 0 {
		settings.MaxBodyBytes = 1 << 20
	}
	return &Server{
		engine:   engine,
		solver:   breakeven.NewDefaultSolver(engine),
		backend:  backend,
		logger:   logger,
		settings: settings,
		limiter:  NewRateLimiter(settings.RateLimit, settings.RateBurst),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestContext(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware)

		r.Post("/viability", s.handleViability)
		r.Post("/viability/schedule", s.handleSchedule)
		r.Post("/breakeven", s.handleBreakEven)
		r.Post("/sensitivity", s.handleSensitivity)

		r.Get("/analyses/{analysisID}/report", s.handleAnalysisReport)
		r.Get("/analyses/{analysisID}/export.csv", s.handleAnalysisCSV)
		r.Put("/simulations/{simulationID}/parameters", s.handleUpdateParameters)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.settings.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("op", "server.run"), zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	timeout := s.settings.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down", zap.String("op", "server.run"))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
