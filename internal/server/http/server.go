// Package httpserver provides the HTTP REST API server for the research ideation service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/observability"
	"github.com/helixir/research-ideation-service/internal/pipeline"
	"github.com/helixir/research-ideation-service/internal/quality"
	"github.com/helixir/research-ideation-service/internal/summary"
)

// SummaryService answers free-form research questions.
type SummaryService interface {
	Generate(ctx context.Context, question string, local bool, provider string) (*summary.Answer, error)
}

// LiteratureService fetches normalized papers.
type LiteratureService interface {
	Fetch(ctx context.Context, query string, limit int) []domain.Paper
}

// QualityService applies the relevance gate.
type QualityService interface {
	Apply(domainName string, venues []domain.Venue, papers []domain.ScoredPaper) quality.Result
}

// IdeaService generates idea sets.
type IdeaService interface {
	Generate(ctx context.Context, domainName string, venues []string, papers []domain.Paper) []string
}

// PipelineService runs the end-to-end flow.
type PipelineService interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Services bundles the handlers' collaborators.
type Services struct {
	Summary    SummaryService
	Literature LiteratureService
	Quality    QualityService
	Ideas      IdeaService
	Pipeline   PipelineService
}

// Server is the HTTP REST API server.
type Server struct {
	router       chi.Router
	httpServer   *http.Server
	services     Services
	validate     *validator.Validate
	maxBodyBytes int64
	logger       zerolog.Logger
	metrics      *observability.Metrics
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// MaxBodyBytes caps request bodies; zero means 1 MiB.
	MaxBodyBytes int64
}

// NewServer creates a new HTTP server with all dependencies. metrics may be nil.
func NewServer(cfg Config, services Services, logger zerolog.Logger, metrics *observability.Metrics) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	s := &Server{
		services:     services,
		validate:     newValidator(),
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       logger.With().Str("component", "http-server").Logger(),
		metrics:      metrics,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(jsonContentTypeMiddleware)
	r.Use(requestLogMiddleware(s.logger))
	r.Use(metricsMiddleware(s.metrics))

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/generate", s.generateContent)
		r.Post("/literature", s.fetchLiterature)
		r.Post("/quality-filter", s.qualityFilter)
		r.Post("/ideas", s.generateIdeas)
		r.Post("/pipeline", s.runPipeline)
	})

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler reports ready once every service is wired.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	missing := s.missingServices()
	if len(missing) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":  "not_ready",
			"missing": missing,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) missingServices() []string {
	var missing []string
	if s.services.Summary == nil {
		missing = append(missing, "summary")
	}
	if s.services.Literature == nil {
		missing = append(missing, "literature")
	}
	if s.services.Quality == nil {
		missing = append(missing, "quality")
	}
	if s.services.Ideas == nil {
		missing = append(missing, "ideas")
	}
	if s.services.Pipeline == nil {
		missing = append(missing, "pipeline")
	}
	return missing
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort log; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
