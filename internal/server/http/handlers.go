package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/observability"
	"github.com/helixir/research-ideation-service/internal/pipeline"
)

// generateContent handles POST /api/v1/generate.
func (s *Server) generateContent(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx, s.logger)
	logger.Info().Bool("local_llm", req.LocalLLM).Str("provider", req.Provider).Msg("generating content")

	answer, err := s.services.Summary.Generate(ctx, req.Question, req.LocalLLM, req.Provider)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		logger.Error().Err(err).Msg("error generating content")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error generating content: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// fetchLiterature handles POST /api/v1/literature.
func (s *Server) fetchLiterature(w http.ResponseWriter, r *http.Request) {
	var req literatureRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	papers := s.services.Literature.Fetch(r.Context(), strings.TrimSpace(req.Query), req.Limit)
	writeJSON(w, http.StatusOK, literatureResponse{Papers: papers})
}

// qualityFilter handles POST /api/v1/quality-filter.
func (s *Server) qualityFilter(w http.ResponseWriter, r *http.Request) {
	var req qualityFilterRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	result := s.services.Quality.Apply(req.Domain, toDomainVenues(req.Venues), toScoredPapers(req.Papers))
	writeJSON(w, http.StatusOK, qualityFilterResponse{
		FilteredVenues: result.FilteredVenues,
		FilteredPapers: result.FilteredPapers,
	})
}

// generateIdeas handles POST /api/v1/ideas.
func (s *Server) generateIdeas(w http.ResponseWriter, r *http.Request) {
	var req ideasRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	ideas := s.services.Ideas.Generate(r.Context(), strings.TrimSpace(req.Domain), req.Venues, toDomainPapers(req.Papers))
	writeJSON(w, http.StatusOK, ideasResponse{Ideas: ideas})
}

// runPipeline handles POST /api/v1/pipeline.
func (s *Server) runPipeline(w http.ResponseWriter, r *http.Request) {
	var req pipelineRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	result, err := s.services.Pipeline.Run(r.Context(), pipeline.Request{
		Question: req.Question,
		Domain:   req.Domain,
		Venues:   toDomainVenues(req.Venues),
		Limit:    req.Limit,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pipelineResponse{
		Papers:         result.Papers,
		PaperSource:    result.PaperSource,
		FilteredVenues: result.FilteredVenues,
		FilteredPapers: result.FilteredPapers,
		Ideas:          result.Ideas,
	})
}

// writeDomainError maps domain errors to appropriate HTTP status codes and
// writes a JSON error response. Internal error details are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
