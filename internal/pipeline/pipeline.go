// Package pipeline chains literature retrieval, the relevance gate and idea
// generation into a single request.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/events"
	"github.com/helixir/research-ideation-service/internal/ideas"
	"github.com/helixir/research-ideation-service/internal/literature"
	"github.com/helixir/research-ideation-service/internal/observability"
	"github.com/helixir/research-ideation-service/internal/quality"
)

var tracer = otel.Tracer("github.com/helixir/research-ideation-service/internal/pipeline")

// PaperRetriever fetches normalized papers for a query.
type PaperRetriever interface {
	Retrieve(ctx context.Context, query string, limit int) literature.Retrieval
}

// RelevanceFilter gates venues and papers.
type RelevanceFilter interface {
	Apply(domainName string, venues []domain.Venue, papers []domain.ScoredPaper) quality.Result
}

// IdeaGenerator produces a full idea set.
type IdeaGenerator interface {
	GenerateDetailed(ctx context.Context, domainName string, venues []string, papers []domain.Paper) ideas.Result
}

// Request is one pipeline invocation.
type Request struct {
	Question string
	// Domain defaults to Question when blank.
	Domain string
	Venues []domain.Venue
	// Limit is clamped into the literature range.
	Limit int
}

// Result is everything a run produced.
type Result struct {
	Papers         []domain.Paper       `json:"papers"`
	PaperSource    domain.SourceType    `json:"paper_source"`
	FilteredVenues []domain.Venue       `json:"filtered_venues"`
	FilteredPapers []domain.ScoredPaper `json:"filtered_papers"`
	Ideas          []string             `json:"ideas"`
}

// Pipeline wires the three stages together.
type Pipeline struct {
	retriever PaperRetriever
	filter    RelevanceFilter
	ideas     IdeaGenerator
	publisher events.Publisher
	logger    zerolog.Logger
}

// New creates a Pipeline. A nil publisher disables events.
func New(retriever PaperRetriever, filter RelevanceFilter, generator IdeaGenerator, publisher events.Publisher, logger zerolog.Logger) *Pipeline {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Pipeline{
		retriever: retriever,
		filter:    filter,
		ideas:     generator,
		publisher: publisher,
		logger:    logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes retrieval, filtering and idea generation. Only a blank
// question is an error; every later stage degrades instead of failing.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, domain.NewValidationError("question", "question cannot be empty")
	}
	domainName := strings.TrimSpace(req.Domain)
	if domainName == "" {
		domainName = question
	}

	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()
	span.SetAttributes(attribute.String("pipeline.domain", domainName))

	logger := observability.WithIdeaContext(observability.LoggerFromContext(ctx, p.logger), domainName)
	start := time.Now()

	retrieval := p.retriever.Retrieve(ctx, question, req.Limit)
	filtered := p.filter.Apply(domainName, req.Venues, quality.FromPapers(retrieval.Papers))
	generated := p.ideas.GenerateDetailed(ctx, domainName,
		domain.VenueNames(filtered.FilteredVenues),
		domain.Papers(filtered.FilteredPapers),
	)

	result := &Result{
		Papers:         retrieval.Papers,
		PaperSource:    retrieval.Source,
		FilteredVenues: filtered.FilteredVenues,
		FilteredPapers: filtered.FilteredPapers,
		Ideas:          generated.Ideas,
	}
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("pipeline.paper_source", string(retrieval.Source)),
		attribute.Int("pipeline.papers", len(retrieval.Papers)),
		attribute.Int("pipeline.papers_kept", len(filtered.FilteredPapers)),
	)
	logger.Info().
		Str("paper_source", string(retrieval.Source)).
		Int("papers", len(retrieval.Papers)).
		Int("papers_kept", len(filtered.FilteredPapers)).
		Int("venues_kept", len(filtered.FilteredVenues)).
		Int("fallback_ideas", generated.Backfilled).
		Dur("duration", elapsed).
		Msg("pipeline completed")

	p.publishCompleted(ctx, logger, domain.PipelineCompletedPayload{
		RequestID:      observability.RequestIDFromContext(ctx),
		Question:       question,
		Domain:         domainName,
		PaperSource:    retrieval.Source,
		PapersFound:    len(retrieval.Papers),
		PapersKept:     len(filtered.FilteredPapers),
		VenuesKept:     len(filtered.FilteredVenues),
		IdeaCount:      len(generated.Ideas),
		FallbackIdeas:  generated.Backfilled,
		DurationMillis: elapsed.Milliseconds(),
	})

	return result, nil
}

func (p *Pipeline) publishCompleted(ctx context.Context, logger zerolog.Logger, payload domain.PipelineCompletedPayload) {
	key := payload.RequestID
	if key == "" {
		key = payload.Domain
	}
	event, err := domain.NewEvent(domain.EventTypePipelineCompleted, key, payload)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to build pipeline event")
		return
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event_type", event.EventType).Msg("failed to publish pipeline event")
	}
}
