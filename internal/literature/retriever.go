// Package literature retrieves a small, normalized set of papers for a query
// by walking an ordered chain of paper sources and falling back to a static
// mock table.
package literature

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/observability"
	"github.com/helixir/research-ideation-service/internal/papersources"
)

// DefaultSearchTimeout bounds each source call in the chain.
const DefaultSearchTimeout = 10 * time.Second

var tracer = otel.Tracer("github.com/helixir/research-ideation-service/internal/literature")

// RetrieverConfig configures a Retriever.
type RetrieverConfig struct {
	// SearchTimeout bounds each source call. Defaults to DefaultSearchTimeout.
	SearchTimeout time.Duration
}

// Retrieval is the outcome of one fetch.
type Retrieval struct {
	Papers []domain.Paper
	// Source names the stage that produced Papers: a source name or "mock".
	Source domain.SourceType
}

// Retriever fetches 3 to 5 papers for a query. It never fails: when every
// source errors or comes back empty the mock table is returned.
type Retriever struct {
	sources []papersources.PaperSource
	timeout time.Duration
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewRetriever creates a retriever over sources, tried in the given order.
// Each source is wrapped with papersources.Guard. Sources whose name is not a
// known non-mock SourceType are dropped so Retrieval.Source always names a
// fallback stage. metrics may be nil.
func NewRetriever(sources []papersources.PaperSource, cfg RetrieverConfig, logger zerolog.Logger, metrics *observability.Metrics) *Retriever {
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = DefaultSearchTimeout
	}

	logger = logger.With().Str("component", "literature_retriever").Logger()
	guarded := make([]papersources.PaperSource, 0, len(sources))
	for _, s := range sources {
		st := domain.SourceType(s.Name())
		if !domain.IsValidSourceType(st) || st == domain.SourceTypeMock {
			logger.Warn().Str("source", s.Name()).Msg("unknown paper source skipped")
			continue
		}
		guarded = append(guarded, papersources.Guard(s, logger, metrics))
	}

	return &Retriever{
		sources: guarded,
		timeout: cfg.SearchTimeout,
		logger:  logger,
		metrics: metrics,
	}
}

// NewRetrieverFromRegistry builds a retriever over the registry's enabled
// sources in registration order.
func NewRetrieverFromRegistry(registry *papersources.Registry, cfg RetrieverConfig, logger zerolog.Logger, metrics *observability.Metrics) *Retriever {
	return NewRetriever(registry.EnabledSources(), cfg, logger, metrics)
}

// Fetch returns the papers for query. See Retrieve.
func (r *Retriever) Fetch(ctx context.Context, query string, limit int) []domain.Paper {
	return r.Retrieve(ctx, query, limit).Papers
}

// Retrieve clamps limit to [3,5] and returns the first non-empty normalized
// result from the source chain, or the mock table. A blank query skips the
// sources entirely.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) Retrieval {
	limit = domain.ClampLiteratureLimit(limit)
	query = strings.TrimSpace(query)

	ctx, span := tracer.Start(ctx, "literature.Retrieve")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	logger := observability.LoggerFromContext(ctx, r.logger)

	if query == "" {
		logger.Debug().Msg("blank query; using mock papers")
		return r.mock(span, limit)
	}

	for _, source := range r.sources {
		papers, padded := r.trySource(ctx, source, query, limit)
		if len(papers) == 0 {
			continue
		}

		r.metrics.RecordRetrievalStage(source.Name())
		r.metrics.RecordPapersPadded(padded)
		span.SetAttributes(
			attribute.String("stage", source.Name()),
			attribute.Int("papers", len(papers)),
		)
		logger.Info().
			Str("source", source.Name()).
			Int("papers", len(papers)).
			Int("padded", padded).
			Msg("literature retrieved")
		return Retrieval{Papers: papers, Source: domain.SourceType(source.Name())}
	}

	logger.Warn().Str("query", query).Msg("all paper sources empty; using mock papers")
	return r.mock(span, limit)
}

// trySource runs one source under the per-call timeout and normalizes the result.
func (r *Retriever) trySource(ctx context.Context, source papersources.PaperSource, query string, limit int) ([]domain.Paper, int) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, _ := source.Search(callCtx, query, domain.ClampProviderLimit(limit))
	return normalize(raw, limit)
}

func (r *Retriever) mock(span trace.Span, limit int) Retrieval {
	r.metrics.RecordRetrievalStage(string(domain.SourceTypeMock))
	papers := MockPapers(limit)
	span.SetAttributes(
		attribute.String("stage", string(domain.SourceTypeMock)),
		attribute.Int("papers", len(papers)),
	)
	return Retrieval{Papers: papers, Source: domain.SourceTypeMock}
}
