package papersources

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/observability"
)

var tracer = otel.Tracer("github.com/helixir/research-ideation-service/internal/papersources")

// Guarded wraps a PaperSource so that Search never returns an error.
// Failures, including panics inside the wrapped source, are logged at warn
// level, counted, and reported as an empty result.
type Guarded struct {
	source  PaperSource
	logger  zerolog.Logger
	metrics *observability.Metrics
}

var _ PaperSource = (*Guarded)(nil)

// Guard wraps source. metrics may be nil.
func Guard(source PaperSource, logger zerolog.Logger, metrics *observability.Metrics) *Guarded {
	return &Guarded{
		source:  source,
		logger:  logger.With().Str("component", "paper_source").Logger(),
		metrics: metrics,
	}
}

// Search calls the wrapped source and absorbs any failure.
func (g *Guarded) Search(ctx context.Context, query string, limit int) (papers []domain.RawPaper, _ error) {
	name := g.source.Name()
	limit = domain.ClampProviderLimit(limit)
	logger := observability.WithSearchContext(observability.LoggerFromContext(ctx, g.logger), query, name)

	ctx, span := tracer.Start(ctx, "papersources.Search")
	span.SetAttributes(
		attribute.String("source", name),
		attribute.Int("limit", limit),
	)
	defer span.End()

	start := time.Now()
	g.metrics.RecordSearchStarted(name)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("paper source panicked: %v", r)
			g.fail(logger, span, name, start, err)
			papers = nil
		}
	}()

	papers, err := g.source.Search(ctx, query, limit)
	if err != nil {
		g.fail(logger, span, name, start, err)
		return nil, nil
	}

	g.metrics.RecordSearchCompleted(name, len(papers), time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("papers", len(papers)))
	logger.Debug().Int("papers", len(papers)).Msg("paper source search completed")
	return papers, nil
}

func (g *Guarded) fail(logger zerolog.Logger, span trace.Span, name string, start time.Time, err error) {
	g.metrics.RecordSearchFailed(name, time.Since(start).Seconds())
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Warn().Err(err).Msg("paper source search failed; treating as empty")
}

// Name returns the wrapped source name.
func (g *Guarded) Name() string { return g.source.Name() }

// IsEnabled returns whether the wrapped source is enabled.
func (g *Guarded) IsEnabled() bool { return g.source.IsEnabled() }

// Unwrap returns the wrapped source.
func (g *Guarded) Unwrap() PaperSource { return g.source }
