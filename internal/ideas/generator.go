// Package ideas turns a domain, its target venues and context papers into
// exactly domain.IdeaCount research-idea titles.
//
// Ideas come from an LLM when one is configured and answers usefully. Any
// shortfall, including a missing or failing model, is filled from fixed
// templates so callers always receive a complete set.
package ideas

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/llm"
	"github.com/helixir/research-ideation-service/internal/observability"
)

var tracer = otel.Tracer("github.com/helixir/research-ideation-service/internal/ideas")

// Result is a generated idea set with provenance counts.
type Result struct {
	Ideas []string
	// FromModel is how many ideas came from the LLM.
	FromModel int
	// Backfilled is how many ideas came from templates.
	Backfilled int
}

// Generator produces idea sets. It is safe for concurrent use.
type Generator struct {
	llm     llm.Generator
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewGenerator creates a Generator. model may be nil, in which case every
// idea comes from templates.
func NewGenerator(model llm.Generator, logger zerolog.Logger, metrics *observability.Metrics) *Generator {
	return &Generator{
		llm:     model,
		logger:  logger.With().Str("component", "idea_generator").Logger(),
		metrics: metrics,
	}
}

// Generate returns exactly domain.IdeaCount ideas. Errors are never
// returned; they degrade to template ideas.
func (g *Generator) Generate(ctx context.Context, domainName string, venues []string, papers []domain.Paper) []string {
	return g.GenerateDetailed(ctx, domainName, venues, papers).Ideas
}

// GenerateDetailed is Generate with provenance counts.
func (g *Generator) GenerateDetailed(ctx context.Context, domainName string, venues []string, papers []domain.Paper) Result {
	ctx, span := tracer.Start(ctx, "ideas.Generate")
	defer span.End()

	logger := observability.WithIdeaContext(observability.LoggerFromContext(ctx, g.logger), domainName)

	ideas := g.fromModel(ctx, logger, domainName, venues, papers)
	if len(ideas) > domain.IdeaCount {
		ideas = ideas[:domain.IdeaCount]
	}
	fromModel := len(ideas)

	for _, f := range FallbackIdeas(domainName) {
		if len(ideas) >= domain.IdeaCount {
			break
		}
		ideas = append(ideas, f)
	}
	backfilled := len(ideas) - fromModel

	span.SetAttributes(
		attribute.Int("ideas.from_model", fromModel),
		attribute.Int("ideas.backfilled", backfilled),
	)
	g.metrics.RecordIdeasGenerated(backfilled)

	if backfilled > 0 {
		logger.Info().Int("from_model", fromModel).Int("backfilled", backfilled).Msg("idea set completed with templates")
	} else {
		logger.Debug().Int("from_model", fromModel).Msg("idea set completed")
	}

	return Result{Ideas: ideas, FromModel: fromModel, Backfilled: backfilled}
}

func (g *Generator) fromModel(ctx context.Context, logger zerolog.Logger, domainName string, venues []string, papers []domain.Paper) (lines []string) {
	if g.llm == nil {
		logger.Warn().Msg("no llm configured; using template ideas")
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn().
				Str("provider", g.llm.Provider()).
				Interface("panic", r).
				Msg("idea generation panicked; using template ideas")
			lines = nil
		}
	}()

	prompt := BuildPrompt(domainName, venues, papers)
	text, err := g.llm.Invoke(ctx, prompt)
	if err != nil {
		logger.Warn().Err(err).Str("provider", g.llm.Provider()).Msg("idea generation failed; using template ideas")
		return nil
	}
	if text == "" {
		logger.Warn().Str("provider", g.llm.Provider()).Msg("llm returned empty output; using template ideas")
		return nil
	}
	return ParseIdeas(text)
}
