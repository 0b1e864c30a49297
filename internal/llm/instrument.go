package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/helixir/research-ideation-service/internal/observability"
)

var tracer = otel.Tracer("github.com/helixir/research-ideation-service/internal/llm")

// Instrumented decorates a Generator with a span, request metrics and a debug
// log line per call.
type Instrumented struct {
	next    Generator
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// Instrument wraps gen. metrics may be nil.
func Instrument(gen Generator, logger zerolog.Logger, metrics *observability.Metrics) *Instrumented {
	return &Instrumented{
		next:    gen,
		logger:  logger.With().Str("provider", gen.Provider()).Str("model", gen.Model()).Logger(),
		metrics: metrics,
	}
}

// Invoke forwards to the wrapped generator.
func (g *Instrumented) Invoke(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "llm.Invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", g.next.Provider()),
		attribute.String("llm.model", g.next.Model()),
		attribute.Int("llm.prompt_chars", len(prompt)),
	)

	start := time.Now()
	text, err := g.next.Invoke(ctx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		g.metrics.RecordLLMRequestFailed(g.next.Provider(), g.next.Model(), elapsed.Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.Warn().Err(err).Dur("duration", elapsed).Msg("llm request failed")
		return "", err
	}

	g.metrics.RecordLLMRequest(g.next.Provider(), g.next.Model(), elapsed.Seconds())
	span.SetAttributes(attribute.Int("llm.response_chars", len(text)))
	g.logger.Debug().Dur("duration", elapsed).Int("response_chars", len(text)).Msg("llm request completed")
	return text, nil
}

// Provider returns the wrapped generator's provider.
func (g *Instrumented) Provider() string { return g.next.Provider() }

// Model returns the wrapped generator's model.
func (g *Instrumented) Model() string { return g.next.Model() }

// Unwrap returns the wrapped generator.
func (g *Instrumented) Unwrap() Generator { return g.next }
