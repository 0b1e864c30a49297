// Package summary answers free-form research questions with a short
// literature-survey style reply from a configured LLM.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/llm"
	"github.com/helixir/research-ideation-service/internal/observability"
)

// LiteratureSystemPrompt constrains replies to a handful of short bullets.
const LiteratureSystemPrompt = `You are a literature survey assistant.

STRICT INSTRUCTIONS:
- Return ONLY 3–5 bullet points
- Each bullet must be 1–3 lines maximum
- Focus on recent work (2022–present) and key ideas
- Do NOT include headings, paragraphs, or reference sections
- Do NOT include code or implementation details
- Mention paper names or keywords briefly inside bullets if relevant

Failure to follow format is incorrect.`

// Provider labels reported in Answer.ProviderUsed besides cloud provider names.
const (
	ProviderLocal      = "local"
	ProviderLocalError = "local_error"
	ProviderUnknown    = "unknown"
)

// Answer is the reply to a question.
type Answer struct {
	OriginalQuestion string `json:"originalQuestion"`
	ProviderUsed     string `json:"providerUsed"`
	UsedLocalLLM     bool   `json:"usedLocalLLM"`
	Text             string `json:"answer"`
}

// GeneratorFactory resolves an llm.Generator for one request.
type GeneratorFactory func(cfg llm.FactoryConfig, local bool, provider string) (llm.Generator, error)

// Service builds a generator per request so callers can pick the provider.
type Service struct {
	cfg     llm.FactoryConfig
	newGen  GeneratorFactory
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewService creates a summary service. cfg.Temperature should already carry
// the summary temperature. metrics may be nil.
func NewService(cfg llm.FactoryConfig, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		cfg:     cfg,
		newGen:  llm.NewGenerator,
		logger:  logger.With().Str("component", "summary_service").Logger(),
		metrics: metrics,
	}
}

// WithGeneratorFactory replaces how generators are built. Intended for tests
// and alternative backends.
func (s *Service) WithGeneratorFactory(f GeneratorFactory) *Service {
	s.newGen = f
	return s
}

// ComposePrompt prefixes the question with LiteratureSystemPrompt.
func ComposePrompt(question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return LiteratureSystemPrompt
	}
	return LiteratureSystemPrompt + "\n\nUser question:\n" + question
}

// ProviderUsed reports the label for a request: "local" for local requests,
// else the requested provider, else the configured default, else "unknown".
func (s *Service) ProviderUsed(local bool, provider string) string {
	if local {
		return ProviderLocal
	}
	if chosen := s.cfg.ResolveProvider(provider); chosen != "" {
		return chosen
	}
	return ProviderUnknown
}

// Generate answers question. Misconfiguration is reported inside the Answer
// so the caller can show it; provider failures are returned as
// *domain.ExternalAPIError and an empty reply as domain.ErrServiceUnavailable.
func (s *Service) Generate(ctx context.Context, question string, local bool, provider string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.NewValidationError("question", "question cannot be empty")
	}

	logger := observability.LoggerFromContext(ctx, s.logger)
	answer := &Answer{
		OriginalQuestion: question,
		ProviderUsed:     s.ProviderUsed(local, provider),
		UsedLocalLLM:     local,
	}

	gen, err := s.newGen(s.cfg, local, provider)
	if err != nil {
		var cfgErr *llm.ConfigError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("resolve llm: %w", err)
		}
		if local {
			answer.ProviderUsed = ProviderLocalError
		}
		answer.Text = cfgErr.Message
		logger.Warn().Str("provider", answer.ProviderUsed).Str("reason", cfgErr.Message).Msg("llm not configured; returning configuration message")
		return answer, nil
	}
	gen = llm.Instrument(gen, logger, s.metrics)

	logger.Info().Str("provider", gen.Provider()).Int("question_chars", len(question)).Msg("generating summary")

	start := time.Now()
	text, err := gen.Invoke(ctx, ComposePrompt(question))
	if err != nil {
		status := 0
		var apiErr *llm.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return nil, domain.NewExternalAPIError(gen.Provider(), status, fmt.Sprintf("error invoking LLM: %v", err), err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		logger.Error().Str("provider", gen.Provider()).Msg("llm returned no textual content")
		return nil, fmt.Errorf("LLM returned an empty answer: %w", domain.ErrServiceUnavailable)
	}

	answer.Text = text
	logger.Info().Dur("duration", time.Since(start)).Int("answer_chars", len(text)).Msg("summary generated")
	return answer, nil
}
