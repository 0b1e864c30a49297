// Package app assembles the service components from configuration. Both the
// HTTP server and the ideactl CLI build their object graph here.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helixir/research-ideation-service/internal/config"
	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/events"
	"github.com/helixir/research-ideation-service/internal/ideas"
	"github.com/helixir/research-ideation-service/internal/literature"
	"github.com/helixir/research-ideation-service/internal/llm"
	"github.com/helixir/research-ideation-service/internal/observability"
	"github.com/helixir/research-ideation-service/internal/papersources"
	"github.com/helixir/research-ideation-service/internal/papersources/arxiv"
	"github.com/helixir/research-ideation-service/internal/papersources/semanticscholar"
	"github.com/helixir/research-ideation-service/internal/pipeline"
	"github.com/helixir/research-ideation-service/internal/quality"
	"github.com/helixir/research-ideation-service/internal/summary"
)

// Components is the wired object graph.
type Components struct {
	Registry  *papersources.Registry
	Retriever *literature.Retriever
	Filter    *quality.Filter
	Ideas     *ideas.Generator
	Summary   *summary.Service
	Publisher events.Publisher
	Pipeline  *pipeline.Pipeline
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg *config.Config, component string) zerolog.Logger {
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	return logger.With().Str("component", component).Logger()
}

// TracingConfig maps configuration onto observability.TracingConfig.
func TracingConfig(cfg *config.Config, version string) observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Tracing.Environment,
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Insecure:       cfg.Tracing.Insecure,
	}
}

// FactoryConfig maps configuration onto llm.FactoryConfig at the given
// temperature.
func FactoryConfig(cfg *config.Config, temperature float64) llm.FactoryConfig {
	return llm.FactoryConfig{
		Provider:      cfg.LLM.Provider,
		Temperature:   temperature,
		Timeout:       cfg.LLM.Timeout,
		MaxRetries:    cfg.LLM.MaxRetries,
		LocalModelURL: cfg.LLM.LocalModelURL,
		LocalModel:    cfg.LLM.LocalModel,
		OpenAI:        providerConfig(cfg.LLM.OpenAI),
		Anthropic:     providerConfig(cfg.LLM.Anthropic),
		Gemini:        providerConfig(cfg.LLM.Gemini),
		Groq:          providerConfig(cfg.LLM.Groq),
		Mistral:       providerConfig(cfg.LLM.Mistral),
	}
}

func providerConfig(p config.ProviderConfig) llm.ProviderConfig {
	return llm.ProviderConfig{APIKey: p.APIKey, Model: p.Model, BaseURL: p.BaseURL}
}

// RegisterPaperSources registers the enabled sources in fallback order:
// Semantic Scholar first, then arXiv.
func RegisterPaperSources(registry *papersources.Registry, cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) {
	if cfg.PaperSources.SemanticScholar.Enabled {
		ssCfg := cfg.PaperSources.SemanticScholar
		registry.Register(semanticscholar.NewClient(semanticscholar.Config{
			BaseURL:    ssCfg.BaseURL,
			APIKey:     ssCfg.APIKey,
			Timeout:    ssCfg.Timeout,
			RateLimit:  ssCfg.RateLimit,
			MaxRetries: ssCfg.MaxRetries,
			UserAgent:  cfg.PaperSources.UserAgent,
			Enabled:    true,
			Metrics:    metrics,
		}, nil))
		logger.Info().Msg("registered paper source: Semantic Scholar")
	}

	if cfg.PaperSources.ArXiv.Enabled {
		axCfg := cfg.PaperSources.ArXiv
		registry.Register(arxiv.New(arxiv.Config{
			BaseURL:    axCfg.BaseURL,
			Timeout:    axCfg.Timeout,
			RateLimit:  axCfg.RateLimit,
			MaxRetries: axCfg.MaxRetries,
			UserAgent:  cfg.PaperSources.UserAgent,
			Enabled:    true,
			Metrics:    metrics,
		}))
		logger.Info().Msg("registered paper source: arXiv")
	}
}

// NewIdeaModel resolves the default cloud provider for idea generation. A
// missing key or provider is not fatal: it returns nil and ideas come from
// templates.
func NewIdeaModel(cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) (llm.Generator, error) {
	gen, err := llm.NewGenerator(FactoryConfig(cfg, cfg.LLM.Temperature), false, "")
	if err != nil {
		if llm.IsConfigError(err) {
			logger.Warn().Err(err).Msg("idea generation model unavailable; template ideas will be used")
			return nil, nil
		}
		return nil, fmt.Errorf("create idea model: %w", err)
	}
	logger.Info().Str("provider", gen.Provider()).Str("model", gen.Model()).Msg("idea generation model configured")
	return llm.Instrument(gen, logger, metrics), nil
}

// NewPublisher returns a Kafka publisher when events are enabled and a no-op
// publisher otherwise.
func NewPublisher(cfg *config.Config, logger zerolog.Logger) events.Publisher {
	if !cfg.Events.Kafka.Enabled {
		return events.NopPublisher{}
	}
	k := cfg.Events.Kafka
	logger.Info().Strs("brokers", k.Brokers).Str("topic", k.Topic).Msg("kafka event publisher enabled")
	return events.NewKafkaPublisher(events.KafkaConfig{
		Brokers:      k.Brokers,
		Topic:        k.Topic,
		BatchSize:    k.BatchSize,
		BatchTimeout: k.BatchTimeout,
		WriteTimeout: k.WriteTimeout,
	}, logger)
}

// NewConsumer returns a Kafka consumer for the configured events topic.
func NewConsumer(cfg *config.Config, groupID string, logger zerolog.Logger) *events.Consumer {
	if groupID == "" {
		groupID = cfg.Events.Kafka.GroupID
	}
	return events.NewConsumer(events.ConsumerConfig{
		Brokers: cfg.Events.Kafka.Brokers,
		Topic:   cfg.Events.Kafka.Topic,
		GroupID: groupID,
	}, logger)
}

// New wires every component. metrics may be nil.
func New(cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) (*Components, error) {
	registry := papersources.NewRegistry()
	RegisterPaperSources(registry, cfg, logger, metrics)

	retriever := literature.NewRetrieverFromRegistry(registry, literature.RetrieverConfig{
		SearchTimeout: cfg.Literature.SearchTimeout,
	}, logger, metrics)

	filter := quality.NewFilter(quality.Config{
		Keywords:  cfg.Quality.Keywords,
		MaxPapers: cfg.Quality.MaxPapers,
	}, logger, metrics)

	chain := make([]string, 0, registry.Len()+1)
	for _, source := range registry.AllSources() {
		chain = append(chain, source.Name())
	}
	chain = append(chain, string(domain.SourceTypeMock))
	logger.Info().
		Strs("fallback_chain", chain).
		Strs("keywords", filter.Keywords()).
		Msg("literature pipeline configured")

	model, err := NewIdeaModel(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	generator := ideas.NewGenerator(model, logger, metrics)

	summarySvc := summary.NewService(FactoryConfig(cfg, cfg.LLM.SummaryTemperature), logger, metrics)

	publisher := NewPublisher(cfg, logger)

	return &Components{
		Registry:  registry,
		Retriever: retriever,
		Filter:    filter,
		Ideas:     generator,
		Summary:   summarySvc,
		Publisher: publisher,
		Pipeline:  pipeline.New(retriever, filter, generator, publisher, logger),
	}, nil
}

// Close releases the event publisher.
func (c *Components) Close() error {
	if c.Publisher == nil {
		return nil
	}
	if err := c.Publisher.Close(); err != nil {
		return fmt.Errorf("close event publisher: %w", err)
	}
	return nil
}
