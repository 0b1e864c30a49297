// Package config provides configuration management for the research ideation service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for all environment variable overrides.
const EnvPrefix = "IDEAS"

// Config holds all configuration for the research ideation service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Tracing contains OpenTelemetry distributed tracing settings.
	Tracing TracingConfig `mapstructure:"tracing"`
	// LLM contains generation provider settings.
	LLM LLMConfig `mapstructure:"llm"`
	// PaperSources contains paper source API configurations.
	PaperSources PaperSourcesConfig `mapstructure:"paper_sources"`
	// Literature contains retrieval settings.
	Literature LiteratureConfig `mapstructure:"literature"`
	// Quality contains relevance filter settings.
	Quality QualityConfig `mapstructure:"quality"`
	// Events contains event publishing settings.
	Events EventsConfig `mapstructure:"events"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace"`
}

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	// Enabled enables distributed tracing.
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the OTLP/HTTP collector base URL.
	Endpoint string `mapstructure:"endpoint"`
	// ServiceName is the service name for traces.
	ServiceName string `mapstructure:"service_name"`
	// Environment is the deployment environment attribute.
	Environment string `mapstructure:"environment"`
	// SampleRate is the sampling rate (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
	// Insecure disables TLS to the collector.
	Insecure bool `mapstructure:"insecure"`
}

// LLMConfig holds generation provider configuration.
type LLMConfig struct {
	// Provider is the default cloud provider (openai, anthropic, gemini, groq, mistral).
	Provider string `mapstructure:"provider"`
	// Temperature is used for idea generation.
	Temperature float64 `mapstructure:"temperature"`
	// SummaryTemperature is used for free-form question answering.
	SummaryTemperature float64 `mapstructure:"summary_temperature"`
	// Timeout is the timeout for a single generation call.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxRetries is the number of retries for transient provider errors.
	MaxRetries int `mapstructure:"max_retries"`
	// LocalModelURL is the Ollama server base URL.
	LocalModelURL string `mapstructure:"local_model_url"`
	// LocalModel is the Ollama model name.
	LocalModel string `mapstructure:"local_model"`

	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Gemini    ProviderConfig `mapstructure:"gemini"`
	Groq      ProviderConfig `mapstructure:"groq"`
	Mistral   ProviderConfig `mapstructure:"mistral"`
}

// ProviderConfig holds settings for one cloud LLM provider.
type ProviderConfig struct {
	// APIKey is loaded from the environment only.
	APIKey string `mapstructure:"-"`
	// Model is the model identifier.
	Model string `mapstructure:"model"`
	// BaseURL overrides the provider API endpoint.
	BaseURL string `mapstructure:"base_url"`
}

// PaperSourcesConfig holds configuration for all paper sources.
type PaperSourcesConfig struct {
	// UserAgent is sent with every source request.
	UserAgent string `mapstructure:"user_agent"`
	// SemanticScholar is tried first.
	SemanticScholar PaperSourceConfig `mapstructure:"semantic_scholar"`
	// ArXiv is tried second.
	ArXiv PaperSourceConfig `mapstructure:"arxiv"`
}

// PaperSourceConfig holds configuration for a single paper source.
type PaperSourceConfig struct {
	// Enabled enables this source.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is loaded from the environment only.
	APIKey string `mapstructure:"-"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the HTTP client timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// MaxRetries is the number of retries on transient failures (default 0).
	MaxRetries int `mapstructure:"max_retries"`
}

// LiteratureConfig holds retrieval configuration.
type LiteratureConfig struct {
	// DefaultLimit is used when a request does not specify a limit.
	DefaultLimit int `mapstructure:"default_limit"`
	// SearchTimeout bounds each source call in the fallback chain.
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
}

// QualityConfig holds relevance filter configuration.
type QualityConfig struct {
	// Keywords is the relevance vocabulary.
	Keywords []string `mapstructure:"keywords"`
	// MaxPapers caps the filtered paper list.
	MaxPapers int `mapstructure:"max_papers"`
}

// EventsConfig holds event publishing configuration.
type EventsConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
}

// KafkaConfig holds Kafka publisher configuration.
type KafkaConfig struct {
	// Enabled enables Kafka publishing. Disabled uses a no-op publisher.
	Enabled bool `mapstructure:"enabled"`
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `mapstructure:"brokers"`
	// Topic is the Kafka topic for pipeline events.
	Topic string `mapstructure:"topic"`
	// BatchSize is the max number of messages per batch.
	BatchSize int `mapstructure:"batch_size"`
	// BatchTimeout is the max time to wait for a batch to fill.
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	// WriteTimeout bounds a single publish.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// GroupID is the consumer group used by `ideactl events tail`.
	GroupID string `mapstructure:"group_id"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load reads configuration from defaults, an optional config file, and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile behaves like Load but reads the given config file when path is
// non-empty instead of searching the default locations.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/research-ideation-service")
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets loads sensitive values from environment variables only.
func loadSecrets(cfg *Config) {
	cfg.LLM.OpenAI.APIKey = os.Getenv(EnvPrefix + "_LLM_OPENAI_API_KEY")
	cfg.LLM.Anthropic.APIKey = os.Getenv(EnvPrefix + "_LLM_ANTHROPIC_API_KEY")
	cfg.LLM.Gemini.APIKey = os.Getenv(EnvPrefix + "_LLM_GEMINI_API_KEY")
	cfg.LLM.Groq.APIKey = os.Getenv(EnvPrefix + "_LLM_GROQ_API_KEY")
	cfg.LLM.Mistral.APIKey = os.Getenv(EnvPrefix + "_LLM_MISTRAL_API_KEY")

	cfg.PaperSources.SemanticScholar.APIKey = os.Getenv(EnvPrefix + "_PAPER_SOURCES_SEMANTIC_SCHOLAR_API_KEY")
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "research_ideation")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "research-ideation-service")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sample_rate", 0.1)
	v.SetDefault("tracing.insecure", true)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.summary_temperature", 0.7)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.max_retries", 0)
	v.SetDefault("llm.local_model_url", "http://localhost:11434")
	v.SetDefault("llm.local_model", "llama2")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.gemini.model", "gemini-2.0-flash")
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.groq.model", "llama-3.1-8b-instant")
	v.SetDefault("llm.groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.mistral.model", "mistral-small-latest")
	v.SetDefault("llm.mistral.base_url", "https://api.mistral.ai/v1")

	v.SetDefault("paper_sources.user_agent", "literature-surveyor/phase4")

	v.SetDefault("paper_sources.semantic_scholar.enabled", true)
	v.SetDefault("paper_sources.semantic_scholar.base_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("paper_sources.semantic_scholar.timeout", "10s")
	v.SetDefault("paper_sources.semantic_scholar.rate_limit", 1.0)
	v.SetDefault("paper_sources.semantic_scholar.max_retries", 0)

	v.SetDefault("paper_sources.arxiv.enabled", true)
	v.SetDefault("paper_sources.arxiv.base_url", "https://export.arxiv.org/api")
	v.SetDefault("paper_sources.arxiv.timeout", "10s")
	v.SetDefault("paper_sources.arxiv.rate_limit", 3.0) // arXiv recommends max 3 req/sec
	v.SetDefault("paper_sources.arxiv.max_retries", 0)

	v.SetDefault("literature.default_limit", 5)
	v.SetDefault("literature.search_timeout", "10s")

	v.SetDefault("quality.keywords", []string{
		"llm", "language model", "transformer", "nlp", "gpt", "attention", "generative",
	})
	v.SetDefault("quality.max_papers", 5)

	v.SetDefault("events.kafka.enabled", false)
	v.SetDefault("events.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("events.kafka.topic", "events.research_ideation")
	v.SetDefault("events.kafka.batch_size", 100)
	v.SetDefault("events.kafka.batch_timeout", "10ms")
	v.SetDefault("events.kafka.write_timeout", "5s")
	v.SetDefault("events.kafka.group_id", "ideactl")
}

var validProviders = map[string]bool{
	"openai": true, "anthropic": true, "gemini": true, "groq": true, "mistral": true,
}

// Validate checks the configuration for errors.
// Missing LLM API keys are not errors: idea generation degrades to templates.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max_body_bytes must be positive")
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing sample rate must be between 0 and 1")
	}

	if p := strings.ToLower(c.LLM.Provider); p != "" && !validProviders[p] {
		return fmt.Errorf("unsupported LLM provider: %s", c.LLM.Provider)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("LLM max_retries must not be negative")
	}

	sources := map[string]PaperSourceConfig{
		"semantic_scholar": c.PaperSources.SemanticScholar,
		"arxiv":            c.PaperSources.ArXiv,
	}
	for name, src := range sources {
		if !src.Enabled {
			continue
		}
		if src.BaseURL == "" {
			return fmt.Errorf("paper source %s: base_url is required", name)
		}
		if src.Timeout <= 0 {
			return fmt.Errorf("paper source %s: timeout must be positive", name)
		}
		if src.MaxRetries < 0 {
			return fmt.Errorf("paper source %s: max_retries must not be negative", name)
		}
	}

	if c.Literature.DefaultLimit < 3 || c.Literature.DefaultLimit > 5 {
		return fmt.Errorf("literature default_limit must be between 3 and 5, got %d", c.Literature.DefaultLimit)
	}
	if c.Literature.SearchTimeout <= 0 {
		return fmt.Errorf("literature search_timeout must be positive")
	}

	if len(c.Quality.Keywords) == 0 {
		return fmt.Errorf("quality keywords must not be empty")
	}
	if c.Quality.MaxPapers <= 0 {
		return fmt.Errorf("quality max_papers must be positive")
	}

	if c.Events.Kafka.Enabled {
		if len(c.Events.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when events are enabled")
		}
		if c.Events.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic is required when events are enabled")
		}
	}

	return nil
}
