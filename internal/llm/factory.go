package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FactoryConfig holds the parameters needed to create a Generator.
// This is defined in the llm package to avoid importing the config package,
// keeping the llm package free of infrastructure dependencies.
type FactoryConfig struct {
	// Provider is the default cloud provider used when a request names none.
	Provider string
	// Temperature is the sampling temperature.
	Temperature float64
	// Timeout bounds a single API call.
	Timeout time.Duration
	// MaxRetries is the maximum number of retries for transient failures.
	MaxRetries int

	// LocalModelURL is the Ollama server address.
	LocalModelURL string
	// LocalModel is the Ollama model name.
	LocalModel string

	OpenAI    ProviderConfig
	Anthropic ProviderConfig
	Gemini    ProviderConfig
	Groq      ProviderConfig
	Mistral   ProviderConfig
}

// SupportedProviders lists the cloud providers NewGenerator understands.
func SupportedProviders() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderGroq, ProviderMistral}
}

// ResolveProvider returns the provider a request would use: the explicit
// name if given, else the configured default, lowercased.
func (c FactoryConfig) ResolveProvider(provider string) string {
	chosen := strings.ToLower(strings.TrimSpace(provider))
	if chosen == "" {
		chosen = strings.ToLower(strings.TrimSpace(c.Provider))
	}
	return chosen
}

// NewGenerator resolves a Generator. With local set the Ollama backend is
// returned. Otherwise provider, falling back to cfg.Provider, selects the
// cloud backend. Misconfiguration is reported as *ConfigError.
func NewGenerator(cfg FactoryConfig, local bool, provider string) (Generator, error) {
	if local {
		return newLocalGenerator(cfg)
	}

	chosen := cfg.ResolveProvider(provider)
	if chosen == "" {
		return nil, &ConfigError{Message: "no cloud provider specified and no default provider configured"}
	}

	pc, ok := cfg.providerConfig(chosen)
	if !ok {
		return nil, &ConfigError{
			Provider: chosen,
			Message:  fmt.Sprintf("unsupported provider %q (supported: %s)", chosen, strings.Join(SupportedProviders(), ", ")),
		}
	}
	if strings.TrimSpace(pc.APIKey) == "" {
		return nil, &ConfigError{Provider: chosen, Message: "API key not configured"}
	}

	switch chosen {
	case ProviderOpenAI:
		return NewOpenAIProvider(pc, cfg.Temperature, cfg.Timeout, cfg.MaxRetries), nil
	case ProviderGroq:
		return NewGroqProvider(pc, cfg.Temperature, cfg.Timeout, cfg.MaxRetries), nil
	case ProviderMistral:
		return NewMistralProvider(pc, cfg.Temperature, cfg.Timeout, cfg.MaxRetries), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(pc, cfg.Temperature, cfg.Timeout, cfg.MaxRetries), nil
	default: // ProviderGemini
		gen, err := NewGeminiProvider(context.Background(), pc, cfg.Temperature, cfg.Timeout, cfg.MaxRetries)
		if err != nil {
			return nil, &ConfigError{Provider: chosen, Message: err.Error()}
		}
		return gen, nil
	}
}

func newLocalGenerator(cfg FactoryConfig) (Generator, error) {
	base := cfg.LocalModelURL
	if base == "" {
		base = DefaultLocalModelURL
	}
	model := cfg.LocalModel
	if model == "" {
		model = DefaultLocalModel
	}

	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &ConfigError{
			Provider: "local",
			Message: fmt.Sprintf("Local Ollama model configuration failed: invalid local_model_url %q. "+
				"Ensure Ollama server is running at a valid address and a model named '%s' is installed.", base, model),
		}
	}

	return NewOllamaProvider(base, model, cfg.Temperature, cfg.Timeout, cfg.MaxRetries), nil
}

func (c FactoryConfig) providerConfig(name string) (ProviderConfig, bool) {
	switch name {
	case ProviderOpenAI:
		return c.OpenAI, true
	case ProviderAnthropic:
		return c.Anthropic, true
	case ProviderGemini:
		return c.Gemini, true
	case ProviderGroq:
		return c.Groq, true
	case ProviderMistral:
		return c.Mistral, true
	default:
		return ProviderConfig{}, false
	}
}
