// Package llm provides text generation backends for the Research Ideation
// Service.
//
// Every backend implements Generator: a single prompt in, a single text
// completion out. Supported backends are OpenAI-compatible chat APIs (OpenAI,
// Groq, Mistral), Anthropic, Gemini and a local Ollama server. Use
// NewGenerator to resolve one from configuration.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider names accepted by NewGenerator.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderGroq      = "groq"
	ProviderMistral   = "mistral"
	ProviderOllama    = "ollama"
)

// Generator produces a completion for a prompt.
type Generator interface {
	// Invoke sends prompt to the model and returns the completion text.
	Invoke(ctx context.Context, prompt string) (string, error)
	// Provider returns the backend name, e.g. "openai".
	Provider() string
	// Model returns the model identifier in use.
	Model() string
}

const defaultMaxTokens = 1024

// retryInvoke runs call up to maxRetries+1 times, retrying only transient
// errors with a linearly growing delay.
func retryInvoke(ctx context.Context, provider string, maxRetries int, retryDelay time.Duration, call func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%s: context cancelled during retry wait: %w", provider, ctx.Err())
			case <-time.After(delay):
			}
		}

		text, err := call(ctx)
		if err == nil {
			return text, nil
		}

		if !isTransientError(err) {
			return "", err
		}
		lastErr = err
	}

	if maxRetries == 0 {
		return "", lastErr
	}
	return "", fmt.Errorf("%s: exhausted %d retries: %w", provider, maxRetries, lastErr)
}
