package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// geminiModels is the subset of genai.Models used by GeminiProvider.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiProvider implements Generator using the Gemini API.
type GeminiProvider struct {
	models      geminiModels
	model       string
	temperature float64
	timeout     time.Duration
	maxRetries  int
	retryDelay  time.Duration
}

// NewGeminiProvider creates a Gemini generator backed by the genai client.
func NewGeminiProvider(ctx context.Context, cfg ProviderConfig, temperature float64, timeout time.Duration, maxRetries int) (*GeminiProvider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return newGeminiProvider(client.Models, cfg.Model, temperature, timeout, maxRetries), nil
}

func newGeminiProvider(models geminiModels, model string, temperature float64, timeout time.Duration, maxRetries int) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &GeminiProvider{
		models:      models,
		model:       model,
		temperature: temperature,
		timeout:     timeout,
		maxRetries:  maxRetries,
		retryDelay:  time.Second,
	}
}

// Invoke calls GenerateContent with prompt as the only content part.
func (p *GeminiProvider) Invoke(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(p.temperature)),
		MaxOutputTokens: defaultMaxTokens,
	}

	return retryInvoke(ctx, ProviderGemini, p.maxRetries, p.retryDelay, func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		resp, err := p.models.GenerateContent(callCtx, p.model, genai.Text(prompt), config)
		if err != nil {
			return "", mapGeminiError(err)
		}
		if resp == nil {
			return "", fmt.Errorf("gemini: empty response")
		}
		return resp.Text(), nil
	})
}

// Provider returns the provider name.
func (p *GeminiProvider) Provider() string {
	return ProviderGemini
}

// Model returns the model identifier being used.
func (p *GeminiProvider) Model() string {
	return p.model
}

func mapGeminiError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gemini: %w", err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Provider: ProviderGemini, StatusCode: apiErr.Code, Message: apiErr.Message, Type: apiErr.Status}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &APIError{Provider: ProviderGemini, StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message, Type: apiErrPtr.Status}
	}

	return &APIError{
		Provider: ProviderGemini,
		Message:  fmt.Sprintf("request failed: %v", err),
		Type:     "network_error",
	}
}
