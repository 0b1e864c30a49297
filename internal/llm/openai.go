package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default values for OpenAI-compatible providers.
const (
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultGroqBaseURL    = "https://api.groq.com/openai/v1"
	defaultGroqModel      = "llama-3.1-8b-instant"
	defaultMistralBaseURL = "https://api.mistral.ai/v1"
	defaultMistralModel   = "mistral-small-latest"

	defaultOpenAIRetryDelay = 2 * time.Second
	defaultLLMTimeout       = 60 * time.Second
)

// chatRequest represents the Chat Completions API request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatMessage represents a single message in the chat conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse represents the Chat Completions API response body.
type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIErrorResponse struct {
	Error openAIErrorDetail `json:"error"`
}

type openAIErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// ProviderConfig holds the connection settings for one cloud provider.
// This is defined in the llm package to avoid importing the config package.
type ProviderConfig struct {
	// APIKey authenticates requests. Required for every cloud provider.
	APIKey string
	// Model is the model identifier (empty means provider default).
	Model string
	// BaseURL is the API base URL (empty means provider default).
	BaseURL string
}

// OpenAIProvider implements Generator against an OpenAI-compatible Chat
// Completions endpoint. Groq and Mistral expose the same wire format and
// reuse it under their own provider names.
type OpenAIProvider struct {
	httpClient  *http.Client
	name        string
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxRetries  int
	retryDelay  time.Duration
}

// NewOpenAIProvider creates an OpenAI Chat Completions generator.
func NewOpenAIProvider(cfg ProviderConfig, temperature float64, timeout time.Duration, maxRetries int) *OpenAIProvider {
	return newChatProvider(ProviderOpenAI, defaultOpenAIBaseURL, defaultOpenAIModel, cfg, temperature, timeout, maxRetries)
}

// NewGroqProvider creates a generator for Groq's OpenAI-compatible API.
func NewGroqProvider(cfg ProviderConfig, temperature float64, timeout time.Duration, maxRetries int) *OpenAIProvider {
	return newChatProvider(ProviderGroq, defaultGroqBaseURL, defaultGroqModel, cfg, temperature, timeout, maxRetries)
}

// NewMistralProvider creates a generator for Mistral's OpenAI-compatible API.
func NewMistralProvider(cfg ProviderConfig, temperature float64, timeout time.Duration, maxRetries int) *OpenAIProvider {
	return newChatProvider(ProviderMistral, defaultMistralBaseURL, defaultMistralModel, cfg, temperature, timeout, maxRetries)
}

func newChatProvider(name, baseURL, model string, cfg ProviderConfig, temperature float64, timeout time.Duration, maxRetries int) *OpenAIProvider {
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		model = cfg.Model
	}
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &OpenAIProvider{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		name:        name,
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		maxRetries:  maxRetries,
		retryDelay:  defaultOpenAIRetryDelay,
	}
}

// Invoke sends prompt as a single user message and returns the first choice.
// Transient errors (5xx, 429, network) are retried up to maxRetries times.
func (p *OpenAIProvider) Invoke(ctx context.Context, prompt string) (string, error) {
	chatReq := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: p.temperature,
		MaxTokens:   defaultMaxTokens,
	}

	return retryInvoke(ctx, p.name, p.maxRetries, p.retryDelay, func(ctx context.Context) (string, error) {
		return p.doRequest(ctx, chatReq)
	})
}

// Provider returns the name of the LLM provider.
func (p *OpenAIProvider) Provider() string {
	return p.name
}

// Model returns the model identifier being used.
func (p *OpenAIProvider) Model() string {
	return p.model
}

func (p *OpenAIProvider) doRequest(ctx context.Context, chatReq chatRequest) (string, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("%s: failed to marshal request: %w", p.name, err)
	}

	endpoint := p.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: failed to create request: %w", p.name, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", &APIError{
			Provider: p.name,
			Message:  fmt.Sprintf("request failed: %v", err),
			Type:     "network_error",
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("%s: failed to read response body: %w", p.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", parseOpenAIAPIError(p.name, resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%s: failed to unmarshal response: %w", p.name, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty choices in response", p.name)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// parseOpenAIAPIError parses an error body in the OpenAI error envelope.
func parseOpenAIAPIError(provider string, statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    string(body),
	}

	var errResp openAIErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		apiErr.Message = errResp.Error.Message
		apiErr.Type = errResp.Error.Type
		apiErr.Code = errResp.Error.Code
	}

	return apiErr
}
