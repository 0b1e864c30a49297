package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Defaults for a local Ollama server.
const (
	DefaultLocalModelURL = "http://localhost:11434"
	DefaultLocalModel    = "llama2"
)

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// OllamaProvider implements Generator against a local Ollama server's
// /api/chat endpoint.
type OllamaProvider struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float64
	maxRetries  int
	retryDelay  time.Duration
}

// NewOllamaProvider creates a local generator. Empty baseURL and model fall
// back to DefaultLocalModelURL and DefaultLocalModel.
func NewOllamaProvider(baseURL, model string, temperature float64, timeout time.Duration, maxRetries int) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultLocalModelURL
	}
	if model == "" {
		model = DefaultLocalModel
	}
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &OllamaProvider{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		maxRetries:  maxRetries,
		retryDelay:  time.Second,
	}
}

// Invoke sends a non-streaming chat request and returns the reply content.
func (p *OllamaProvider) Invoke(ctx context.Context, prompt string) (string, error) {
	req := ollamaChatRequest{
		Model:    p.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Options:  ollamaOptions{Temperature: p.temperature},
	}

	return retryInvoke(ctx, ProviderOllama, p.maxRetries, p.retryDelay, func(ctx context.Context) (string, error) {
		return p.doRequest(ctx, req)
	})
}

// Provider returns the provider name.
func (p *OllamaProvider) Provider() string {
	return ProviderOllama
}

// Model returns the local model name.
func (p *OllamaProvider) Model() string {
	return p.model
}

// BaseURL returns the server address requests go to.
func (p *OllamaProvider) BaseURL() string {
	return p.baseURL
}

func (p *OllamaProvider) doRequest(ctx context.Context, chatReq ollamaChatRequest) (string, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("ollama: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", &APIError{
			Provider: ProviderOllama,
			Message:  fmt.Sprintf("request failed: %v. Ensure Ollama is running at %s and model %q is installed", err, p.baseURL, p.model),
			Type:     "network_error",
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("ollama: failed to read response body: %w", err)
	}

	var chatResp ollamaChatResponse
	decodeErr := json.Unmarshal(respBody, &chatResp)

	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		if decodeErr == nil && chatResp.Error != "" {
			msg = chatResp.Error
		}
		return "", &APIError{Provider: ProviderOllama, StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("ollama: failed to unmarshal response: %w", decodeErr)
	}

	return chatResp.Message.Content, nil
}
