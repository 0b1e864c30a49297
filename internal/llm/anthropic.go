package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicMessager is the subset of the Anthropic SDK messages service the
// provider calls. Tests substitute a fake.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicProvider implements Generator using the Anthropic Messages API.
type AnthropicProvider struct {
	messages    AnthropicMessager
	model       string
	temperature float64
	maxRetries  int
	retryDelay  time.Duration
}

// NewAnthropicProvider creates a new AnthropicProvider. SDK-level retries are
// disabled so that retry policy stays with maxRetries.
func NewAnthropicProvider(cfg ProviderConfig, temperature float64, timeout time.Duration, maxRetries int) *AnthropicProvider {
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	return newAnthropicProvider(&client.Messages, cfg.Model, temperature, maxRetries)
}

func newAnthropicProvider(messages AnthropicMessager, model string, temperature float64, maxRetries int) *AnthropicProvider {
	if model == "" {
		model = defaultAnthropicModel
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &AnthropicProvider{
		messages:    messages,
		model:       model,
		temperature: temperature,
		maxRetries:  maxRetries,
		retryDelay:  time.Second,
	}
}

// Invoke sends prompt as a single user turn and concatenates the text blocks
// of the reply.
func (p *AnthropicProvider) Invoke(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   defaultMaxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(p.temperature),
	}

	return retryInvoke(ctx, ProviderAnthropic, p.maxRetries, p.retryDelay, func(ctx context.Context) (string, error) {
		resp, err := p.messages.New(ctx, params)
		if err != nil {
			return "", mapAnthropicError(err)
		}
		if resp == nil || len(resp.Content) == 0 {
			return "", fmt.Errorf("anthropic: response contains no content blocks")
		}

		var sb strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		return sb.String(), nil
	})
}

// Provider returns the provider name.
func (p *AnthropicProvider) Provider() string {
	return ProviderAnthropic
}

// Model returns the model identifier being used.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// mapAnthropicError converts SDK errors into APIError so the shared retry
// classification applies. Context errors pass through untouched.
func mapAnthropicError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("anthropic: %w", err)
	}

	var sdkErr *anthropic.Error
	if errors.As(err, &sdkErr) {
		return &APIError{
			Provider:   ProviderAnthropic,
			StatusCode: sdkErr.StatusCode,
			Message:    fmt.Sprintf("request rejected with status %d", sdkErr.StatusCode),
		}
	}

	return &APIError{
		Provider: ProviderAnthropic,
		Message:  fmt.Sprintf("request failed: %v", err),
		Type:     "network_error",
	}
}
