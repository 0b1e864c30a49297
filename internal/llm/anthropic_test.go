package llm

import (
	"context"
	"errors"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time check that AnthropicProvider implements Generator.
var _ Generator = (*AnthropicProvider)(nil)

type mockMessager struct {
	responses []*anthropic.Message
	errs      []error
	calls     int
	lastReq   anthropic.MessageNewParams
}

func (m *mockMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	i := m.calls
	m.calls++
	m.lastReq = params
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return m.responses[len(m.responses)-1], nil
}

func textMessage(parts ...string) *anthropic.Message {
	msg := &anthropic.Message{}
	for _, p := range parts {
		msg.Content = append(msg.Content, anthropic.ContentBlockUnion{Type: "text", Text: p})
	}
	return msg
}

func TestAnthropicProvider_Invoke(t *testing.T) {
	t.Run("concatenates text blocks", func(t *testing.T) {
		mock := &mockMessager{responses: []*anthropic.Message{textMessage("1. First idea ", "about attention")}}
		p := newAnthropicProvider(mock, "", 0.3, 0)

		text, err := p.Invoke(context.Background(), "prompt text")

		require.NoError(t, err)
		assert.Equal(t, "1. First idea about attention", text)
		assert.Equal(t, anthropic.Model(defaultAnthropicModel), mock.lastReq.Model)
		assert.Equal(t, int64(defaultMaxTokens), mock.lastReq.MaxTokens)
		require.Len(t, mock.lastReq.Messages, 1)
	})

	t.Run("ignores non-text blocks", func(t *testing.T) {
		msg := textMessage("answer")
		msg.Content = append([]anthropic.ContentBlockUnion{{Type: "thinking"}}, msg.Content...)
		p := newAnthropicProvider(&mockMessager{responses: []*anthropic.Message{msg}}, "claude-test", 0.3, 0)

		text, err := p.Invoke(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "answer", text)
		assert.Equal(t, "claude-test", p.Model())
	})

	t.Run("empty content is an error", func(t *testing.T) {
		p := newAnthropicProvider(&mockMessager{responses: []*anthropic.Message{{}}}, "", 0.3, 0)

		_, err := p.Invoke(context.Background(), "prompt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no content blocks")
	})

	t.Run("retries overloaded responses", func(t *testing.T) {
		mock := &mockMessager{
			errs:      []error{&anthropic.Error{StatusCode: 529}, nil},
			responses: []*anthropic.Message{nil, textMessage("ok")},
		}
		p := newAnthropicProvider(mock, "", 0.3, 1)
		p.retryDelay = 0

		text, err := p.Invoke(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.Equal(t, 2, mock.calls)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		mock := &mockMessager{errs: []error{&anthropic.Error{StatusCode: 401}}}
		p := newAnthropicProvider(mock, "", 0.3, 3)
		p.retryDelay = 0

		_, err := p.Invoke(context.Background(), "prompt")

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 401, apiErr.StatusCode)
		assert.Equal(t, ProviderAnthropic, apiErr.Provider)
		assert.Equal(t, 1, mock.calls)
	})
}

func TestMapAnthropicError(t *testing.T) {
	t.Run("context errors pass through", func(t *testing.T) {
		err := mapAnthropicError(context.DeadlineExceeded)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, isTransientError(err))
	})

	t.Run("unknown errors are transient network errors", func(t *testing.T) {
		err := mapAnthropicError(errors.New("connection reset"))
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 0, apiErr.StatusCode)
		assert.Equal(t, "network_error", apiErr.Type)
		assert.True(t, apiErr.IsTransient())
	})
}

func TestNewAnthropicProvider(t *testing.T) {
	p := NewAnthropicProvider(ProviderConfig{APIKey: "k", Model: "claude-x"}, 0.7, 0, -2)
	assert.Equal(t, ProviderAnthropic, p.Provider())
	assert.Equal(t, "claude-x", p.Model())
	assert.Equal(t, 0, p.maxRetries)
	assert.NotNil(t, p.messages)
}
