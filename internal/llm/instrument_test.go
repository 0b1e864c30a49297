package llm

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/research-ideation-service/internal/observability"
)

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Invoke(context.Context, string) (string, error) { return s.text, s.err }
func (s *stubGenerator) Provider() string                              { return "stub" }
func (s *stubGenerator) Model() string                                 { return "stub-1" }

func TestInstrument(t *testing.T) {
	metrics := observability.NewMetrics("test_llm_instrument")

	t.Run("success records a request", func(t *testing.T) {
		gen := Instrument(&stubGenerator{text: "hello"}, zerolog.Nop(), metrics)

		text, err := gen.Invoke(context.Background(), "prompt")

		require.NoError(t, err)
		assert.Equal(t, "hello", text)
		assert.Equal(t, "stub", gen.Provider())
		assert.Equal(t, "stub-1", gen.Model())
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.LLMRequestsTotal.WithLabelValues("stub", "stub-1")))
	})

	t.Run("failure records and logs", func(t *testing.T) {
		var buf bytes.Buffer
		want := errors.New("boom")
		gen := Instrument(&stubGenerator{err: want}, zerolog.New(&buf), metrics)

		_, err := gen.Invoke(context.Background(), "prompt")

		assert.ErrorIs(t, err, want)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.LLMRequestsFailed.WithLabelValues("stub", "stub-1")))
		assert.Contains(t, buf.String(), "llm request failed")
		assert.Contains(t, buf.String(), `"provider":"stub"`)
	})

	t.Run("nil metrics are tolerated", func(t *testing.T) {
		inner := &stubGenerator{text: "x"}
		gen := Instrument(inner, zerolog.Nop(), nil)

		_, err := gen.Invoke(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Same(t, inner, gen.Unwrap())
	})
}
