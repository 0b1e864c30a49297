package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/ideas"
	"github.com/helixir/research-ideation-service/internal/literature"
	"github.com/helixir/research-ideation-service/internal/observability"
	"github.com/helixir/research-ideation-service/internal/quality"
)

type mockRetriever struct {
	retrieveFn func(ctx context.Context, query string, limit int) literature.Retrieval
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, limit int) literature.Retrieval {
	return m.retrieveFn(ctx, query, limit)
}

type recordingLLM struct {
	prompt string
	text   string
	err    error
}

func (r *recordingLLM) Invoke(_ context.Context, prompt string) (string, error) {
	r.prompt = prompt
	return r.text, r.err
}
func (r *recordingLLM) Provider() string { return "fake" }
func (r *recordingLLM) Model() string    { return "fake-1" }

type recordingPublisher struct {
	events []*domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *domain.Event) error {
	p.events = append(p.events, e)
	return p.err
}
func (p *recordingPublisher) Close() error { return nil }

func newTestPipeline(papers []domain.Paper, model *recordingLLM, pub *recordingPublisher) (*Pipeline, *string, *int) {
	var gotQuery string
	var gotLimit int
	retriever := &mockRetriever{retrieveFn: func(_ context.Context, query string, limit int) literature.Retrieval {
		gotQuery, gotLimit = query, limit
		return literature.Retrieval{Papers: papers, Source: domain.SourceTypeArXiv}
	}}
	filter := quality.NewFilter(quality.Config{}, zerolog.Nop(), nil)
	gen := ideas.NewGenerator(model, zerolog.Nop(), nil)
	var p *Pipeline
	if pub == nil {
		p = New(retriever, filter, gen, nil, zerolog.Nop())
	} else {
		p = New(retriever, filter, gen, pub, zerolog.Nop())
	}
	return p, &gotQuery, &gotLimit
}

func TestPipeline_Run(t *testing.T) {
	papers := []domain.Paper{
		{Title: "Scaling LLM attention", Summary: "Transformer efficiency", Year: 2024},
		{Title: "PID autotuning", Summary: "Classical control", Year: 2021},
	}
	venues := []domain.Venue{
		{Name: "ACL", Description: "NLP and large language models"},
		{Name: "CDC", Description: "Control"},
	}

	t.Run("filtered items never reach the prompt", func(t *testing.T) {
		model := &recordingLLM{text: "1. Idea A long enough text"}
		pub := &recordingPublisher{}
		p, gotQuery, gotLimit := newTestPipeline(papers, model, pub)

		ctx := observability.WithRequestID(context.Background(), "req-42")
		res, err := p.Run(ctx, Request{Question: " llm efficiency ", Domain: "NLP", Venues: venues, Limit: 4})

		require.NoError(t, err)
		assert.Equal(t, "llm efficiency", *gotQuery)
		assert.Equal(t, 4, *gotLimit)
		assert.Equal(t, papers, res.Papers)
		assert.Equal(t, domain.SourceTypeArXiv, res.PaperSource)
		require.Len(t, res.FilteredVenues, 1)
		assert.Equal(t, "ACL", res.FilteredVenues[0].Name)
		require.Len(t, res.FilteredPapers, 1)
		assert.Equal(t, "Scaling LLM attention", res.FilteredPapers[0].Title)
		require.Len(t, res.Ideas, domain.IdeaCount)
		assert.Equal(t, "Idea A long enough text", res.Ideas[0])

		assert.Contains(t, model.prompt, "TARGET VENUES:\nACL\n")
		assert.Contains(t, model.prompt, "Scaling LLM attention")
		assert.NotContains(t, model.prompt, "CDC")
		assert.NotContains(t, model.prompt, "PID autotuning")

		require.Len(t, pub.events, 1)
		ev := pub.events[0]
		assert.Equal(t, domain.EventTypePipelineCompleted, ev.EventType)
		assert.Equal(t, "req-42", ev.Key)
		var payload domain.PipelineCompletedPayload
		require.NoError(t, json.Unmarshal(ev.Payload, &payload))
		assert.Equal(t, "NLP", payload.Domain)
		assert.Equal(t, 2, payload.PapersFound)
		assert.Equal(t, 1, payload.PapersKept)
		assert.Equal(t, 1, payload.VenuesKept)
		assert.Equal(t, 5, payload.IdeaCount)
		assert.Equal(t, 4, payload.FallbackIdeas)
		assert.Equal(t, domain.SourceTypeArXiv, payload.PaperSource)
	})

	t.Run("domain defaults to question", func(t *testing.T) {
		p, _, _ := newTestPipeline(papers, &recordingLLM{err: errors.New("down")}, nil)

		res, err := p.Run(context.Background(), Request{Question: "Control Theory"})

		require.NoError(t, err)
		assert.Equal(t, ideas.FallbackIdeas("control theory"), res.Ideas)
		assert.Empty(t, res.FilteredVenues)
	})

	t.Run("publish failure does not fail the run", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("broker down")}
		p, _, _ := newTestPipeline(papers, &recordingLLM{}, pub)

		res, err := p.Run(context.Background(), Request{Question: "nlp"})

		require.NoError(t, err)
		assert.Len(t, res.Ideas, domain.IdeaCount)
		assert.Len(t, pub.events, 1)
		assert.Equal(t, "nlp", pub.events[0].Key)
	})

	t.Run("blank question is rejected", func(t *testing.T) {
		p, _, _ := newTestPipeline(papers, &recordingLLM{}, nil)

		_, err := p.Run(context.Background(), Request{Question: "  "})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
