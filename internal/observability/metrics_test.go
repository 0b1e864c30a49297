package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: prometheus/promauto registers metrics globally, so we need to use
// unique namespaces per test to avoid registration conflicts.

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("test_ideation_new")

	assert.NotNil(t, m.SearchesStarted)
	assert.NotNil(t, m.SearchesFailed)
	assert.NotNil(t, m.SearchesEmpty)
	assert.NotNil(t, m.SearchDuration)
	assert.NotNil(t, m.SourceRequestsTotal)
	assert.NotNil(t, m.SourceRateLimited)
	assert.NotNil(t, m.RetrievalStage)
	assert.NotNil(t, m.PapersPadded)
	assert.NotNil(t, m.FilterKept)
	assert.NotNil(t, m.FilterDropped)
	assert.NotNil(t, m.LLMRequestsTotal)
	assert.NotNil(t, m.LLMRequestsFailed)
	assert.NotNil(t, m.IdeasGenerated)
	assert.NotNil(t, m.IdeasBackfilled)
	assert.NotNil(t, m.HTTPRequestsTotal)
}

func TestRecordSearch(t *testing.T) {
	m := NewMetrics("test_ideation_search")

	m.RecordSearchStarted("arxiv")
	m.RecordSearchCompleted("arxiv", 0, 0.3)
	m.RecordSearchStarted("arxiv")
	m.RecordSearchCompleted("arxiv", 4, 0.2)
	m.RecordSearchStarted("semantic_scholar")
	m.RecordSearchFailed("semantic_scholar", 10)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.SearchesStarted.WithLabelValues("arxiv")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchesEmpty.WithLabelValues("arxiv")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchesFailed.WithLabelValues("semantic_scholar")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.SearchesFailed.WithLabelValues("arxiv")))

	count, err := getHistogramVecSampleCount(m.SearchDuration, "arxiv")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestRecordSourceRequests(t *testing.T) {
	m := NewMetrics("test_ideation_source")

	m.RecordSourceRequest("arxiv")
	m.RecordSourceRequest("arxiv")
	m.RecordSourceRateLimited("arxiv")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.SourceRequestsTotal.WithLabelValues("arxiv")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SourceRateLimited.WithLabelValues("arxiv")))
}

func TestRecordRetrieval(t *testing.T) {
	m := NewMetrics("test_ideation_retrieval")

	m.RecordRetrievalStage("mock")
	m.RecordRetrievalStage("mock")
	m.RecordPapersPadded(2)
	m.RecordPapersPadded(0)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RetrievalStage.WithLabelValues("mock")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.PapersPadded))
}

func TestRecordFilterResult(t *testing.T) {
	m := NewMetrics("test_ideation_filter")

	m.RecordFilterResult("paper", 2, 3)
	m.RecordFilterResult("venue", 1, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.FilterKept.WithLabelValues("paper")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.FilterDropped.WithLabelValues("paper")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FilterKept.WithLabelValues("venue")))
}

func TestRecordLLMRequest(t *testing.T) {
	m := NewMetrics("test_ideation_llm")

	m.RecordLLMRequest("openai", "gpt-4o-mini", 1.2)
	m.RecordLLMRequestFailed("openai", "gpt-4o-mini", 0.4)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("openai", "gpt-4o-mini")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LLMRequestsFailed.WithLabelValues("openai", "gpt-4o-mini")))
}

func TestRecordIdeasGenerated(t *testing.T) {
	m := NewMetrics("test_ideation_ideas")

	m.RecordIdeasGenerated(0)
	m.RecordIdeasGenerated(4)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.IdeasGenerated))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.IdeasBackfilled))
}

func TestRecordHTTPRequest(t *testing.T) {
	m := NewMetrics("test_ideation_http")

	m.RecordHTTPRequest("/api/v1/ideas", "200", 0.01)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/api/v1/ideas", "200")))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordSearchStarted("arxiv")
		m.RecordSearchCompleted("arxiv", 1, 0.1)
		m.RecordSearchFailed("arxiv", 0.1)
		m.RecordSourceRequest("arxiv")
		m.RecordSourceRateLimited("arxiv")
		m.RecordRetrievalStage("mock")
		m.RecordPapersPadded(1)
		m.RecordFilterResult("paper", 1, 1)
		m.RecordLLMRequest("openai", "m", 1)
		m.RecordLLMRequestFailed("openai", "m", 1)
		m.RecordIdeasGenerated(1)
		m.RecordHTTPRequest("/", "200", 0)
	})
}

func getHistogramVecSampleCount(h *prometheus.HistogramVec, label string) (uint64, error) {
	observer, err := h.GetMetricWithLabelValues(label)
	if err != nil {
		return 0, err
	}
	metric, ok := observer.(prometheus.Metric)
	if !ok {
		return 0, nil
	}

	m := &dto.Metric{}
	if err := metric.Write(m); err != nil {
		return 0, err
	}
	return m.Histogram.GetSampleCount(), nil
}
