package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the research ideation service.
// Metrics are organized by subsystem: paper sources, literature retrieval,
// quality filtering, LLM generation, ideas, and HTTP. All counters and
// histograms are registered via promauto with the default Prometheus registry.
//
// Every Record* method is safe to call on a nil *Metrics, so components can
// be constructed without metrics in tests and CLI runs.
type Metrics struct {
	// SearchesStarted counts searches initiated, labeled by paper source.
	SearchesStarted *prometheus.CounterVec

	// SearchesFailed counts searches that returned an error or timed out, labeled by source.
	SearchesFailed *prometheus.CounterVec

	// SearchesEmpty counts searches that returned no usable papers, labeled by source.
	SearchesEmpty *prometheus.CounterVec

	// SearchDuration observes search duration in seconds, labeled by paper source.
	SearchDuration *prometheus.HistogramVec

	// SourceRequestsTotal counts HTTP requests to paper source APIs, labeled by source.
	SourceRequestsTotal *prometheus.CounterVec

	// SourceRateLimited counts 429 responses from paper source APIs, labeled by source.
	SourceRateLimited *prometheus.CounterVec

	// RetrievalStage counts which stage of the fallback chain served a
	// retrieval, labeled by stage (semantic_scholar, arxiv, mock).
	RetrievalStage *prometheus.CounterVec

	// PapersPadded counts mock papers appended by the normalizer.
	PapersPadded prometheus.Counter

	// FilterKept counts items kept by the quality filter, labeled by kind (venue, paper).
	FilterKept *prometheus.CounterVec

	// FilterDropped counts items dropped by the quality filter, labeled by kind.
	FilterDropped *prometheus.CounterVec

	// LLMRequestsTotal counts LLM generation requests, labeled by provider and model.
	LLMRequestsTotal *prometheus.CounterVec

	// LLMRequestsFailed counts failed LLM requests, labeled by provider and model.
	LLMRequestsFailed *prometheus.CounterVec

	// LLMRequestDuration observes LLM request duration in seconds, labeled by provider.
	LLMRequestDuration *prometheus.HistogramVec

	// IdeasGenerated counts idea sets returned to callers.
	IdeasGenerated prometheus.Counter

	// IdeasBackfilled counts template ideas used to complete an idea set.
	IdeasBackfilled prometheus.Counter

	// HTTPRequestsTotal counts API requests, labeled by route and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes API request duration in seconds, labeled by route.
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Searches
		SearchesStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of paper searches started",
		}, []string{"source"}),
		SearchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of paper searches that failed",
		}, []string{"source"}),
		SearchesEmpty: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_empty_total",
			Help:      "Total number of paper searches that yielded no usable papers",
		}, []string{"source"}),
		SearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of paper searches in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		}, []string{"source"}),

		// Sources
		SourceRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Total number of HTTP requests to paper source APIs",
		}, []string{"source"}),
		SourceRateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rate_limited_total",
			Help:      "Total number of rate-limited responses from paper source APIs",
		}, []string{"source"}),

		// Retrieval
		RetrievalStage: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_stage_total",
			Help:      "Total number of retrievals served by each stage of the fallback chain",
		}, []string{"stage"}),
		PapersPadded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_padded_total",
			Help:      "Total number of mock papers appended to short result sets",
		}),

		// Quality filter
		FilterKept: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quality_filter_kept_total",
			Help:      "Total number of items kept by the quality filter",
		}, []string{"kind"}),
		FilterDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quality_filter_dropped_total",
			Help:      "Total number of items dropped by the quality filter",
		}, []string{"kind"}),

		// LLM
		LLMRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM generation requests",
		}, []string{"provider", "model"}),
		LLMRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_failed_total",
			Help:      "Total number of failed LLM generation requests",
		}, []string{"provider", "model"}),
		LLMRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Duration of LLM generation requests in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"provider"}),

		// Ideas
		IdeasGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idea_sets_generated_total",
			Help:      "Total number of idea sets generated",
		}),
		IdeasBackfilled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ideas_backfilled_total",
			Help:      "Total number of template ideas used to complete idea sets",
		}),

		// HTTP
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP API requests",
		}, []string{"route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// RecordSearchStarted records that a search has started.
func (m *Metrics) RecordSearchStarted(source string) {
	if m == nil {
		return
	}
	m.SearchesStarted.WithLabelValues(source).Inc()
}

// RecordSearchCompleted records a finished search and whether it produced papers.
func (m *Metrics) RecordSearchCompleted(source string, paperCount int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
	if paperCount == 0 {
		m.SearchesEmpty.WithLabelValues(source).Inc()
	}
}

// RecordSearchFailed records that a search has failed.
func (m *Metrics) RecordSearchFailed(source string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.SearchesFailed.WithLabelValues(source).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordSourceRequest records an outbound HTTP request to a paper source.
func (m *Metrics) RecordSourceRequest(source string) {
	if m == nil {
		return
	}
	m.SourceRequestsTotal.WithLabelValues(source).Inc()
}

// RecordSourceRateLimited records a rate-limited response from a paper source.
func (m *Metrics) RecordSourceRateLimited(source string) {
	if m == nil {
		return
	}
	m.SourceRateLimited.WithLabelValues(source).Inc()
}

// RecordRetrievalStage records the fallback stage that served a retrieval.
func (m *Metrics) RecordRetrievalStage(stage string) {
	if m == nil {
		return
	}
	m.RetrievalStage.WithLabelValues(stage).Inc()
}

// RecordPapersPadded records mock papers appended during normalization.
func (m *Metrics) RecordPapersPadded(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.PapersPadded.Add(float64(count))
}

// RecordFilterResult records kept and dropped counts for one kind of item.
func (m *Metrics) RecordFilterResult(kind string, kept, dropped int) {
	if m == nil {
		return
	}
	m.FilterKept.WithLabelValues(kind).Add(float64(kept))
	m.FilterDropped.WithLabelValues(kind).Add(float64(dropped))
}

// RecordLLMRequest records a successful LLM request.
func (m *Metrics) RecordLLMRequest(provider, model string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(provider, model).Inc()
	m.LLMRequestDuration.WithLabelValues(provider).Observe(durationSeconds)
}

// RecordLLMRequestFailed records a failed LLM request.
func (m *Metrics) RecordLLMRequestFailed(provider, model string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(provider, model).Inc()
	m.LLMRequestsFailed.WithLabelValues(provider, model).Inc()
	m.LLMRequestDuration.WithLabelValues(provider).Observe(durationSeconds)
}

// RecordIdeasGenerated records a completed idea set and how many of its
// entries came from templates.
func (m *Metrics) RecordIdeasGenerated(backfilled int) {
	if m == nil {
		return
	}
	m.IdeasGenerated.Inc()
	if backfilled > 0 {
		m.IdeasBackfilled.Add(float64(backfilled))
	}
}

// RecordHTTPRequest records a served API request.
func (m *Metrics) RecordHTTPRequest(route, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(durationSeconds)
}
