// Package observability provides logging, metrics, and tracing support for
// the research ideation service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for paper searches, filtering, and idea generation
//   - OpenTelemetry tracing over OTLP/HTTP
//   - Context helpers for propagating request identifiers
//
// # Logging
//
// Create a logger from configuration and inject it into components:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//	retriever := literature.NewRetriever(sources, literature.RetrieverConfig{}, logger, metrics)
//
// Add search context to a logger:
//
//	logger = observability.WithSearchContext(logger, query, "arxiv")
//
// # Metrics
//
//	metrics := observability.NewMetrics("research_ideation")
//	metrics.RecordRetrievalStage("semantic_scholar")
//
// A nil *Metrics is valid; every Record* method is a no-op on nil.
//
// # Tracing
//
//	shutdown, err := observability.InitTracing(ctx, cfg)
//	defer shutdown(ctx)
package observability
