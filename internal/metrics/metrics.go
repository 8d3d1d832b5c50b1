package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// service metrics, exposed on /metrics
var (
	// completion metrics
	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgsuggest_completions_total",
			Help: "Completion requests by outcome",
		},
		[]string{"status"}, // ok, empty, validation, configuration, provider, error
	)

	CompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pgsuggest_completion_duration_seconds",
			Help:    "End-to-end completion latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
	)

	// retrieval metrics
	RetrievalDegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgsuggest_retrieval_degraded_total",
			Help: "Retrievals that fell back to empty context",
		},
		[]string{"reason"}, // provider, store_unavailable
	)

	RetrievedQueries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pgsuggest_retrieved_queries",
			Help:    "Number of similar historical queries placed in the prompt",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
	)

	// ingestion metrics
	IngestedRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgsuggest_ingested_records_total",
			Help: "Ingestion outcomes per distinct query",
		},
		[]string{"outcome"}, // inserted, already_present, embed_failed, store_failed
	)

	HistoryBufferedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pgsuggest_history_buffered_total",
			Help: "Executed queries accepted into the history buffer",
		},
	)

	// provider metrics
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgsuggest_provider_requests_total",
			Help: "Embedding and generation API requests",
		},
		[]string{"provider", "operation", "status"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pgsuggest_provider_request_duration_seconds",
			Help:    "Embedding and generation API latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"provider", "operation"},
	)

	EmbeddingCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgsuggest_embedding_cache_total",
			Help: "Embedding cache lookups",
		},
		[]string{"result"}, // hit, miss, error
	)
)
