package retriever

import (
	"context"
	"strings"
	"time"

	apperrors "codeberg.org/pgsuggest/server/internal/errors"
	"codeberg.org/pgsuggest/server/internal/llm"
	"codeberg.org/pgsuggest/server/internal/logger"
	"codeberg.org/pgsuggest/server/internal/metrics"
	"codeberg.org/pgsuggest/server/internal/storage"
)

const (
	defaultTopK    = 3
	defaultTimeout = 3 * time.Second
)

// turns a partial query into ranked historical context
type Ranker struct {
	embedder llm.Embedder
	store    storage.VectorStore
	topK     int
	timeout  time.Duration
}

type Config struct {
	TopK    int           // used when Rank is called with k <= 0
	Timeout time.Duration // bounds embedding plus lookup
}

func NewRanker(embedder llm.Embedder, store storage.VectorStore, cfg Config) *Ranker {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Ranker{
		embedder: embedder,
		store:    store,
		topK:     cfg.TopK,
		timeout:  cfg.Timeout,
	}
}

// returns up to k stored queries nearest to currentQuery, nearest first.
// provider and store failures degrade to an empty result; anything else is returned.
func (r *Ranker) Rank(ctx context.Context, currentQuery string, k int) ([]string, error) {
	if k <= 0 {
		k = r.topK
	}

	if strings.TrimSpace(currentQuery) == "" {
		return []string{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	embedding, err := r.embedder.GenerateEmbedding(ctx, currentQuery)
	if err != nil {
		return r.degrade(ctx, "embedding", err)
	}

	results, err := r.store.NearestNeighbors(ctx, embedding, k)
	if err != nil {
		return r.degrade(ctx, "lookup", err)
	}

	metrics.RetrievedQueries.Observe(float64(len(results)))

	return results, nil
}

func (r *Ranker) degrade(ctx context.Context, stage string, err error) ([]string, error) {
	// an embedder that ignores its deadline still counts as a provider failure
	if !apperrors.IsDegradable(err) && ctx.Err() != nil && stage == "embedding" {
		err = apperrors.Provider("retriever.embedding", err)
	}

	if !apperrors.IsDegradable(err) {
		return nil, err
	}

	kind := apperrors.KindOf(err)
	metrics.RetrievalDegradedTotal.WithLabelValues(string(kind)).Inc()
	metrics.RetrievedQueries.Observe(0)

	logger.FromContext(ctx).Warn("retrieval degraded, continuing without similar queries",
		"stage", stage,
		"reason", kind,
		"error", err,
	)

	return []string{}, nil
}
