package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/pgsuggest/server/internal/logger"
	"codeberg.org/pgsuggest/server/internal/metrics"
)

// embeddings:{model}:{sha256(input)} - JSON-encoded float32 vector
const keyEmbedding = "embeddings:%s:%s"

const defaultEmbeddingTTL = 30 * 24 * time.Hour

// wraps an Embedder with a Redis read-through cache.
// cache failures are logged and never fail the embedding call.
type CachedEmbedder struct {
	next   Embedder
	client *redis.Client
	model  string
	ttl    time.Duration
}

func NewCachedEmbedder(next Embedder, client *redis.Client, model string) *CachedEmbedder {
	return &CachedEmbedder{
		next:   next,
		client: client,
		model:  model,
		ttl:    defaultEmbeddingTTL,
	}
}

func (c *CachedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var embedding []float32
		if err := json.Unmarshal(cached, &embedding); err == nil {
			metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			return embedding, nil
		}

		logger.Warn("discarding malformed cached embedding", "key", key)
	case errors.Is(err, redis.Nil):
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.EmbeddingCacheTotal.WithLabelValues("error").Inc()
		logger.Warn("embedding cache lookup failed", "error", err)
	}

	embedding, err := c.next.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(embedding); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			logger.Warn("failed to cache embedding", "error", err)
		}
	}

	return embedding, nil
}

// inputs differing only by newlines share an entry, matching what the provider sees
func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(prepareInput(text)))
	return fmt.Sprintf(keyEmbedding, c.model, hex.EncodeToString(sum[:]))
}
