package buffer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/pgsuggest/server/internal/logger"
)

// Redis-backed history buffer, shared by every server replica
type RedisBuffer struct {
	client *redis.Client
	owned  bool
}

// connects to Redis and verifies the connection
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis")

	return client, nil
}

// wraps an existing client; Close leaves it open for its owner
func NewRedisBuffer(client *redis.Client) *RedisBuffer {
	return &RedisBuffer{client: client}
}

// creates a buffer with its own Redis connection
func NewRedisBufferFromURL(ctx context.Context, redisURL string) (*RedisBuffer, error) {
	client, err := Connect(ctx, redisURL)
	if err != nil {
		return nil, err
	}

	return &RedisBuffer{client: client, owned: true}, nil
}

func (b *RedisBuffer) Add(ctx context.Context, queries ...string) error {
	if len(queries) == 0 {
		return nil
	}

	members := make([]any, len(queries))
	for i, q := range queries {
		members[i] = q
	}

	if err := b.client.SAdd(ctx, keyPendingHistory, members...).Err(); err != nil {
		return fmt.Errorf("failed to buffer history in redis: %w", err)
	}

	return nil
}

func (b *RedisBuffer) Pop(ctx context.Context, n int) ([]string, error) {
	queries, err := b.client.SPopN(ctx, keyPendingHistory, int64(n)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to pop history from redis: %w", err)
	}

	return queries, nil
}

func (b *RedisBuffer) Len(ctx context.Context) (int, error) {
	n, err := b.client.SCard(ctx, keyPendingHistory).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count buffered history: %w", err)
	}

	return int(n), nil
}

// closes the Redis connection if this buffer opened it
func (b *RedisBuffer) Close() error {
	if b.owned {
		return b.client.Close()
	}

	return nil
}
