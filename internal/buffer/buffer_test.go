package buffer

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "codeberg.org/pgsuggest/server/internal/errors"
	"codeberg.org/pgsuggest/server/internal/ingest"
)

type fakeIngester struct {
	mu      sync.Mutex
	batches [][]string
	report  func(queries []string) *ingest.Report
}

func (f *fakeIngester) Run(_ context.Context, queries []string, _ ingest.ProgressFunc) (*ingest.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batches = append(f.batches, queries)

	if f.report != nil {
		return f.report(queries), nil
	}

	return &ingest.Report{Received: len(queries), Distinct: len(queries), Inserted: len(queries)}, nil
}

func (f *fakeIngester) seen() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, b := range f.batches {
		n += len(b)
	}

	return n
}

func TestMemoryBuffer(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBuffer()

	require.NoError(t, b.Add(ctx, "SELECT 1", "SELECT 2", "SELECT 1"))

	n, err := b.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := b.Pop(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1"}, got)

	got, err = b.Pop(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 2"}, got)

	got, err = b.Pop(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFlush_DrainsBuffer(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBuffer()
	ing := &fakeIngester{}

	require.NoError(t, b.Add(ctx, "SELECT 1", "SELECT 2"))

	stored, err := NewFlusher(b, ing, time.Minute).Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	n, err := b.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFlush_RequeuesOnlyStoreFailures(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBuffer()

	ing := &fakeIngester{report: func(queries []string) *ingest.Report {
		return &ingest.Report{
			Distinct:    len(queries),
			Inserted:    1,
			EmbedFailed: 1,
			StoreFailed: 1,
			Failures: []ingest.Failure{
				{Query: "SELECT broken", Stage: ingest.StageEmbed, Err: apperrors.Provider("embed", errors.New("bad input"))},
				{Query: "SELECT later", Stage: ingest.StageStore, Err: apperrors.StoreUnavailable("upsert", errors.New("connection refused"))},
			},
		}
	}}

	require.NoError(t, b.Add(ctx, "SELECT ok", "SELECT broken", "SELECT later"))

	stored, err := NewFlusher(b, ing, time.Minute).Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	got, err := b.Pop(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT later"}, got)
}

func TestFlusher_StopFlushesRemaining(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBuffer()
	ing := &fakeIngester{}

	f := NewFlusher(b, ing, time.Hour)
	f.Start()

	require.NoError(t, b.Add(ctx, "SELECT 1", "SELECT 2", "SELECT 3"))

	f.Stop()
	f.Stop() // idempotent

	assert.Equal(t, 3, ing.seen())
}

func TestRedisBuffer(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx := context.Background()

	b, err := NewRedisBufferFromURL(ctx, redisURL)
	require.NoError(t, err)
	defer b.Close() //nolint:errcheck

	t.Cleanup(func() {
		b.client.Del(context.Background(), keyPendingHistory) //nolint:errcheck
	})

	require.NoError(t, b.Add(ctx, "SELECT 1", "SELECT 1", "SELECT 2"))

	n, err := b.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := b.Pop(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"SELECT 1", "SELECT 2"}, got)
}
