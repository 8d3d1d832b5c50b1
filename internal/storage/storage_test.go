package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/vec/search"

	apperrors "codeberg.org/pgsuggest/server/internal/errors"
)

// runs the shared contract against every in-process backend
func backends(t *testing.T, opts Options) map[string]Backend {
	t.Helper()

	mem, err := NewMemoryStore(opts)
	require.NoError(t, err)

	bolt, err := NewBoltStore(filepath.Join(t.TempDir(), "queries.db"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() }) //nolint:errcheck

	return map[string]Backend{"memory": mem, "bolt": bolt}
}

func TestUpsertIfAbsent_IsIdempotent(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t, Options{Dimension: 2}) {
		t.Run(name, func(t *testing.T) {
			res, err := store.UpsertIfAbsent(ctx, "SELECT 1", []float32{1, 0})
			require.NoError(t, err)
			assert.Equal(t, Inserted, res)

			// a second embedding for the same text never overwrites the first
			res, err = store.UpsertIfAbsent(ctx, "SELECT 1", []float32{0, 1})
			require.NoError(t, err)
			assert.Equal(t, AlreadyPresent, res)

			count, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, count)

			got, err := store.NearestNeighbors(ctx, []float32{1, 0}, 1)
			require.NoError(t, err)
			assert.Equal(t, []string{"SELECT 1"}, got)
		})
	}
}

func TestMemoryStore_KeepsFirstEmbedding(t *testing.T) {
	ctx := context.Background()

	store, err := NewMemoryStore(Options{Dimension: 2})
	require.NoError(t, err)

	_, err = store.UpsertIfAbsent(ctx, "SELECT 1", []float32{1, 0})
	require.NoError(t, err)

	_, err = store.UpsertIfAbsent(ctx, "SELECT 1", []float32{0, 1})
	require.NoError(t, err)

	q, ok := store.Get("SELECT 1")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0}, q.Embedding)
	assert.False(t, q.CreatedAt.IsZero())

	_, ok = store.Get("SELECT 2")
	assert.False(t, ok)
}

func TestUpsertIfAbsent_Concurrent(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t, Options{Dimension: 2}) {
		t.Run(name, func(t *testing.T) {
			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				inserted int
			)

			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()

					res, err := store.UpsertIfAbsent(ctx, "SELECT now()", []float32{1, 1})
					assert.NoError(t, err)

					if res == Inserted {
						mu.Lock()
						inserted++
						mu.Unlock()
					}
				}()
			}

			wg.Wait()

			assert.Equal(t, 1, inserted)
			count, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestUpsertIfAbsent_Validation(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t, Options{Dimension: 2}) {
		t.Run(name, func(t *testing.T) {
			_, err := store.UpsertIfAbsent(ctx, "   ", []float32{1, 0})
			assert.ErrorIs(t, err, apperrors.ErrValidation)

			_, err = store.UpsertIfAbsent(ctx, "SELECT 1", []float32{1, 0, 0})
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestNearestNeighbors(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t, Options{Dimension: 2}) {
		t.Run(name, func(t *testing.T) {
			got, err := store.NearestNeighbors(ctx, []float32{1, 0}, 3)
			require.NoError(t, err)
			assert.Empty(t, got)

			seed := map[string][]float32{
				"SELECT name FROM customers": {1, 0},
				"SELECT id FROM orders":      {0, 1},
				"DELETE FROM sessions":       {-1, -1},
			}
			for text, emb := range seed {
				_, err := store.UpsertIfAbsent(ctx, text, emb)
				require.NoError(t, err)
			}

			got, err = store.NearestNeighbors(ctx, []float32{0.9, 0.1}, 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"SELECT name FROM customers", "SELECT id FROM orders"}, got)

			got, err = store.NearestNeighbors(ctx, []float32{0.9, 0.1}, 10)
			require.NoError(t, err)
			assert.Len(t, got, 3)

			_, err = store.NearestNeighbors(ctx, []float32{0.9, 0.1}, 0)
			assert.ErrorIs(t, err, apperrors.ErrValidation)

			_, err = store.NearestNeighbors(ctx, []float32{1}, 1)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestNearestNeighbors_Cosine(t *testing.T) {
	ctx := context.Background()

	store, err := NewMemoryStore(Options{Dimension: 2, Metric: MetricCosine})
	require.NoError(t, err)

	// same direction as the query but far away under l2
	_, err = store.UpsertIfAbsent(ctx, "far but aligned", []float32{10, 0})
	require.NoError(t, err)
	_, err = store.UpsertIfAbsent(ctx, "near but skewed", []float32{0.5, 0.5})
	require.NoError(t, err)

	got, err := store.NearestNeighbors(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"far but aligned"}, got)
}

func TestBoltStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "queries.db")

	store, err := NewBoltStore(path, Options{Dimension: 2})
	require.NoError(t, err)

	_, err = store.UpsertIfAbsent(ctx, "SELECT 1", []float32{1, 0})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(path, Options{Dimension: 2})
	require.NoError(t, err)
	defer reopened.Close() //nolint:errcheck

	res, err := reopened.UpsertIfAbsent(ctx, "SELECT 1", []float32{1, 0})
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, res)

	got, err := reopened.NearestNeighbors(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1"}, got)
}

func TestCosineDistance(t *testing.T) {
	x := search.Float32s{1, 0}

	assert.InDelta(t, 0, cosineDistance(x, search.Float32s{3, 0}, x.Magnitude(), 3), 1e-4)
	assert.InDelta(t, 1, cosineDistance(x, search.Float32s{0, 2}, x.Magnitude(), 2), 1e-4)
	assert.InDelta(t, 2, cosineDistance(x, search.Float32s{-1, 0}, x.Magnitude(), 1), 1e-4)

	// zero vectors sort last
	assert.Equal(t, float32(2), cosineDistance(x, search.Float32s{0, 0}, x.Magnitude(), 0))
	assert.Equal(t, float32(2), cosineDistance(search.Float32s{0, 0}, x, 0, x.Magnitude()))
}

func TestBoltStore_ReopenWithNewDimension(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "queries.db")

	store, err := NewBoltStore(path, Options{Dimension: 3})
	require.NoError(t, err)

	_, err = store.UpsertIfAbsent(ctx, "SELECT 1", []float32{1, 0, 0})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(path, Options{Dimension: 2})
	require.NoError(t, err)
	defer reopened.Close() //nolint:errcheck

	got, err := reopened.NearestNeighbors(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = reopened.UpsertIfAbsent(ctx, "SELECT 2", []float32{0, 1})
	require.NoError(t, err)

	got, err = reopened.NearestNeighbors(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 2"}, got)
}

func TestNearest_SkipsMismatchedEntries(t *testing.T) {
	entries := []entry{
		newEntry(1, "three dims", []float32{1, 0, 0}),
		newEntry(2, "two dims", []float32{1, 0}),
	}

	assert.NotPanics(t, func() {
		got := nearest(entries, []float32{1, 0}, 5, euclideanDistance)
		assert.Equal(t, []string{"two dims"}, got)
	})
}

func TestUnknownMetric(t *testing.T) {
	_, err := NewMemoryStore(Options{Metric: "manhattan"})
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestNearestNeighborsQuery_OrdersByDistanceOnly(t *testing.T) {
	for _, op := range []string{"<->", "<=>"} {
		query := strings.Join(strings.Fields(fmt.Sprintf(nearestNeighborsQuery, op)), " ")
		assert.Contains(t, query, "ORDER BY embedding "+op+" $1 LIMIT $2")
	}
}

func TestPostgresStore(t *testing.T) {
	// load .env from project root, if present
	_ = godotenv.Load("../../.env") //nolint:errcheck

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	store, err := ConnectPostgres(ctx, dsn, Options{Dimension: 3})
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	require.NoError(t, store.Initialize(ctx))

	prefix := fmt.Sprintf("/* %s */ ", t.Name())
	t.Cleanup(func() {
		store.pool.Exec(context.Background(), "DELETE FROM query_embeddings WHERE query_text LIKE $1", prefix+"%") //nolint:errcheck
	})

	res, err := store.UpsertIfAbsent(ctx, prefix+"SELECT 1", []float32{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, Inserted, res)

	res, err = store.UpsertIfAbsent(ctx, prefix+"SELECT 1", []float32{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, res)

	_, err = store.UpsertIfAbsent(ctx, prefix+"SELECT 2", []float32{0, 1, 0})
	require.NoError(t, err)

	got, err := store.NearestNeighbors(ctx, []float32{0, 0.9, 0.1}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, prefix+"SELECT 2", got[0])

	require.NoError(t, store.Ping(ctx))
}
