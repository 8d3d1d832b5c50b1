package storage

import (
	"context"
	"time"
)

// outcome of an idempotent insert
type UpsertResult int

const (
	Inserted UpsertResult = iota
	AlreadyPresent
)

func (r UpsertResult) String() string {
	if r == AlreadyPresent {
		return "already_present"
	}

	return "inserted"
}

// persists (text, vector) pairs keyed on text and serves nearest-neighbor lookups
type VectorStore interface {
	// inserts the pair unless text is already stored; never overwrites an embedding
	UpsertIfAbsent(ctx context.Context, text string, embedding []float32) (UpsertResult, error)

	// returns at most k texts ordered nearest first; an empty store yields an empty slice
	NearestNeighbors(ctx context.Context, embedding []float32, k int) ([]string, error)
}

// a VectorStore plus the administrative operations used by the CLI and health checks
type Backend interface {
	VectorStore
	Initialize(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// a stored historical query
type HistoricalQuery struct {
	Text      string
	Embedding []float32
	CreatedAt time.Time
}

// distance metrics supported by every backend
const (
	MetricL2     = "l2"
	MetricCosine = "cosine"
)

type Options struct {
	Dimension int
	Metric    string
}
