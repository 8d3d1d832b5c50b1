package buffer

import (
	"context"

	"codeberg.org/pgsuggest/server/internal/ingest"
)

// holds executed queries until the flusher embeds and stores them
type HistoryBuffer interface {
	// queues queries; duplicates already waiting are collapsed
	Add(ctx context.Context, queries ...string) error

	// removes and returns up to n queued queries
	Pop(ctx context.Context, n int) ([]string, error)

	// number of queries waiting
	Len(ctx context.Context) (int, error)

	Close() error
}

// runs a batch of queries through ingestion
type Ingester interface {
	Run(ctx context.Context, queries []string, progress ingest.ProgressFunc) (*ingest.Report, error)
}

// redis key patterns
const (
	// history:pending - set of executed queries waiting to be ingested
	keyPendingHistory = "history:pending"
)

// queries drained per flush pass
const flushBatchSize = 500
