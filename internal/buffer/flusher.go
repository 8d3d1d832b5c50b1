package buffer

import (
	"context"
	"sync"
	"time"

	apperrors "codeberg.org/pgsuggest/server/internal/errors"
	"codeberg.org/pgsuggest/server/internal/ingest"
	"codeberg.org/pgsuggest/server/internal/logger"
)

// handles periodic flushing of buffered history into the vector store
type Flusher struct {
	buffer   HistoryBuffer
	ingester Ingester
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// creates a new flusher that periodically ingests buffered history
func NewFlusher(buffer HistoryBuffer, ingester Ingester, interval time.Duration) *Flusher {
	return &Flusher{
		buffer:   buffer,
		ingester: ingester,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// begins the background flush loop
func (f *Flusher) Start() {
	f.wg.Add(1)
	go f.run()
	logger.Info("history flusher started", "interval", f.interval.String())
}

// gracefully stops the flusher and flushes any remaining data
func (f *Flusher) Stop() {
	f.stopOnce.Do(func() { close(f.stopCh) })
	f.wg.Wait()
	logger.Info("history flusher stopped")
}

func (f *Flusher) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.flush()
		case <-f.stopCh:
			// final flush before stopping
			logger.Info("flushing remaining history before shutdown")
			f.flush()
			return
		}
	}
}

func (f *Flusher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := f.Flush(ctx); err != nil {
		logger.ErrorErr(err, "failed to flush history buffer")
	}
}

// drains the buffer once and returns how many queries reached the store.
// queries that failed only because the store was unavailable are re-queued;
// embedding failures are dropped.
func (f *Flusher) Flush(ctx context.Context) (int, error) {
	stored := 0

	for {
		queries, err := f.buffer.Pop(ctx, flushBatchSize)
		if err != nil {
			return stored, err
		}

		if len(queries) == 0 {
			return stored, nil
		}

		logger.Debug("flushing buffered history", "count", len(queries))

		report, err := f.ingester.Run(ctx, queries, nil)
		if report != nil {
			stored += report.Succeeded()
		}

		retry := retryable(report)
		if len(retry) > 0 {
			if err := f.buffer.Add(ctx, retry...); err != nil {
				logger.ErrorErr(err, "failed to re-queue history", "count", len(retry))
			}

			// the store is down; try again next tick instead of spinning
			return stored, nil
		}

		if err != nil {
			// canceled mid-batch; re-ingesting already stored queries is a no-op
			if requeueErr := f.buffer.Add(context.WithoutCancel(ctx), queries...); requeueErr != nil {
				logger.ErrorErr(requeueErr, "failed to re-queue history")
			}

			return stored, err
		}

		if len(queries) < flushBatchSize {
			return stored, nil
		}
	}
}

func retryable(report *ingest.Report) []string {
	if report == nil {
		return nil
	}

	var retry []string
	for _, failure := range report.Failures {
		if apperrors.KindOf(failure.Err) == apperrors.KindStoreUnavailable {
			retry = append(retry, failure.Query)
		}
	}

	return retry
}
