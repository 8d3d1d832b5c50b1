package ingest

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"codeberg.org/pgsuggest/server/internal/history"
	"codeberg.org/pgsuggest/server/internal/llm"
	"codeberg.org/pgsuggest/server/internal/logger"
	"codeberg.org/pgsuggest/server/internal/metrics"
	"codeberg.org/pgsuggest/server/internal/storage"
)

const (
	defaultWorkers      = 4
	defaultEmbedTimeout = 10 * time.Second
)

type Config struct {
	Workers      int           // distinct queries embedded concurrently; 1 is sequential
	EmbedTimeout time.Duration // bounds each embedding call
}

// embeds historical queries and stores them idempotently
type Pipeline struct {
	embedder     llm.Embedder
	store        storage.VectorStore
	workers      int
	embedTimeout time.Duration
}

func NewPipeline(embedder llm.Embedder, store storage.VectorStore, cfg Config) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = defaultWorkers
	}

	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = defaultEmbedTimeout
	}

	return &Pipeline{
		embedder:     embedder,
		store:        store,
		workers:      cfg.Workers,
		embedTimeout: cfg.EmbedTimeout,
	}
}

// reads every query from src and runs them through the pipeline
func (p *Pipeline) RunSource(ctx context.Context, src history.Source, progress ProgressFunc) (*Report, error) {
	queries, err := src.Queries(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("loaded query history", "source", src.Name(), "count", len(queries))

	return p.Run(ctx, queries, progress)
}

// dedups queries, then embeds and stores each distinct one. a failure for
// one query is recorded in the report and never stops the others. on
// cancellation the partial report is returned with the context error.
func (p *Pipeline) Run(ctx context.Context, queries []string, progress ProgressFunc) (*Report, error) {
	distinct, blank := Dedup(queries)

	report := &Report{
		Received: len(queries),
		Blank:    blank,
		Distinct: len(distinct),
	}

	var (
		mu   sync.Mutex
		done int
	)

	record := func(apply func()) {
		mu.Lock()
		defer mu.Unlock()

		apply()
		done++

		if progress != nil {
			progress(done, len(distinct))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, query := range distinct {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			stage, result, err := p.ingestOne(gctx, query)

			outcome := "inserted"
			switch {
			case err != nil && stage == StageEmbed:
				outcome = "embed_failed"
			case err != nil:
				outcome = "store_failed"
			case result == storage.AlreadyPresent:
				outcome = "already_present"
			}

			record(func() {
				switch outcome {
				case "embed_failed":
					report.EmbedFailed++
				case "store_failed":
					report.StoreFailed++
				case "already_present":
					report.AlreadyPresent++
				default:
					report.Inserted++
				}

				if err != nil {
					report.Failures = append(report.Failures, Failure{Query: query, Stage: stage, Err: err})
				}
			})

			metrics.IngestedRecordsTotal.WithLabelValues(outcome).Inc()

			if err != nil {
				logger.Warn("skipping query", "stage", stage, "error", err)
			}

			// per-query failures are reported, never returned
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors

	if err := ctx.Err(); err != nil {
		return report, err
	}

	logger.Info("ingestion finished",
		"received", report.Received,
		"distinct", report.Distinct,
		"inserted", report.Inserted,
		"already_present", report.AlreadyPresent,
		"failed", report.Failed(),
	)

	return report, nil
}

func (p *Pipeline) ingestOne(ctx context.Context, query string) (string, storage.UpsertResult, error) {
	embedCtx, cancel := context.WithTimeout(ctx, p.embedTimeout)
	defer cancel()

	embedding, err := p.embedder.GenerateEmbedding(embedCtx, query)
	if err != nil {
		return StageEmbed, storage.Inserted, err
	}

	result, err := p.store.UpsertIfAbsent(ctx, query, embedding)
	if err != nil {
		return StageStore, storage.Inserted, err
	}

	return "", result, nil
}

// collapses queries to distinct non-blank strings in first-seen order and
// returns how many blank entries were dropped
func Dedup(queries []string) ([]string, int) {
	seen := make(map[string]struct{}, len(queries))
	distinct := make([]string, 0, len(queries))
	blank := 0

	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			blank++
			continue
		}

		if _, ok := seen[q]; ok {
			continue
		}

		seen[q] = struct{}{}
		distinct = append(distinct, q)
	}

	return distinct, blank
}
