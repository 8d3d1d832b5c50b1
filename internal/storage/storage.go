package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/pgsuggest/server/internal/config"
	apperrors "codeberg.org/pgsuggest/server/internal/errors"
)

// opens the configured backend
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	opts := Options{Dimension: cfg.EmbeddingDimension, Metric: cfg.DistanceMetric}

	switch cfg.VectorStore {
	case config.StorePostgres, "":
		store, err := ConnectPostgres(ctx, cfg.DatabaseURL, opts)
		if err != nil {
			return nil, err
		}

		return store, nil
	case config.StoreBolt:
		if dir := filepath.Dir(cfg.BoltPath); dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, apperrors.StoreUnavailable("bolt.open", err)
			}
		}

		store, err := NewBoltStore(cfg.BoltPath, opts)
		if err != nil {
			return nil, err
		}

		return store, nil
	case config.StoreMemory:
		store, err := NewMemoryStore(opts)
		if err != nil {
			return nil, err
		}

		return store, nil
	default:
		return nil, apperrors.Configuration("storage.open", fmt.Errorf("unknown vector store %q", cfg.VectorStore))
	}
}
