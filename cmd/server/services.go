package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"codeberg.org/pgsuggest/server/internal/completion"
	"codeberg.org/pgsuggest/server/internal/config"
	"codeberg.org/pgsuggest/server/internal/ingest"
	"codeberg.org/pgsuggest/server/internal/llm"
	"codeberg.org/pgsuggest/server/internal/retriever"
	"codeberg.org/pgsuggest/server/internal/storage"
)

// creates and configures all service clients
func InitializeServices(cfg *config.Config, store storage.VectorStore, cache *redis.Client) (*Services, error) {
	providers, err := llm.New(cfg, cache)
	if err != nil {
		return nil, fmt.Errorf("failed to create providers: %w", err)
	}

	ranker := retriever.NewRanker(providers.Embedder, store, retriever.Config{
		TopK:    cfg.TopK,
		Timeout: cfg.RetrievalTimeout,
	})

	orchestrator := completion.New(ranker, providers.Generator, completion.Config{
		TopK:              cfg.TopK,
		RecentWindow:      cfg.RecentWindow,
		Temperature:       cfg.Temperature,
		MaxTokens:         cfg.MaxTokens,
		GenerationTimeout: cfg.GenerationTimeout,
		MissingKey:        cfg.GeneratorKeyName(),
	})

	pipeline := ingest.NewPipeline(providers.Embedder, store, ingest.Config{
		Workers:      cfg.IngestWorkers,
		EmbedTimeout: cfg.EmbeddingTimeout,
	})

	return &Services{
		Providers:    providers,
		Ranker:       ranker,
		Orchestrator: orchestrator,
		Pipeline:     pipeline,
	}, nil
}
