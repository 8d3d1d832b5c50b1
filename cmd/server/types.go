package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/pgsuggest/server/internal/buffer"
	"codeberg.org/pgsuggest/server/internal/completion"
	"codeberg.org/pgsuggest/server/internal/config"
	"codeberg.org/pgsuggest/server/internal/ingest"
	"codeberg.org/pgsuggest/server/internal/llm"
	"codeberg.org/pgsuggest/server/internal/retriever"
	"codeberg.org/pgsuggest/server/internal/storage"
)

// holds all dependencies and state for the API server
type Server struct {
	config   *config.Config
	store    storage.Backend
	redis    *redis.Client // nil when REDIS_URL is unset
	services *Services
	buffer   buffer.HistoryBuffer
	flusher  *buffer.Flusher
	router   *gin.Engine
}

// holds all service clients (providers, retrieval, completion, ingestion)
type Services struct {
	Providers    *llm.Providers
	Ranker       *retriever.Ranker
	Orchestrator *completion.Orchestrator
	Pipeline     *ingest.Pipeline
}
