package completion

import (
	"context"
	"time"

	"codeberg.org/pgsuggest/server/internal/llm"
)

// ranks stored queries by similarity to a partial query
type Retriever interface {
	Rank(ctx context.Context, currentQuery string, k int) ([]string, error)
}

// produces completion suggestions from recent and similar queries
type Orchestrator struct {
	retriever Retriever
	generator llm.TextGenerator // nil when the provider has no credentials
	cfg       Config
}

type Config struct {
	TopK              int
	RecentWindow      int
	Temperature       float32
	MaxTokens         int
	GenerationTimeout time.Duration
	MissingKey        string // env var named in the configuration error, e.g. OPENAI_API_KEY
}

// a single completion call's inputs
type Request struct {
	RecentQueries []string
	CurrentQuery  string
}

// the predicted continuation; an empty Text means no confident prediction
type Suggestion struct {
	Text           string
	SimilarQueries []string
	RecentQueries  []string
	Model          string
}
