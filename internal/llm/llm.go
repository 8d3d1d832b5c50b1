package llm

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"codeberg.org/pgsuggest/server/internal/config"
	"codeberg.org/pgsuggest/server/internal/logger"
)

// the embedding and generation providers a process runs with
type Providers struct {
	Embedder  Embedder
	Generator TextGenerator // nil when the generation provider has no credentials
}

// builds providers from application config.
// cache may be nil, in which case embeddings are not cached.
func New(cfg *config.Config, cache *redis.Client) (*Providers, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	var embedder Embedder = NewOpenAIEmbedder(OpenAIConfig{
		APIKey:    cfg.OpenAIKey,
		Model:     cfg.EmbedderModel,
		Dimension: cfg.EmbeddingDimension,
	})

	if cache != nil {
		embedder = NewCachedEmbedder(embedder, cache, cfg.EmbedderModel)
	}

	generator, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}

	return &Providers{
		Embedder:  embedder,
		Generator: generator,
	}, nil
}

// creates the configured text generator, or nil when its API key is missing
func NewGenerator(cfg *config.Config) (TextGenerator, error) {
	apiKey := cfg.GeneratorAPIKey()
	if apiKey == "" {
		logger.Warn("generation provider not configured, completions will fail",
			"provider", cfg.GeneratorProvider,
			"missing", cfg.GeneratorKeyName(),
		)

		return nil, nil
	}

	switch Provider(cfg.GeneratorProvider) {
	case ProviderOpenAI:
		return NewOpenAIGenerator(OpenAIChatConfig{
			APIKey:    apiKey,
			Model:     cfg.GeneratorModel,
			MaxTokens: cfg.MaxTokens,
		}), nil
	case ProviderAnthropic:
		return NewAnthropicGenerator(AnthropicConfig{
			APIKey:    apiKey,
			Model:     cfg.GeneratorModel,
			MaxTokens: cfg.MaxTokens,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", cfg.GeneratorProvider)
	}
}
