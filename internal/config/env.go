package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "codeberg.org/pgsuggest/server/internal/errors"
	"github.com/joho/godotenv"
)

// defaults
const (
	defaultPort                 = "8000"
	defaultEmbedderModel        = "text-embedding-3-small"
	defaultEmbeddingDimension   = 1536
	defaultGeneratorModel       = "gpt-4o-mini"
	defaultAnthropicModel       = "claude-3-haiku-20240307"
	defaultTopK                 = 3
	defaultRecentWindow         = 3
	defaultMaxTokens            = 50
	defaultDistanceMetric       = "l2"
	defaultRetrievalTimeout     = 3 * time.Second
	defaultGenerationTimeout    = 20 * time.Second
	defaultEmbeddingTimeout     = 10 * time.Second
	defaultIngestWorkers        = 4
	defaultPgAdminDBPath        = "./pgadmin-data/pgadmin4.db"
	defaultBoltPath             = "./data/queries.db"
	defaultRateLimit            = "120-M"
	defaultHistoryFlushInterval = 30 * time.Second
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return Load(os.Getenv)
}

// builds a Config from a lookup function; split out so tests don't touch the process env
func Load(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}

		return fallback
	}

	generatorProvider := strings.ToLower(get("GENERATOR_PROVIDER", ProviderOpenAI))

	generatorModel := defaultGeneratorModel
	if generatorProvider == ProviderAnthropic {
		generatorModel = defaultAnthropicModel
	}

	cfg := &Config{
		OpenAIKey:            getenv("OPENAI_API_KEY"),
		AnthropicKey:         getenv("ANTHROPIC_API_KEY"),
		DatabaseURL:          get("DATABASE_URL", buildDatabaseURL(get)),
		VectorStore:          strings.ToLower(get("VECTOR_STORE", StorePostgres)),
		BoltPath:             get("BOLT_PATH", defaultBoltPath),
		RedisURL:             getenv("REDIS_URL"),
		Environment:          get("ENVIRONMENT", "development"),
		Port:                 get("PORT", defaultPort),
		RateLimit:            get("RATE_LIMIT", defaultRateLimit),
		CORSOrigins:          splitList(get("CORS_ALLOWED_ORIGINS", "*")),
		HistoryFlushInterval: parseDuration(getenv("HISTORY_FLUSH_INTERVAL"), defaultHistoryFlushInterval),
		EmbedderModel:        get("EMBEDDER_MODEL", defaultEmbedderModel),
		EmbeddingDimension:   parseInt(getenv("EMBEDDING_DIMENSION"), defaultEmbeddingDimension),
		DistanceMetric:       strings.ToLower(get("DISTANCE_METRIC", defaultDistanceMetric)),
		GeneratorProvider:    generatorProvider,
		GeneratorModel:       get("GENERATOR_MODEL", generatorModel),
		Temperature:          parseFloat32(getenv("GENERATOR_TEMPERATURE"), 0),
		MaxTokens:            parseInt(getenv("GENERATOR_MAX_TOKENS"), defaultMaxTokens),
		TopK:                 parseInt(getenv("RETRIEVAL_TOP_K"), defaultTopK),
		RecentWindow:         parseInt(getenv("RECENT_QUERY_WINDOW"), defaultRecentWindow),
		RetrievalTimeout:     parseDuration(getenv("RETRIEVAL_TIMEOUT"), defaultRetrievalTimeout),
		GenerationTimeout:    parseDuration(getenv("GENERATION_TIMEOUT"), defaultGenerationTimeout),
		EmbeddingTimeout:     parseDuration(getenv("EMBEDDING_TIMEOUT"), defaultEmbeddingTimeout),
		IngestWorkers:        parseInt(getenv("INGEST_WORKERS"), defaultIngestWorkers),
		PgAdminDBPath:        get("PGADMIN_DB_PATH", defaultPgAdminDBPath),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checks value ranges; provider keys are intentionally not required here
func (c *Config) Validate() error {
	const op = "config.Validate"

	switch c.VectorStore {
	case StorePostgres, StoreBolt, StoreMemory:
	default:
		return apperrors.Configuration(op, fmt.Errorf("unsupported VECTOR_STORE %q", c.VectorStore))
	}

	switch c.GeneratorProvider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return apperrors.Configuration(op, fmt.Errorf("unsupported GENERATOR_PROVIDER %q", c.GeneratorProvider))
	}

	switch c.DistanceMetric {
	case "l2", "cosine":
	default:
		return apperrors.Configuration(op, fmt.Errorf("unsupported DISTANCE_METRIC %q", c.DistanceMetric))
	}

	if c.EmbeddingDimension < 1 {
		return apperrors.Configuration(op, fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", c.EmbeddingDimension))
	}

	if c.TopK < 1 {
		return apperrors.Configuration(op, fmt.Errorf("RETRIEVAL_TOP_K must be at least 1, got %d", c.TopK))
	}

	if c.RecentWindow < 0 {
		return apperrors.Configuration(op, fmt.Errorf("RECENT_QUERY_WINDOW must not be negative, got %d", c.RecentWindow))
	}

	if c.MaxTokens < 1 {
		return apperrors.Configuration(op, fmt.Errorf("GENERATOR_MAX_TOKENS must be at least 1, got %d", c.MaxTokens))
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return apperrors.Configuration(op, fmt.Errorf("GENERATOR_TEMPERATURE must be within [0, 2], got %v", c.Temperature))
	}

	if c.IngestWorkers < 1 {
		return apperrors.Configuration(op, fmt.Errorf("INGEST_WORKERS must be at least 1, got %d", c.IngestWorkers))
	}

	return nil
}

// assembles a connection URL from the DB_* variables when DATABASE_URL is unset
func buildDatabaseURL(get func(key, fallback string) string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(get("DB_USER", "postgres"), get("DB_PASSWORD", "postgres")),
		Host:   net.JoinHostPort(get("DB_HOST", "localhost"), get("DB_PORT", "8554")),
		Path:   "/" + get("DB_NAME", "postgres"),
	}

	return u.String()
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	if val, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return val
	}

	return fallback
}

func parseFloat32(raw string, fallback float32) float32 {
	if raw == "" {
		return fallback
	}

	if val, err := strconv.ParseFloat(strings.TrimSpace(raw), 32); err == nil {
		return float32(val)
	}

	return fallback
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	if val, err := time.ParseDuration(strings.TrimSpace(raw)); err == nil && val > 0 {
		return val
	}

	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
