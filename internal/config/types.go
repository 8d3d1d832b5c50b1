package config

import "time"

// vector store backends
const (
	StorePostgres = "postgres"
	StoreBolt     = "bolt"
	StoreMemory   = "memory"
)

// generation providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// history sources for the ingester
const (
	SourcePgAdmin = "pgadmin"
	SourceFile    = "file"
)

// Config is built once at process start and passed by pointer to every
// component that needs it. Nothing else reads the environment.
type Config struct {
	// provider credentials (may be empty; the server reports it per request)
	OpenAIKey    string
	AnthropicKey string

	// storage
	DatabaseURL string
	VectorStore string // postgres, bolt or memory
	BoltPath    string
	RedisURL    string

	// server
	Environment          string
	Port                 string
	RateLimit            string // ulule formatted rate, e.g. "120-M"
	CORSOrigins          []string
	HistoryFlushInterval time.Duration

	// embedding
	EmbedderModel      string
	EmbeddingDimension int
	DistanceMetric     string // l2 or cosine

	// generation
	GeneratorProvider string
	GeneratorModel    string
	Temperature       float32
	MaxTokens         int

	// retrieval and prompt bounds
	TopK         int
	RecentWindow int

	// timeouts
	RetrievalTimeout  time.Duration
	GenerationTimeout time.Duration
	EmbeddingTimeout  time.Duration

	// ingestion
	IngestWorkers int
	PgAdminDBPath string
}

// returns the API key for the configured generation provider
func (c *Config) GeneratorAPIKey() string {
	if c.GeneratorProvider == ProviderAnthropic {
		return c.AnthropicKey
	}

	return c.OpenAIKey
}

// returns the environment variable holding the generation provider's key
func (c *Config) GeneratorKeyName() string {
	if c.GeneratorProvider == ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}

	return "OPENAI_API_KEY"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IngestFlags holds ingester CLI options
type IngestFlags struct {
	Source   string
	Path     string
	Workers  int
	Progress bool
}
