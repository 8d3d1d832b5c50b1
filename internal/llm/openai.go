package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "codeberg.org/pgsuggest/server/internal/errors"
	"golang.org/x/time/rate"
)

const (
	openaiBaseURL      = "https://api.openai.com"
	defaultOpenAIModel = "text-embedding-3-small"
)

// rate limiter for OpenAI API calls (50 requests/second with burst capacity of 10)
var openaiRateLimiter = rate.NewLimiter(50, 10)

type embeddingRequest struct {
	Input    []string `json:"input"`
	Model    string   `json:"model"`
	Encoding string   `json:"encoding_format"`
}

type embeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type OpenAIConfig struct {
	APIKey    string
	Model     string // e.g., "text-embedding-3-small"
	Dimension int    // expected vector length; 0 skips the check
	BaseURL   string // overridable for tests and compatible gateways
}

var _ BatchEmbedder = (*OpenAIEmbedder)(nil)

type OpenAIEmbedder struct {
	config     OpenAIConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewOpenAIEmbedder(config OpenAIConfig) *OpenAIEmbedder {
	if config.Model == "" {
		config.Model = defaultOpenAIModel
	}

	if config.BaseURL == "" {
		config.BaseURL = openaiBaseURL
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &OpenAIEmbedder{
		config:     config,
		httpClient: providerHTTPClient, // use shared client with proper timeouts and connection pooling
		limiter:    openaiRateLimiter,
	}
}

func (e *OpenAIEmbedder) Model() string {
	return e.config.Model
}

func (e *OpenAIEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return embeddings[0], nil
}

func (e *OpenAIEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) (embeddings [][]float32, err error) {
	const op = "openai.embeddings"

	if len(texts) == 0 {
		return nil, apperrors.Validation(op, "no texts provided")
	}

	if e.config.APIKey == "" {
		return nil, apperrors.Configuration(op, fmt.Errorf("OpenAI API key not configured"))
	}

	started := time.Now()
	defer func() { observe(ProviderOpenAI, "embedding", started, err) }()

	inputs := make([]string, len(texts))
	for i, text := range texts {
		inputs[i] = prepareInput(text)
	}

	reqBody := embeddingRequest{
		Input:    inputs,
		Model:    e.config.Model,
		Encoding: "float",
	}

	headers := map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", e.config.APIKey),
	}

	var embResp embeddingResponse
	if err := postJSON(ctx, e.httpClient, e.limiter, e.config.BaseURL+"/v1/embeddings", headers, reqBody, &embResp); err != nil {
		return nil, apperrors.Provider(op, err)
	}

	if len(embResp.Data) != len(texts) {
		return nil, apperrors.Provider(op, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embResp.Data)))
	}

	embeddings = make([][]float32, len(embResp.Data))
	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(embeddings) {
			return nil, apperrors.Provider(op, fmt.Errorf("embedding index %d out of range", data.Index))
		}

		if e.config.Dimension > 0 && len(data.Embedding) != e.config.Dimension {
			return nil, apperrors.Provider(op, fmt.Errorf("embedding has %d dimensions, expected %d", len(data.Embedding), e.config.Dimension))
		}

		embeddings[data.Index] = data.Embedding
	}

	for i, emb := range embeddings {
		if emb == nil {
			return nil, apperrors.Provider(op, fmt.Errorf("missing embedding for input %d", i))
		}
	}

	return embeddings, nil
}
