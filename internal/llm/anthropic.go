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
	anthropicBaseURL      = "https://api.anthropic.com"
	anthropicVersion      = "2023-06-01"
	defaultAnthropicModel = "claude-3-haiku-20240307"
	defaultMaxTokens      = 50
)

// rate limiter for Anthropic API calls (50 requests/second with burst capacity of 10)
var anthropicRateLimiter = rate.NewLimiter(50, 10)

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

type messagesResponse struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Role    string    `json:"role"`
	Content []content `json:"content"`
	Model   string    `json:"model"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicConfig struct {
	APIKey    string
	Model     string // e.g., "claude-3-haiku-20240307"
	MaxTokens int    // used when a request leaves MaxTokens unset
	BaseURL   string
}

type AnthropicGenerator struct {
	config     AnthropicConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewAnthropicGenerator(config AnthropicConfig) *AnthropicGenerator {
	if config.Model == "" {
		config.Model = defaultAnthropicModel
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.BaseURL == "" {
		config.BaseURL = anthropicBaseURL
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &AnthropicGenerator{
		config:     config,
		httpClient: providerHTTPClient,
		limiter:    anthropicRateLimiter,
	}
}

func (g *AnthropicGenerator) Model() string {
	return g.config.Model
}

func (g *AnthropicGenerator) GenerateText(ctx context.Context, req TextGenerationRequest) (resp *TextGenerationResponse, err error) {
	const op = "anthropic.messages"

	if g.config.APIKey == "" {
		return nil, apperrors.Configuration(op, fmt.Errorf("Anthropic API key not configured"))
	}

	started := time.Now()
	defer func() { observe(ProviderAnthropic, "generation", started, err) }()

	// determine max tokens (use request value or fall back to config)
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.config.MaxTokens
	}

	reqBody := messagesRequest{
		Model:       g.config.Model,
		MaxTokens:   maxTokens,
		System:      req.SystemPrompt,
		Temperature: req.Temperature,
		Messages:    req.Messages,
	}

	headers := map[string]string{
		"x-api-key":         g.config.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var apiResp messagesResponse
	if err := postJSON(ctx, g.httpClient, g.limiter, g.config.BaseURL+"/v1/messages", headers, reqBody, &apiResp); err != nil {
		return nil, apperrors.Provider(op, err)
	}

	// a response with no text blocks is an empty suggestion, not a failure
	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &TextGenerationResponse{
		Text: strings.TrimSpace(text.String()),
		Usage: Usage{
			InputTokens:  apiResp.Usage.InputTokens,
			OutputTokens: apiResp.Usage.OutputTokens,
		},
	}, nil
}
