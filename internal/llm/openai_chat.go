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

const defaultOpenAIChatModel = "gpt-4o-mini"

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type OpenAIChatConfig struct {
	APIKey    string
	Model     string // e.g., "gpt-4o-mini"
	MaxTokens int    // used when a request leaves MaxTokens unset
	BaseURL   string
}

type OpenAIGenerator struct {
	config     OpenAIChatConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewOpenAIGenerator(config OpenAIChatConfig) *OpenAIGenerator {
	if config.Model == "" {
		config.Model = defaultOpenAIChatModel
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.BaseURL == "" {
		config.BaseURL = openaiBaseURL
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &OpenAIGenerator{
		config:     config,
		httpClient: providerHTTPClient,
		limiter:    openaiRateLimiter,
	}
}

func (g *OpenAIGenerator) Model() string {
	return g.config.Model
}

func (g *OpenAIGenerator) GenerateText(ctx context.Context, req TextGenerationRequest) (resp *TextGenerationResponse, err error) {
	const op = "openai.chat"

	if g.config.APIKey == "" {
		return nil, apperrors.Configuration(op, fmt.Errorf("OpenAI API key not configured"))
	}

	started := time.Now()
	defer func() { observe(ProviderOpenAI, "generation", started, err) }()

	// system prompt travels as the first message in the chat format
	messages := make([]Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: req.SystemPrompt})
	}

	messages = append(messages, req.Messages...)

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.config.MaxTokens
	}

	reqBody := chatRequest{
		Model:       g.config.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}

	headers := map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", g.config.APIKey),
	}

	var apiResp chatResponse
	if err := postJSON(ctx, g.httpClient, g.limiter, g.config.BaseURL+"/v1/chat/completions", headers, reqBody, &apiResp); err != nil {
		return nil, apperrors.Provider(op, err)
	}

	if len(apiResp.Choices) == 0 {
		return nil, apperrors.Provider(op, fmt.Errorf("no choices in response"))
	}

	return &TextGenerationResponse{
		Text: strings.TrimSpace(apiResp.Choices[0].Message.Content),
		Usage: Usage{
			InputTokens:  apiResp.Usage.PromptTokens,
			OutputTokens: apiResp.Usage.CompletionTokens,
		},
	}, nil
}
