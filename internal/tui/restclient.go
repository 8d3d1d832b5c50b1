package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// manages HTTP requests to the completion REST API
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// creates a client for endpoint, falling back to PGSUGGEST_API_ENDPOINT
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("PGSUGGEST_API_ENDPOINT")
	}

	if endpoint == "" {
		endpoint = "http://localhost:8000"
	}

	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// requests a suggestion for the partial query
func (c *Client) Complete(ctx context.Context, recent []string, current string) (*completeResponse, error) {
	payload := completeRequest{
		RecentQueries: recent,
		CurrentQuery:  current,
	}

	var result completeResponse
	if err := c.post(ctx, "/api/v1/complete", http.StatusOK, payload, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// hands executed queries to the history endpoint
func (c *Client) RecordHistory(ctx context.Context, queries []string) (int, error) {
	var result historyResponse
	if err := c.post(ctx, "/api/v1/history", http.StatusAccepted, historyRequest{Queries: queries}, &result); err != nil {
		return 0, err
	}

	return result.Accepted, nil
}

// fetches store size and configuration from the stats endpoint
func (c *Client) Stats(ctx context.Context) (*statsResponse, error) {
	var result statsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats", http.StatusOK, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// polls the ping endpoint until the server answers or ctx is done
func (c *Client) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		var pong pingResponse
		err := c.do(ctx, http.MethodGet, "/api/v1/ping", http.StatusOK, nil, &pong)
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("server at %s did not answer: %w", c.endpoint, err)
		case <-ticker.C:
		}
	}
}

func (c *Client) post(ctx context.Context, path string, wantStatus int, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, wantStatus, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, wantStatus int, payload, out any) error {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}

		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// handle error responses
	if resp.StatusCode != wantStatus {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%s: %s", errResp.Error, errResp.Message)
		}

		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// returns a tea.Cmd that requests a suggestion
func (c *Client) CompleteCmd(recent []string, current string) tea.Cmd {
	// copy so later edits to the editor's history do not race the request
	recent = append([]string(nil), recent...)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := c.Complete(ctx, recent, current)
		if err != nil {
			return SuggestionErrorMsg{query: current, err: err}
		}

		return SuggestionMsg{
			query:      current,
			suggestion: resp.Suggestion,
			retrieved:  resp.SimilarQueriesRetrieved,
			model:      resp.Model,
		}
	}
}

// returns a tea.Cmd that records an executed query
func (c *Client) RecordHistoryCmd(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		accepted, err := c.RecordHistory(ctx, []string{query})
		return HistoryRecordedMsg{accepted: accepted, err: err}
	}
}

// returns a tea.Cmd that refreshes the store stats
func (c *Client) StatsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
		defer cancel()

		stats, err := c.Stats(ctx)
		return StatsMsg{stats: stats, err: err}
	}
}

// REST API request/response types

type completeRequest struct {
	RecentQueries []string `json:"recent_queries"`
	CurrentQuery  string   `json:"current_query"`
}

type completeResponse struct {
	Suggestion              string `json:"suggestion"`
	SimilarQueriesRetrieved int    `json:"similar_queries_retrieved"`
	Model                   string `json:"model"`
}

type historyRequest struct {
	Queries []string `json:"queries"`
}

type historyResponse struct {
	Accepted int `json:"accepted"`
}

type statsResponse struct {
	Queries        int    `json:"queries"`
	Store          string `json:"store"`
	Metric         string `json:"metric"`
	Dimension      int    `json:"dimension"`
	EmbedderModel  string `json:"embedder_model"`
	GeneratorModel string `json:"generator_model"`
	GeneratorReady bool   `json:"generator_ready"`
	PendingHistory int    `json:"pending_history"`
}

type pingResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
