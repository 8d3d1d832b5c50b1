package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"codeberg.org/pgsuggest/server/internal/metrics"
	"golang.org/x/time/rate"
)

// caps how much of an error body ends up in an error message
const maxErrorBodyBytes = 2048

// shared HTTP client for provider API calls
// reuses connection pool and timeout configuration; per-call deadlines come from ctx
var providerHTTPClient = &http.Client{
	Timeout: 60 * time.Second, // total request timeout
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// flattens newlines, which degrade embedding quality for single-statement inputs
func prepareInput(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}

// sends a JSON POST and decodes a 200 response into out.
// the response body is always closed, including on cancellation.
func postJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, url string, headers map[string]string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	// rate limiting
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes)) //nolint:errcheck
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// records a provider call in the metrics registry
func observe(provider Provider, operation string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	metrics.ProviderRequestsTotal.WithLabelValues(string(provider), operation, status).Inc()
	metrics.ProviderRequestDuration.WithLabelValues(string(provider), operation).Observe(time.Since(started).Seconds())
}
