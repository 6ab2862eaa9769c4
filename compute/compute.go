// Package compute provides the client for the external pipeline compute
// service that performs medical-term parsing and recommendation generation.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Client executes a named pipeline on the compute service. payload is
// marshalled as the JSON request body; the JSON response is decoded into out.
type Client interface {
	Compute(ctx context.Context, pipeline string, payload, out any) error
}

// Config configures the compute service endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	UserID  string
	Timeout time.Duration
}

// HTTPClient is the production Client implementation.
type HTTPClient struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a compute client. Timeout defaults to 120s, generous
// enough for model-backed pipelines that load on first request.
func NewClient(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

const (
	maxRetries        = 4
	baseRetryDelay    = 1 * time.Second
	minRateLimitDelay = 5 * time.Second // minimum delay for 429 errors
)

// retryableStatusCode returns true for HTTP status codes that warrant a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
}

// Compute POSTs the payload to /v1/pipeline/compute/{pipeline} and decodes
// the JSON response into out.
func (c *HTTPClient) Compute(ctx context.Context, pipeline string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", pipeline, err)
	}

	url := c.cfg.BaseURL + "/v1/pipeline/compute/" + pipeline

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1))
			slog.Warn("compute: retrying request",
				"pipeline", pipeline,
				"attempt", attempt,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}
		if c.cfg.UserID != "" {
			req.Header.Set("User-ID", c.cfg.UserID)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("request to %s failed: %w", url, err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response body: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decoding %s response: %w", pipeline, err)
			}
			return nil
		}

		lastErr = fmt.Errorf("compute service %s error %d: %s", pipeline, resp.StatusCode, string(respBody))

		if !retryableStatusCode(resp.StatusCode) {
			return lastErr
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			rateLimitDelay := minRateLimitDelay * time.Duration(1<<attempt)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
					headerDelay := time.Duration(seconds) * time.Second
					if headerDelay > rateLimitDelay {
						rateLimitDelay = headerDelay
					}
				}
			}
			slog.Warn("compute: rate limited, waiting before retry",
				"pipeline", pipeline,
				"attempt", attempt+1,
				"delay", rateLimitDelay,
			)
			select {
			case <-time.After(rateLimitDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
