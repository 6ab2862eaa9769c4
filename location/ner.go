package location

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RecognizerConfig configures the HTTP entity recognition service.
type RecognizerConfig struct {
	BaseURL string
	APIKey  string
}

// HTTPRecognizer calls a served entity recognition model.
type HTTPRecognizer struct {
	cfg    RecognizerConfig
	client *http.Client
}

// NewHTTPRecognizer creates a recognizer client.
func NewHTTPRecognizer(cfg RecognizerConfig) *HTTPRecognizer {
	return &HTTPRecognizer{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type entitiesRequest struct {
	Text string `json:"text"`
}

type entitiesResponse struct {
	Entities []Entity `json:"entities"`
}

// Entities POSTs the text to /entities and returns the detected entities
// in model order.
func (r *HTTPRecognizer) Entities(ctx context.Context, text string) ([]Entity, error) {
	data, err := json.Marshal(entitiesRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.cfg.BaseURL+"/entities", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entity recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading entity response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("entity recognition error %d: %s", resp.StatusCode, string(body))
	}

	var out entitiesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding entity response: %w", err)
	}
	return out.Entities, nil
}
