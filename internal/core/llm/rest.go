package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const restTimeout = 60 * time.Second

// APIError is a non-200 answer from a provider's REST endpoint
type APIError struct {
	Provider string
	Model    string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s error (model: %s, status: %d): %s", e.Provider, e.Model, e.Status, e.Body)
}

// Retryable is true for rate limits and server-side failures
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// restCall is one JSON POST against a provider that go-openai cannot talk to
type restCall struct {
	client   *http.Client
	provider string
	model    string
	url      string
	headers  map[string]string
}

func (r restCall) do(ctx context.Context, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", r.provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Provider: r.provider, Model: r.model, Status: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", r.provider, err)
	}
	return nil
}
