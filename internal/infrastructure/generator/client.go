package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"PortfolioDigest/internal/config"
	"PortfolioDigest/internal/ports"
)

// Client triggers remote digest generation over HTTP. The remote service
// answers as soon as the request is accepted; generation itself finishes
// later, so callers re-read the bucket after a settle interval.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Generator = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.GeneratorConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Trigger asks the generation service to produce a fresh digest.
func (c *Client) Trigger(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("generator client is nil")
	}
	if c.endpoint == "" {
		return fmt.Errorf("generator client misconfigured")
	}

	body, err := json.Marshal(map[string]string{"action": "generate_digest"})
	if err != nil {
		return fmt.Errorf("marshal trigger payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trigger generation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("generator error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	return nil
}
