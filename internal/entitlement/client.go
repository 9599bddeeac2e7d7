// Package entitlement talks to the licensing and checkout backend over HTTP.
package entitlement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tracker-go/internal/config"
	"tracker-go/internal/tracker"
)

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 512

// ErrNotConfigured is returned by every call when no base URL is set.
var ErrNotConfigured = errors.New("entitlement base_url is not configured")

// Client implements tracker.EntitlementGateway. Every call is a single POST
// with no retries.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Client for baseURL with the given request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientFromConfig creates a Client from the entitlement config section.
func NewClientFromConfig(cfg config.EntitlementConfig) *Client {
	return NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout())
}

func (c *Client) Activate(ctx context.Context, req tracker.ActivateRequest) (*tracker.ActivateResponse, error) {
	var resp tracker.ActivateResponse
	if err := c.post(ctx, "/licenses/activate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Validate(ctx context.Context, req tracker.ValidateRequest) (*tracker.ValidateResponse, error) {
	var resp tracker.ValidateResponse
	if err := c.post(ctx, "/licenses/validate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Deactivate(ctx context.Context, req tracker.DeactivateRequest) (*tracker.DeactivateResponse, error) {
	var resp tracker.DeactivateResponse
	if err := c.post(ctx, "/licenses/deactivate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GenerateCheckoutSession(ctx context.Context) (*tracker.CheckoutSession, error) {
	var resp tracker.CheckoutSession
	if err := c.post(ctx, "/checkout", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends body as JSON to path and decodes a 2xx JSON answer into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return fmt.Errorf("POST %s failed with status %d: %s", path, res.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

var _ tracker.EntitlementGateway = (*Client)(nil)
