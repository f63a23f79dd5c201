// Package api is the client for the wallet backend. It issues
// authenticated JSON requests, absorbs the backend's loosely specified
// reply shapes (see normalize.go) and serves a built-in demo dataset
// when no backend address is configured.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// APIError is a reply the backend delivered but rejected (non-2xx).
// Body holds the decoded reply so callers can extract the backend's own
// message from it.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(string(e.Body))
	if len(msg) > 256 {
		msg = msg[:256] + "..."
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, msg)
}

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger

	// MockDelay simulates network latency in demo mode.
	MockDelay time.Duration
}

// NewClient creates a backend client. An empty baseURL puts the client
// in demo mode: every recognized endpoint answers from the fixture
// dataset instead of the network.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		log:       logger,
		MockDelay: 400 * time.Millisecond,
	}
}

// Call performs one backend request and returns the decoded reply bytes.
// A non-empty token is attached as a bearer credential. Failures come in
// two flavors: *APIError when the backend answered with a non-2xx status,
// and a plain wrapped error when the transport itself failed. There is no
// retry, timeout or caching here.
func (c *Client) Call(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	if c.baseURL == "" {
		return c.mockCall(ctx, method, path, body)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("backend call")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// The backend does not always declare JSON even when it sends it, so
	// the declared content type is ignored: valid JSON bytes are used as
	// JSON, anything else passes through verbatim for the caller.
	raw := data
	if !json.Valid(data) {
		raw = bytes.TrimSpace(data)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("backend rejected request")
		return nil, &APIError{Status: resp.StatusCode, Body: raw}
	}
	return raw, nil
}
