// Package agent provides the HTTP client for a single remote agent host.
//
// An agent exposes tmux sessions, Docker containers, and listening ports
// over a small authenticated HTTP API. The client handles:
//   - Bearer authentication (header omitted entirely when no token is set)
//   - Per-call timeouts via context deadlines
//   - Non-throwing health/ping probes with a closed outcome type
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/moor-dev/moor/internal/buildinfo"
)

const (
	// DefaultTimeout bounds ordinary agent calls.
	DefaultTimeout = 6 * time.Second
	// ExtendedTimeout bounds long-running calls such as session insights.
	ExtendedTimeout = 30 * time.Second
	// DefaultPort is the port agents listen on by default.
	DefaultPort = 8022
)

// Client talks to one agent host.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the given agent base URL. The token may be empty
// for agents running without authentication.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// newRequest builds an authenticated request. The Authorization header is
// set only when a token is configured; an empty bearer is never sent.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader = http.NoBody

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}

		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "moor/"+buildinfo.Version)

	return req, nil
}

// do executes a request with the given timeout and decodes the JSON response
// into out (which may be nil for calls without a useful body). Any non-2xx
// response is a terminal failure for the call: the body text is carried in
// the returned error verbatim. The client never retries.
func (c *Client) do(ctx context.Context, method, path string, body, out any, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return unexpectedStatus(method+" "+path, resp.StatusCode, resp.Body)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}

	return nil
}

// unexpectedStatus creates an error from a non-2xx response, passing the
// server-provided body through verbatim when present.
func unexpectedStatus(operation string, statusCode int, body io.Reader) error {
	respBody, readErr := io.ReadAll(body)
	if readErr != nil {
		return fmt.Errorf("%s failed with status %d (failed to read body: %v)", operation, statusCode, readErr)
	}

	msg := strings.TrimSpace(string(respBody))
	if msg == "" {
		return fmt.Errorf("%s failed with status %d", operation, statusCode)
	}

	return fmt.Errorf("%s failed with status %d: %s", operation, statusCode, msg)
}
