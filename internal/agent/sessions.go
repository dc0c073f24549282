package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Session describes one tmux session on the agent host.
type Session struct {
	Name     string   `json:"name"`
	Windows  int      `json:"windows"`
	Attached bool     `json:"attached"`
	Created  int64    `json:"created,omitempty"`
	Activity int64    `json:"activity,omitempty"`
	Preview  []string `json:"preview,omitempty"`

	Insights *SessionInsights `json:"insights,omitempty"`
}

// SessionInsights holds the agent's usage analytics for a session. Producing
// it is expensive on the agent side, which is why requesting insights uses
// the extended timeout.
type SessionInsights struct {
	Summary      string  `json:"summary,omitempty"`
	TokensUsed   int64   `json:"tokensUsed,omitempty"`
	CostUSD      float64 `json:"costUsd,omitempty"`
	LastActivity int64   `json:"lastActivity,omitempty"`
}

// SessionsOptions selects the optional payload of a session listing.
type SessionsOptions struct {
	// Preview requests the trailing pane content for each session.
	Preview bool
	// Lines bounds the preview length (agent default when zero).
	Lines int
	// Insights requests usage analytics; the call then uses ExtendedTimeout.
	Insights bool
}

type sessionListResponse struct {
	Sessions []Session `json:"sessions"`
}

// ListSessions fetches the session list.
func (c *Client) ListSessions(ctx context.Context, opts SessionsOptions) ([]Session, error) {
	query := url.Values{}
	if opts.Preview {
		query.Set("preview", "1")
	}
	if opts.Lines > 0 {
		query.Set("lines", strconv.Itoa(opts.Lines))
	}

	timeout := DefaultTimeout
	if opts.Insights {
		query.Set("insights", "1")
		timeout = ExtendedTimeout
	}

	path := "/sessions"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp sessionListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, timeout); err != nil {
		return nil, err
	}

	return resp.Sessions, nil
}

// ResizeSession commits a negotiated grid to the session. This is the output
// side of the dimension-negotiation handshake: it must only be called with a
// confirmed cols/rows pair.
func (c *Client) ResizeSession(ctx context.Context, name string, cols, rows int) error {
	body := map[string]int{"cols": cols, "rows": rows}
	path := fmt.Sprintf("/sessions/%s/resize", url.PathEscape(name))

	return c.do(ctx, http.MethodPost, path, body, nil, DefaultTimeout)
}

// SendInput forwards keystrokes to the session.
func (c *Client) SendInput(ctx context.Context, name, data string) error {
	body := map[string]string{"data": data}
	path := fmt.Sprintf("/sessions/%s/input", url.PathEscape(name))

	return c.do(ctx, http.MethodPost, path, body, nil, DefaultTimeout)
}

// StreamSession opens the raw output stream for a session. The returned
// reader stays open until the context is canceled or the agent closes the
// connection; it is not subject to the per-call timeout.
func (c *Client) StreamSession(ctx context.Context, name string) (io.ReadCloser, error) {
	path := fmt.Sprintf("/sessions/%s/stream", url.PathEscape(name))

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open session stream: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, unexpectedStatus("stream session", resp.StatusCode, resp.Body)
	}

	return resp.Body, nil
}
