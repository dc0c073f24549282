package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// ProbeStatus classifies the outcome of a liveness probe.
type ProbeStatus string

// Probe outcome classifications. The set is closed: every branch of a probe
// maps to exactly one of these so callers can render a status without
// error handling.
const (
	ProbeOK              ProbeStatus = "ok"
	ProbeUnauthorized    ProbeStatus = "unauthorized"
	ProbeNotFound        ProbeStatus = "notFound"
	ProbeInvalidResponse ProbeStatus = "invalidResponse"
	ProbeUnreachable     ProbeStatus = "unreachable"
	ProbeError           ProbeStatus = "error"
)

// ProbeOutcome is the result of a single health or ping probe. Probes never
// return a Go error and are never retried automatically; the caller decides.
type ProbeOutcome struct {
	Status     ProbeStatus
	StatusCode int    // set for ProbeError
	Message    string // transport or server message, when available

	Health *HealthPayload // set when Status is ProbeOK for a health probe
	Ping   *PingPayload   // set when Status is ProbeOK for a ping probe
}

// HealthPayload is the agent's authoritative liveness response.
type HealthPayload struct {
	OK          bool   `json:"ok"`
	Host        string `json:"host"`
	TmuxVersion string `json:"tmuxVersion,omitempty"`
}

// PingPayload is the agent's secondary liveness response.
type PingPayload struct {
	OK  bool               `json:"ok"`
	TS  float64            `json:"ts"`
	Lag map[string]float64 `json:"lag,omitempty"`
}

// ProbeHealth probes GET /health. The payload must carry ok==true and a
// non-empty host string; a response that parses as JSON but fails that check
// is invalidResponse, never ok.
func (c *Client) ProbeHealth(ctx context.Context) ProbeOutcome {
	outcome, body := c.probe(ctx, "/health")
	if outcome.Status != ProbeOK {
		return outcome
	}

	var payload HealthPayload
	if err := json.Unmarshal(body, &payload); err != nil || !payload.OK || payload.Host == "" {
		return ProbeOutcome{Status: ProbeInvalidResponse}
	}

	return ProbeOutcome{Status: ProbeOK, Health: &payload}
}

// ProbePing probes GET /ping with the same validation discipline against the
// ok flag and a numeric ts field.
func (c *Client) ProbePing(ctx context.Context) ProbeOutcome {
	outcome, body := c.probe(ctx, "/ping")
	if outcome.Status != ProbeOK {
		return outcome
	}

	var payload PingPayload
	if err := json.Unmarshal(body, &payload); err != nil || !payload.OK || payload.TS <= 0 {
		return ProbeOutcome{Status: ProbeInvalidResponse}
	}

	return ProbeOutcome{Status: ProbeOK, Ping: &payload}
}

// probe performs the shared transport and status-code classification. Known
// status codes are classified before any JSON parsing; a throw during the
// network call itself (DNS failure, refused connection, the timeout firing)
// maps to unreachable.
func (c *Client) probe(ctx context.Context, path string) (ProbeOutcome, []byte) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return ProbeOutcome{Status: ProbeUnreachable, Message: err.Error()}, nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ProbeOutcome{Status: ProbeUnreachable, Message: err.Error()}, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ProbeOutcome{Status: ProbeUnauthorized}, nil
	case resp.StatusCode == http.StatusNotFound:
		return ProbeOutcome{Status: ProbeNotFound}, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(resp.Body)
		return ProbeOutcome{
			Status:     ProbeError,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ProbeOutcome{Status: ProbeUnreachable, Message: err.Error()}, nil
	}

	return ProbeOutcome{Status: ProbeOK}, body
}

// ProbeAddress is a convenience for speculative discovery scans: it probes
// an arbitrary base URL without constructing a long-lived client.
func ProbeAddress(ctx context.Context, baseURL, token string, timeout time.Duration) ProbeOutcome {
	c := New(baseURL, token)
	if timeout > 0 {
		ctx2, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		ctx = ctx2
	}

	return c.ProbeHealth(ctx)
}
