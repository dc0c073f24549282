package agent

import (
	"context"
	"net/http"
)

// HostInfo holds the agent host's metrics snapshot.
type HostInfo struct {
	Hostname      string    `json:"hostname"`
	Platform      string    `json:"platform,omitempty"`
	UptimeSeconds int64     `json:"uptimeSeconds,omitempty"`
	LoadAvg       []float64 `json:"loadAvg,omitempty"`
	MemoryTotal   int64     `json:"memoryTotal,omitempty"`
	MemoryFree    int64     `json:"memoryFree,omitempty"`
	DiskTotal     int64     `json:"diskTotal,omitempty"`
	DiskFree      int64     `json:"diskFree,omitempty"`
	AgentVersion  string    `json:"agentVersion,omitempty"`
}

// GetHostInfo fetches the host metrics snapshot.
func (c *Client) GetHostInfo(ctx context.Context) (*HostInfo, error) {
	var info HostInfo
	if err := c.do(ctx, http.MethodGet, "/host", nil, &info, DefaultTimeout); err != nil {
		return nil, err
	}

	return &info, nil
}
