package agent

import (
	"context"
	"net/http"
)

// Port describes one listening port on the agent host.
type Port struct {
	Port    int    `json:"port"`
	PID     int    `json:"pid"`
	Process string `json:"process,omitempty"`
	Proto   string `json:"proto,omitempty"`
}

type portListResponse struct {
	Ports []Port `json:"ports"`
}

type killPortsRequest struct {
	PIDs []int `json:"pids"`
}

// ListPorts fetches the listening-port inventory.
func (c *Client) ListPorts(ctx context.Context) ([]Port, error) {
	var resp portListResponse
	if err := c.do(ctx, http.MethodGet, "/ports", nil, &resp, DefaultTimeout); err != nil {
		return nil, err
	}

	return resp.Ports, nil
}

// KillPorts asks the agent to terminate the processes owning the given PIDs.
func (c *Client) KillPorts(ctx context.Context, pids []int) error {
	return c.do(ctx, http.MethodPost, "/ports/kill", killPortsRequest{PIDs: pids}, nil, DefaultTimeout)
}
