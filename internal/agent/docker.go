package agent

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Container describes one Docker container on the agent host.
type Container struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Image  string   `json:"image"`
	State  string   `json:"state"`  // running, exited, paused, ...
	Status string   `json:"status"` // human-readable, e.g. "Up 3 hours"
	Ports  []string `json:"ports,omitempty"`
}

// Running reports whether the container is currently running.
func (c Container) Running() bool {
	return c.State == "running"
}

// ContainerAction names a lifecycle action the agent can apply.
type ContainerAction string

// The closed set of container lifecycle actions.
const (
	ActionStart   ContainerAction = "start"
	ActionStop    ContainerAction = "stop"
	ActionRestart ContainerAction = "restart"
	ActionPause   ContainerAction = "pause"
	ActionUnpause ContainerAction = "unpause"
	ActionKill    ContainerAction = "kill"
)

var validActions = map[ContainerAction]bool{
	ActionStart:   true,
	ActionStop:    true,
	ActionRestart: true,
	ActionPause:   true,
	ActionUnpause: true,
	ActionKill:    true,
}

// ValidAction reports whether action is in the supported set.
func ValidAction(action ContainerAction) bool {
	return validActions[action]
}

type containerListResponse struct {
	Containers []Container `json:"containers"`
}

// ListContainers fetches the container inventory.
func (c *Client) ListContainers(ctx context.Context) ([]Container, error) {
	var resp containerListResponse
	if err := c.do(ctx, http.MethodGet, "/docker/containers", nil, &resp, DefaultTimeout); err != nil {
		return nil, err
	}

	return resp.Containers, nil
}

// ApplyContainerAction applies a lifecycle action to a container. Actions
// outside the known set are rejected locally before any network call.
func (c *Client) ApplyContainerAction(ctx context.Context, id string, action ContainerAction) error {
	if !validActions[action] {
		return fmt.Errorf("unknown container action: %s", action)
	}

	path := fmt.Sprintf("/docker/containers/%s/%s", url.PathEscape(id), action)

	return c.do(ctx, http.MethodPost, path, nil, nil, DefaultTimeout)
}
