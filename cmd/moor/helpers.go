package main

import (
	"github.com/moor-dev/moor/internal/agent"
	"github.com/moor-dev/moor/internal/auth"
	"github.com/moor-dev/moor/internal/config"
	clierrors "github.com/moor-dev/moor/internal/errors"
)

// resolveHost looks up a host by name, falling back to the configured
// default_host when name is empty. Returns a CLIError suitable for direct
// return from a RunE.
func resolveHost(name string) (config.Host, error) {
	inv, err := config.LoadInventory()
	if err != nil {
		return config.Host{}, clierrors.ConfigFailed("read host inventory", err)
	}

	if name == "" {
		name = config.Load().DefaultHost()
	}

	if name == "" {
		if len(inv.Hosts) == 1 {
			return inv.Hosts[0], nil
		}

		if len(inv.Hosts) == 0 {
			return config.Host{}, clierrors.NoHosts()
		}

		return config.Host{}, clierrors.HostRequired()
	}

	host, ok := inv.Get(name)
	if !ok {
		return config.Host{}, clierrors.HostNotFound(name)
	}

	return host, nil
}

// inventoryHosts returns all configured hosts, wrapping read failures.
func inventoryHosts() ([]config.Host, error) {
	inv, err := config.LoadInventory()
	if err != nil {
		return nil, clierrors.ConfigFailed("read host inventory", err)
	}

	return inv.Hosts, nil
}

// newAgentClient creates an agent client for a host using its stored token.
//
// This consolidates the repeated pattern of:
//
//	host, err := resolveHost(name)
//	_, token := auth.GetToken(host.Name)
//	c := agent.New(host.BaseURL(), token)
func newAgentClient(name string) (config.Host, *agent.Client, error) {
	host, err := resolveHost(name)
	if err != nil {
		return config.Host{}, nil, err
	}

	_, token := auth.GetToken(host.Name)

	return host, agent.New(host.BaseURL(), token), nil
}
