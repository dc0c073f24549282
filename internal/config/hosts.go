package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/moor-dev/moor/internal/paths"
	"gopkg.in/yaml.v3"
)

// Host is one entry in the host inventory.
type Host struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port,omitempty"`
	TLS     bool   `yaml:"tls,omitempty"`
}

// BaseURL returns the agent base URL for the host.
func (h Host) BaseURL() string {
	scheme := "http"
	if h.TLS {
		scheme = "https"
	}

	port := h.Port
	if port == 0 {
		port = DefaultAgentPort
	}

	return fmt.Sprintf("%s://%s:%d", scheme, h.Address, port)
}

// Inventory is the set of configured hosts, persisted as hosts.yaml in the
// config directory.
type Inventory struct {
	Hosts []Host `yaml:"hosts"`
}

// LoadInventory reads the host inventory. A missing file yields an empty
// inventory, not an error.
func LoadInventory() (*Inventory, error) {
	path, err := paths.HostsFile()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path from controlled config directory
	if os.IsNotExist(err) {
		return &Inventory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read hosts file: %w", err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parse hosts file: %w", err)
	}

	return &inv, nil
}

// Save writes the inventory back to hosts.yaml, sorted by name so the file
// diffs cleanly under version control.
func (inv *Inventory) Save() error {
	path, err := paths.HostsFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	sort.Slice(inv.Hosts, func(i, j int) bool {
		return inv.Hosts[i].Name < inv.Hosts[j].Name
	})

	data, err := yaml.Marshal(inv)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Get returns the host with the given name.
func (inv *Inventory) Get(name string) (Host, bool) {
	for _, h := range inv.Hosts {
		if h.Name == name {
			return h, true
		}
	}

	return Host{}, false
}

// Add inserts a host, replacing any existing entry with the same name.
func (inv *Inventory) Add(h Host) {
	for i, existing := range inv.Hosts {
		if existing.Name == h.Name {
			inv.Hosts[i] = h
			return
		}
	}

	inv.Hosts = append(inv.Hosts, h)
}

// Remove deletes the named host and reports whether it existed.
func (inv *Inventory) Remove(name string) bool {
	for i, h := range inv.Hosts {
		if h.Name == name {
			inv.Hosts = append(inv.Hosts[:i], inv.Hosts[i+1:]...)
			return true
		}
	}

	return false
}
