// Package config handles Moor configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Environment variables (MOOR_*)
//  2. Config file (~/.config/moor/config.yaml)
//  3. Built-in defaults
//
// The host inventory lives next to the config file in hosts.yaml and is
// managed separately; see hosts.go.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moor-dev/moor/internal/paths"
	"github.com/spf13/viper"
)

const (
	// DefaultPollInterval is the default live-state poll interval in seconds.
	DefaultPollInterval = 10
	// DefaultPreviewLines is the default number of pane preview lines.
	DefaultPreviewLines = 8
	// DefaultAgentPort is the port agents listen on unless overridden per host.
	DefaultAgentPort = 8022
)

// Config holds the Moor configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources.
func Load() *Config {
	v := viper.New()

	// Set defaults
	v.SetDefault("poll.interval", DefaultPollInterval)
	v.SetDefault("preview.lines", DefaultPreviewLines)
	v.SetDefault("default_host", "")

	// Config file location
	if root, err := paths.ConfigRoot(); err == nil {
		v.AddConfigPath(root)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Environment variables
	v.SetEnvPrefix("MOOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found, but warn on other errors)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	return &Config{v: v}
}

// Get returns a configuration value.
func (c *Config) Get(key string) interface{} {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns a configuration value as int.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// Set sets a configuration value and persists it.
func (c *Config) Set(key string, value interface{}) error {
	c.v.Set(key, value)

	root, err := paths.ConfigRoot()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(root, 0o700); err != nil {
		return err
	}

	return c.v.WriteConfigAs(filepath.Join(root, "config.yaml"))
}

// All returns all configuration as a map.
func (c *Config) All() map[string]interface{} {
	return c.v.AllSettings()
}

// DefaultHost returns the configured default host name, if any.
func (c *Config) DefaultHost() string {
	return c.GetString("default_host")
}

// PollInterval returns the live-state poll interval in seconds.
func (c *Config) PollInterval() int {
	return c.GetInt("poll.interval")
}

// PreviewLines returns the number of pane preview lines to request.
func (c *Config) PreviewLines() int {
	return c.GetInt("preview.lines")
}
