// Package auth handles per-host agent token storage and retrieval for Moor.
//
// Tokens are sourced in the following priority order:
//  1. Environment variable: MOOR_TOKEN (applies to every host)
//  2. OS Keyring (macOS Keychain, Windows Credential Manager, Linux Secret Service)
//  3. Config file fallback: <user config dir>/moor/tokens/<host> (for non-interactive environments)
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moor-dev/moor/internal/paths"
	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name used in OS keyring storage.
	keyringService = "moor"
	// EnvVarName is the environment variable that overrides stored tokens.
	EnvVarName = "MOOR_TOKEN"
)

// TokenSource indicates where a token was found.
type TokenSource string

// Token source constants identify where a token was loaded from.
const (
	SourceEnv     TokenSource = "environment variable"
	SourceKeyring TokenSource = "keyring"
	SourceFile    TokenSource = "config file"
	SourceNone    TokenSource = ""
)

// GetToken returns the agent token for a host and its source.
// Returns empty strings if no token is stored.
func GetToken(host string) (source TokenSource, token string) {
	// Priority 1: Environment variable
	if tok := os.Getenv(EnvVarName); tok != "" {
		return SourceEnv, tok
	}

	// Priority 2: OS Keyring, keyed by host name
	if tok, err := keyring.Get(keyringService, host); err == nil && tok != "" {
		return SourceKeyring, tok
	}

	// Priority 3: Config file fallback
	if tok := readTokenFile(host); tok != "" {
		return SourceFile, tok
	}

	return SourceNone, ""
}

// StoreToken stores the agent token for a host in the OS keyring.
// Falls back to file storage if keyring is unavailable.
func StoreToken(host, token string) error {
	err := keyring.Set(keyringService, host, token)
	if err == nil {
		return nil
	}

	return writeTokenFile(host, token)
}

// DeleteToken removes the stored token for a host.
func DeleteToken(host string) error {
	keyringErr := keyring.Delete(keyringService, host)

	fileErr := deleteTokenFile(host)

	// Return error only if both failed and nothing was deleted
	if keyringErr != nil && fileErr != nil {
		return fmt.Errorf("no stored token for host %s", host)
	}

	return nil
}

// tokenFilePath returns the path to the per-host token file.
func tokenFilePath(host string) string {
	path, err := paths.TokenFile(host)
	if err != nil {
		return ""
	}

	return filepath.Clean(path)
}

// readTokenFile reads the token from the file fallback.
func readTokenFile(host string) string {
	path := tokenFilePath(host)
	if path == "" {
		return ""
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path from controlled config directory
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

// writeTokenFile writes the token to the file fallback.
func writeTokenFile(host, token string) error {
	path := tokenFilePath(host)
	if path == "" {
		return fmt.Errorf("could not determine home directory")
	}

	// Create directory with secure permissions
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	// Write file with secure permissions (owner read/write only)
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// deleteTokenFile removes the per-host token file.
func deleteTokenFile(host string) error {
	path := tokenFilePath(host)
	if path == "" {
		return fmt.Errorf("could not determine home directory")
	}

	err := os.Remove(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("token file not found")
	}

	if err != nil {
		return fmt.Errorf("remove token file: %w", err)
	}

	return nil
}
