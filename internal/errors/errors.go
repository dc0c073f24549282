// Package errors provides structured CLI error types for Moor.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// to provide consistent, actionable error output across all commands.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes for CLI errors.
const (
	ExitSuccess = 0  // Successful execution
	ExitGeneral = 1  // General error
	ExitAuth    = 2  // Authentication error
	ExitNetwork = 3  // Network/agent error
	ExitConfig  = 4  // Configuration error
	ExitTimeout = 5  // Operation timeout
	ExitAgent   = 6  // Agent-side failure
	ExitUsage   = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// NotAuthenticated returns an error indicating missing credentials for a host.
func NotAuthenticated(host string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Not authenticated with host: %s", host),
		Hint:    fmt.Sprintf("Run 'moor auth login %s' to store a token", host),
		Code:    ExitAuth,
	}
}

// AuthFailed returns an error for a rejected token.
func AuthFailed(host string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Agent at %s rejected the token", host),
		Hint:    fmt.Sprintf("Run 'moor auth login %s' to update it", host),
		Cause:   cause,
		Code:    ExitAuth,
	}
}

// TokenEmpty returns an error when the entered token is empty.
func TokenEmpty() *CLIError {
	return &CLIError{
		Message: "Token cannot be empty",
		Hint:    "Enter a valid agent token or set MOOR_TOKEN environment variable",
		Code:    ExitAuth,
	}
}

// CannotPrompt returns an error when interactive prompts are unavailable.
func CannotPrompt(envVar string) *CLIError {
	return &CLIError{
		Message: "Cannot prompt in non-interactive mode",
		Hint:    fmt.Sprintf("Set %s environment variable instead", envVar),
		Code:    ExitUsage,
	}
}

// HostNotFound returns an error for an unknown host name.
func HostNotFound(name string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Host not found: %s", name),
		Hint:    "Run 'moor hosts list' to see configured hosts",
		Code:    ExitConfig,
	}
}

// NoHosts returns an error when the inventory is empty.
func NoHosts() *CLIError {
	return &CLIError{
		Message: "No hosts configured",
		Hint:    "Run 'moor hosts add <name> <address>' to add one",
		Code:    ExitConfig,
	}
}

// HostRequired returns an error when a host must be named explicitly.
func HostRequired() *CLIError {
	return &CLIError{
		Message: "Host required",
		Hint:    "Pass a host name, or set a default with 'moor config set default_host <name>'",
		Code:    ExitUsage,
	}
}

// HostUnreachable returns an error when the agent does not answer.
func HostUnreachable(host string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Cannot reach agent on %s", host),
		Hint:    "Check that the host is up and the agent is listening, then run 'moor hosts probe'",
		Cause:   cause,
		Code:    ExitNetwork,
	}
}

// AgentMisbehaving returns an error for a reachable endpoint that does not
// speak the agent protocol.
func AgentMisbehaving(host string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Endpoint on %s is not a moor agent", host),
		Hint:    "Verify the address and port point at the agent, not another service",
		Code:    ExitNetwork,
	}
}

// AgentVersionUnsupported returns an error for an agent older than the CLI supports.
func AgentVersionUnsupported(host, got, want string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Agent on %s is version %s, need >= %s", host, got, want),
		Hint:    "Update the agent on the host and retry",
		Code:    ExitConfig,
	}
}

// SessionNotFound returns an error for an unknown tmux session.
func SessionNotFound(host, name string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Session not found on %s: %s", host, name),
		Hint:    fmt.Sprintf("Run 'moor sessions %s' to list sessions", host),
		Code:    ExitGeneral,
	}
}

// InvalidContainerAction returns an error for an action outside the closed set.
func InvalidContainerAction(action string, supported []string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Invalid container action: %s", action),
		Hint:    fmt.Sprintf("Supported actions: %s", strings.Join(supported, ", ")),
		Code:    ExitUsage,
	}
}

// ContainerActionFailed returns an error for an agent-side docker failure.
func ContainerActionFailed(action, container string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s container %s", action, container),
		Hint:    "Check the container state with 'moor docker <host>'",
		Cause:   cause,
		Code:    ExitAgent,
	}
}

// ConfigFailed returns an error for configuration save failures.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check file permissions for your Moor config directory or run 'moor doctor'",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// AttachFailed returns an error when attaching to a session stream fails,
// detecting common failure patterns for a specific hint.
func AttachFailed(host, session string, cause error) *CLIError {
	hint := "Run 'moor hosts probe' to check the agent"

	if cause != nil {
		switch {
		case containsAny(cause.Error(), "401", "unauthorized"):
			hint = fmt.Sprintf("Run 'moor auth login %s' to refresh the token", host)
		case containsAny(cause.Error(), "404", "not found"):
			hint = fmt.Sprintf("Run 'moor sessions %s' to list sessions", host)
		case containsAny(cause.Error(), "connection", "timeout", "refused"):
			hint = "Check your network connection to the host"
		}
	}

	return &CLIError{
		Message: fmt.Sprintf("Failed to attach to %s on %s", session, host),
		Hint:    hint,
		Cause:   cause,
		Code:    ExitNetwork,
	}
}

// ResizeRejected returns an error when the agent refuses a grid resize.
func ResizeRejected(session string, cols, rows int, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Agent rejected resize of %s to %dx%d", session, cols, rows),
		Hint:    "The session may have another attached client pinning its size",
		Cause:   cause,
		Code:    ExitAgent,
	}
}

// TmuxNotFound returns an error when the local tmux binary is missing.
func TmuxNotFound() *CLIError {
	return &CLIError{
		Message: "tmux not found",
		Hint:    "Install tmux to use local sessions",
		Code:    ExitConfig,
	}
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}

	return false
}
