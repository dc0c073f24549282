package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/moor-dev/moor/internal/testutil"
)

func TestAttachFailed_HintDetection(t *testing.T) {
	tests := []struct {
		name     string
		cause    error
		wantHint string
	}{
		{
			name:     "unauthorized",
			cause:    fmt.Errorf("unexpected status 401"),
			wantHint: "auth login",
		},
		{
			name:     "session gone",
			cause:    fmt.Errorf("unexpected status 404: not found"),
			wantHint: "moor sessions",
		},
		{
			name:     "network",
			cause:    fmt.Errorf("dial tcp: connection refused"),
			wantHint: "network connection",
		},
		{
			name:     "no cause",
			cause:    nil,
			wantHint: "hosts probe",
		},
		{
			name:     "unrecognized",
			cause:    fmt.Errorf("something odd"),
			wantHint: "hosts probe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AttachFailed("pi", "dev", tt.cause)

			if !strings.Contains(err.Message, "dev") || !strings.Contains(err.Message, "pi") {
				t.Errorf("message = %q, want session and host named", err.Message)
			}

			if !strings.Contains(err.Hint, tt.wantHint) {
				t.Errorf("hint = %q, want to contain %q", err.Hint, tt.wantHint)
			}

			if err.Code != ExitNetwork {
				t.Errorf("code = %d, want %d", err.Code, ExitNetwork)
			}
		})
	}
}

func TestContainsAny(t *testing.T) {
	tests := []struct {
		s          string
		substrings []string
		want       bool
	}{
		{"connection refused", []string{"connection"}, true},
		{"CONNECTION refused", []string{"connection"}, true},
		{"some error", []string{"connection", "auth"}, false},
		{"authentication failed", []string{"connection", "auth"}, true},
		{"", []string{"test"}, false},
	}

	for _, tt := range tests {
		result := containsAny(tt.s, tt.substrings...)
		if result != tt.want {
			t.Errorf("containsAny(%q, %v) = %v, want %v", tt.s, tt.substrings, result, tt.want)
		}
	}
}

// TestAllErrorsHaveHints verifies that all error constructors provide actionable hints.
func TestAllErrorsHaveHints(t *testing.T) {
	tests := []struct {
		name string
		err  *CLIError
	}{
		{"NotAuthenticated", NotAuthenticated("pi")},
		{"AuthFailed", AuthFailed("pi", nil)},
		{"TokenEmpty", TokenEmpty()},
		{"CannotPrompt", CannotPrompt("TEST_VAR")},
		{"HostNotFound", HostNotFound("pi")},
		{"NoHosts", NoHosts()},
		{"HostRequired", HostRequired()},
		{"HostUnreachable", HostUnreachable("pi", nil)},
		{"AgentMisbehaving", AgentMisbehaving("pi")},
		{"AgentVersionUnsupported", AgentVersionUnsupported("pi", "0.3.0", "0.5.0")},
		{"SessionNotFound", SessionNotFound("pi", "dev")},
		{"InvalidContainerAction", InvalidContainerAction("boop", []string{"start", "stop"})},
		{"ContainerActionFailed", ContainerActionFailed("restart", "db", nil)},
		{"ConfigFailed", ConfigFailed("test operation", nil)},
		{"AttachFailed", AttachFailed("pi", "dev", nil)},
		{"ResizeRejected", ResizeRejected("dev", 120, 40, nil)},
		{"TmuxNotFound", TmuxNotFound()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Hint == "" {
				t.Errorf("%s() should have a hint, got empty string", tt.name)
			}

			if tt.err.Message == "" {
				t.Errorf("%s() should have a message, got empty string", tt.name)
			}
		})
	}
}

func TestCLIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CLIError
		want string
	}{
		{
			name: "message only",
			err:  &CLIError{Message: "test error"},
			want: "test error",
		},
		{
			name: "message with cause",
			err:  &CLIError{Message: "test error", Cause: New(1, "underlying")},
			want: "test error: underlying",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLIError_Unwrap(t *testing.T) {
	cause := New(1, "cause")
	err := &CLIError{Message: "wrapper", Cause: cause}

	if got := err.Unwrap(); got != cause { //nolint:errorlint // testing identity
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestWithHint(t *testing.T) {
	err := New(1, "test").WithHint("do this")

	if err.Hint != "do this" {
		t.Errorf("WithHint() hint = %q, want %q", err.Hint, "do this")
	}
}

func TestWrap(t *testing.T) {
	cause := New(1, "cause")
	err := Wrap(ExitNetwork, "wrapped", cause)

	if err.Code != ExitNetwork {
		t.Errorf("Wrap() code = %d, want %d", err.Code, ExitNetwork)
	}

	if err.Cause != cause { //nolint:errorlint // testing struct field identity
		t.Errorf("Wrap() cause = %v, want %v", err.Cause, cause)
	}
}

// formatCLIError produces a deterministic string representation of a CLIError for golden file comparison.
func formatCLIError(err *CLIError) string {
	return fmt.Sprintf("Message: %s\nHint: %s\nCode: %d\n", err.Message, err.Hint, err.Code)
}

func TestErrorMessages_Golden(t *testing.T) {
	tests := []struct {
		name string
		err  *CLIError
	}{
		{"NotAuthenticated", NotAuthenticated("pi")},
		{"AuthFailed", AuthFailed("pi", nil)},
		{"TokenEmpty", TokenEmpty()},
		{"CannotPrompt", CannotPrompt("MOOR_TOKEN")},
		{"HostNotFound", HostNotFound("pi")},
		{"NoHosts", NoHosts()},
		{"HostRequired", HostRequired()},
		{"HostUnreachable", HostUnreachable("pi", nil)},
		{"AgentMisbehaving", AgentMisbehaving("pi")},
		{"AgentVersionUnsupported", AgentVersionUnsupported("pi", "0.3.0", "0.5.0")},
		{"SessionNotFound", SessionNotFound("pi", "dev")},
		{"InvalidContainerAction", InvalidContainerAction("boop", []string{"start", "stop"})},
		{"ContainerActionFailed", ContainerActionFailed("restart", "db", nil)},
		{"ConfigFailed", ConfigFailed("save hosts inventory", nil)},
		{"AttachFailed", AttachFailed("pi", "dev", nil)},
		{"ResizeRejected", ResizeRejected("dev", 120, 40, nil)},
		{"TmuxNotFound", TmuxNotFound()},
	}

	var sb strings.Builder
	for _, tt := range tests {
		fmt.Fprintf(&sb, "--- %s ---\n", tt.name)
		sb.WriteString(formatCLIError(tt.err))
		sb.WriteString("\n")
	}

	testutil.AssertGolden(t, sb.String(), "error_messages.golden")
}
