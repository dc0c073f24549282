// Package doctor provides diagnostic checks for Moor CLI health.
//
// This package implements a check framework that validates:
//   - Host inventory presence and readability
//   - Agent reachability and auth for each configured host
//   - Agent version against the minimum the CLI supports
//   - Local tmux availability (needed for 'moor attach --local')
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/moor-dev/moor/internal/agent"
	"github.com/moor-dev/moor/internal/auth"
	"github.com/moor-dev/moor/internal/config"
)

// MinAgentVersion is the oldest agent the CLI is known to work with.
const MinAgentVersion = "0.5.0"

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string
	Status  Status
	Message string
	Detail  string // Optional additional detail
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a diagnostic runner with checks for every host in the
// inventory plus the local environment.
func New() *Runner {
	r := &Runner{}

	r.AddCheck("Host Inventory", checkInventory)

	inv, err := config.LoadInventory()
	if err == nil {
		for _, h := range inv.Hosts {
			host := h
			r.AddCheck("Agent: "+host.Name, func(ctx context.Context) Result {
				return checkAgent(ctx, host)
			})
		}
	}

	r.AddCheck("Local tmux", checkLocalTmux)

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

// RenderResults writes check results through the caller's output functions,
// keeping this package free of a presentation dependency. Names are padded
// to a common column so messages align.
func RenderResults(results []Result, print, success, warning, failure, muted func(string, ...interface{})) {
	maxNameLen := 0
	for _, r := range results {
		if len(r.Name) > maxNameLen {
			maxNameLen = len(r.Name)
		}
	}

	for _, r := range results {
		width := maxNameLen + 4

		switch r.Status {
		case StatusPass:
			success("%-*s%s", width, r.Name, r.Message)
		case StatusWarn:
			warning("%-*s%s", width, r.Name, r.Message)
		case StatusFail:
			failure("%-*s%s", width, r.Name, r.Message)
		default:
			print("%s %-*s%s\n", r.Status.Symbol(), width, r.Name, r.Message)
		}

		if r.Detail != "" {
			muted("    %s", r.Detail)
		}
	}
}

// checkInventory verifies the host inventory is readable and non-empty.
func checkInventory(context.Context) Result {
	inv, err := config.LoadInventory()
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: "Could not read hosts.yaml",
			Detail:  err.Error(),
		}
	}

	if len(inv.Hosts) == 0 {
		return Result{
			Status:  StatusWarn,
			Message: "No hosts configured",
			Detail:  "Run 'moor hosts add <name> <address>' to add one",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%d host(s) configured", len(inv.Hosts)),
	}
}

// checkAgent probes one host and validates its version and latency.
func checkAgent(ctx context.Context, host config.Host) Result {
	_, token := auth.GetToken(host.Name)
	c := agent.New(host.BaseURL(), token)

	start := time.Now()
	outcome := c.ProbeHealth(ctx)
	elapsed := time.Since(start)

	switch outcome.Status {
	case agent.ProbeOK:
		// reachable; fall through to version check
	case agent.ProbeUnauthorized:
		return Result{
			Status:  StatusFail,
			Message: "Agent rejected the token",
			Detail:  fmt.Sprintf("Run 'moor auth login %s' to update it", host.Name),
		}
	case agent.ProbeNotFound, agent.ProbeInvalidResponse:
		return Result{
			Status:  StatusFail,
			Message: "Endpoint is not a moor agent",
			Detail:  host.BaseURL(),
		}
	case agent.ProbeUnreachable:
		return Result{
			Status:  StatusFail,
			Message: "Unreachable",
			Detail:  outcome.Message,
		}
	default:
		return Result{
			Status:  StatusFail,
			Message: fmt.Sprintf("Unexpected response (HTTP %d)", outcome.StatusCode),
			Detail:  outcome.Message,
		}
	}

	info, err := c.GetHostInfo(ctx)
	if err != nil || info.AgentVersion == "" {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("Reachable (%dms), version unknown", elapsed.Milliseconds()),
		}
	}

	got, err := semver.NewVersion(strings.TrimPrefix(info.AgentVersion, "v"))
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("Reachable (%dms), unparseable version %q", elapsed.Milliseconds(), info.AgentVersion),
		}
	}

	if got.LessThan(semver.MustParse(MinAgentVersion)) {
		return Result{
			Status:  StatusFail,
			Message: fmt.Sprintf("Agent v%s is too old (need >= %s)", got, MinAgentVersion),
			Detail:  "Update the agent on the host",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("v%s (%dms)", got, elapsed.Milliseconds()),
	}
}

// checkLocalTmux verifies the local tmux binary used by 'attach --local'.
func checkLocalTmux(ctx context.Context) Result {
	path, err := exec.LookPath("tmux")
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: "Not found in PATH",
			Detail:  "Install tmux to use 'moor attach --local'",
		}
	}

	cmd := exec.CommandContext(ctx, "tmux", "-V")

	out, err := cmd.Output()
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: "Found but version unknown",
		}
	}

	version := strings.TrimSpace(string(out))
	if idx := strings.Index(version, "\n"); idx > 0 {
		version = version[:idx]
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s at %s", version, path),
	}
}

// Symbol returns the status symbol for display.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return checkMark
	case StatusWarn:
		return warningMark
	case StatusFail:
		return xMark
	default:
		return "?"
	}
}

const (
	checkMark   = "\u2713" // ✓
	xMark       = "\u2717" // ✗
	warningMark = "\u26A0" // ⚠
)
