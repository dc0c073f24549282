// Package livestate keeps a continuously refreshed, per-host snapshot of
// session, host-metric, and container state across any number of agent
// hosts, with online/offline detection and reconnection backoff.
//
// The aggregator owns the per-host state map exclusively: it is written
// only by poll-completion handlers and read through Snapshot copies, so
// consumers never observe a partially applied poll.
package livestate

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/moor-dev/moor/internal/agent"
	"github.com/moor-dev/moor/internal/observability"
)

// Status is the reachability classification of one host.
type Status string

// Host status values. A host starts in checking, moves to online on its
// first successful poll or offline on failure, then oscillates between
// online and offline on subsequent polls.
const (
	StatusChecking Status = "checking"
	StatusOnline   Status = "online"
	StatusOffline  Status = "offline"
)

// Features selects which per-host state the aggregator polls. The three
// fetches are independent calls; a failure in one never fails the others.
type Features struct {
	Sessions bool
	Host     bool
	Docker   bool
}

// HostClient is the subset of the agent client the aggregator consumes.
type HostClient interface {
	ListSessions(ctx context.Context, opts agent.SessionsOptions) ([]agent.Session, error)
	GetHostInfo(ctx context.Context) (*agent.HostInfo, error)
	ListContainers(ctx context.Context) ([]agent.Container, error)
}

// HostState is the reconciled snapshot for one host. It is replaced
// wholesale on each poll completion, never patched field by field, so no
// stale field can leak across polls. Data for a feature whose fetch failed
// carries over from the previous poll with Err recording the failure.
type HostState struct {
	Status     Status            `json:"status"`
	LastUpdate time.Time         `json:"lastUpdate"`
	HostInfo   *agent.HostInfo   `json:"hostInfo,omitempty"`
	Sessions   []agent.Session   `json:"sessions,omitempty"`
	Docker     []agent.Container `json:"docker,omitempty"`
	Err        string            `json:"error,omitempty"`
}

// hasData reports whether any feature carries data from a completed poll.
func (st HostState) hasData() bool {
	return st.HostInfo != nil || st.Sessions != nil || st.Docker != nil
}

// Totals are fleet-wide aggregates. Offline hosts contribute nothing: their
// last-known data is retained per host for display but is too stale to
// count, so a host dropping off the network immediately drops out of the
// fleet numbers.
type Totals struct {
	HostsOnline       int `json:"hostsOnline"`
	HostsOffline      int `json:"hostsOffline"`
	Sessions          int `json:"sessions"`
	ContainersRunning int `json:"containersRunning"`
	ContainersTotal   int `json:"containersTotal"`
}

// Config configures an Aggregator.
type Config struct {
	// Clients maps host id to its agent client.
	Clients map[string]HostClient
	// Features selects what to poll. At least one must be set.
	Features Features
	// Interval is the steady-state poll interval (default 10s).
	Interval time.Duration
	// MaxBackoff caps the retry interval for offline hosts (default 60s).
	// Offline hosts are never retried faster than Interval.
	MaxBackoff time.Duration
	// SessionPreviewLines requests pane previews with the session poll.
	SessionPreviewLines int
	// Clock defaults to the wall clock.
	Clock Clock
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

const (
	defaultInterval   = 10 * time.Second
	defaultMaxBackoff = 60 * time.Second
)

// hostEntry is the aggregator's private bookkeeping for one host.
type hostEntry struct {
	client HostClient

	kick     chan struct{} // wakes the poll loop for an out-of-band poll
	inFlight atomic.Bool
	pending  atomic.Bool
	gen      atomic.Uint64 // bumped on Enable; stale poll results are discarded

	failures int // consecutive full-poll failures, drives backoff
}

// Aggregator multiplexes live state across hosts.
type Aggregator struct {
	cfg   Config
	clock Clock
	log   *slog.Logger

	mu      sync.Mutex
	states  map[string]HostState
	hosts   map[string]*hostEntry
	enabled bool
	cancel  context.CancelFunc
	done    sync.WaitGroup
}

// NewAggregator creates an aggregator; polling starts on Enable.
func NewAggregator(cfg Config) *Aggregator {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.MaxBackoff < cfg.Interval {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	a := &Aggregator{
		cfg:    cfg,
		clock:  cfg.Clock,
		log:    cfg.Logger,
		states: make(map[string]HostState, len(cfg.Clients)),
		hosts:  make(map[string]*hostEntry, len(cfg.Clients)),
	}

	for id, client := range cfg.Clients {
		a.hosts[id] = &hostEntry{
			client: client,
			kick:   make(chan struct{}, 1),
		}
		a.states[id] = HostState{Status: StatusChecking}
	}

	return a
}

// Enable starts polling. Each host polls immediately rather than waiting
// for the first tick. Enabling an enabled aggregator is a no-op.
func (a *Aggregator) Enable(ctx context.Context) {
	a.mu.Lock()
	if a.enabled {
		a.mu.Unlock()
		return
	}

	pollCtx, cancel := context.WithCancel(ctx)
	a.enabled = true
	a.cancel = cancel

	for id, entry := range a.hosts {
		entry.gen.Add(1)
		entry.failures = 0
		a.states[id] = withStatus(a.states[id], StatusChecking)

		a.done.Add(1)
		go a.pollLoop(pollCtx, id, entry)
	}
	a.mu.Unlock()
}

// Disable stops polling and waits for in-flight loops to wind down. No poll
// fires after Disable returns, and no timers are left running. Re-enabling
// resumes with a fresh immediate poll.
func (a *Aggregator) Disable() {
	a.mu.Lock()
	if !a.enabled {
		a.mu.Unlock()
		return
	}

	a.enabled = false
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	cancel()
	a.done.Wait()
}

// Refresh forces an out-of-band repoll of every host. A refresh issued
// while a host's poll is already in flight coalesces into that poll rather
// than starting an overlapping one.
func (a *Aggregator) Refresh() {
	a.mu.Lock()
	enabled := a.enabled
	a.mu.Unlock()

	if !enabled {
		return
	}

	for id := range a.hosts {
		a.RefreshHost(id)
	}
}

// RefreshHost forces an out-of-band repoll of one host, with the same
// coalescing guarantee as Refresh.
func (a *Aggregator) RefreshHost(id string) {
	a.mu.Lock()
	entry, ok := a.hosts[id]
	enabled := a.enabled
	a.mu.Unlock()

	if !ok || !enabled {
		return
	}

	if entry.inFlight.Load() {
		return // coalesce into the in-flight poll
	}

	if entry.pending.CompareAndSwap(false, true) {
		select {
		case entry.kick <- struct{}{}:
		default:
		}
	}
}

// Snapshot returns a copy of the per-host state map.
func (a *Aggregator) Snapshot() map[string]HostState {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]HostState, len(a.states))
	for id, st := range a.states {
		out[id] = st
	}

	return out
}

// Totals computes fleet-wide aggregates from the current snapshot. Online
// hosts count in full. A checking host still carrying data from an earlier
// poll (the first cycle after a Disable/Enable round trip) contributes
// that data without counting as online. Offline hosts contribute nothing.
func (a *Aggregator) Totals() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()

	var t Totals
	for _, st := range a.states {
		switch st.Status {
		case StatusOffline:
			t.HostsOffline++
			continue
		case StatusChecking:
			if !st.hasData() {
				continue
			}
		case StatusOnline:
			t.HostsOnline++
		}

		t.Sessions += len(st.Sessions)
		t.ContainersTotal += len(st.Docker)
		for _, c := range st.Docker {
			if c.Running() {
				t.ContainersRunning++
			}
		}
	}

	return t
}

// HostStateFor returns the state for one host.
func (a *Aggregator) HostStateFor(id string) (HostState, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.states[id]

	return st, ok
}

// pollLoop is the single poll driver for one host. Polls for a host run
// strictly sequentially; hosts run concurrently and independently, so
// slowness on one host never blocks state for another.
func (a *Aggregator) pollLoop(ctx context.Context, id string, entry *hostEntry) {
	defer a.done.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		entry.pending.Store(false)
		entry.inFlight.Store(true)
		a.pollHost(ctx, id, entry)
		entry.inFlight.Store(false)

		timer := a.clock.NewTimer(a.nextDelay(entry))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-entry.kick:
			timer.Stop()
		case <-timer.C():
		}
	}
}

// nextDelay returns the steady interval for online hosts and a capped
// exponential backoff for offline ones, never below the base interval.
func (a *Aggregator) nextDelay(entry *hostEntry) time.Duration {
	a.mu.Lock()
	failures := entry.failures
	a.mu.Unlock()

	delay := a.cfg.Interval
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay >= a.cfg.MaxBackoff {
			return a.cfg.MaxBackoff
		}
	}

	return delay
}

// featureResult carries one feature fetch outcome back to the merge step.
type featureResult struct {
	sessions []agent.Session
	hostInfo *agent.HostInfo
	docker   []agent.Container
	err      error
}

// pollHost fetches the selected features concurrently and applies the
// merged outcome. The result is dropped if the poll generation moved on
// (the aggregator was disabled and re-enabled while the poll was in
// flight), so a slow stale response never clobbers fresher state.
func (a *Aggregator) pollHost(ctx context.Context, id string, entry *hostEntry) {
	var pollErr error
	ctx, end := observability.StartSpan(ctx, "livestate.poll",
		attribute.String("moor.host", id))
	defer func() { end(pollErr) }()

	gen := entry.gen.Load()
	features := a.cfg.Features

	var wg sync.WaitGroup
	var sessions, host, docker featureResult

	if features.Sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opts := agent.SessionsOptions{}
			if a.cfg.SessionPreviewLines > 0 {
				opts.Preview = true
				opts.Lines = a.cfg.SessionPreviewLines
			}
			sessions.sessions, sessions.err = entry.client.ListSessions(ctx, opts)
		}()
	}

	if features.Host {
		wg.Add(1)
		go func() {
			defer wg.Done()
			host.hostInfo, host.err = entry.client.GetHostInfo(ctx)
		}()
	}

	if features.Docker {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docker.docker, docker.err = entry.client.ListContainers(ctx)
		}()
	}

	wg.Wait()

	if ctx.Err() != nil || entry.gen.Load() != gen {
		return // superseded; discard
	}

	pollErr = a.applyPoll(id, entry, features, sessions, host, docker)
}

// applyPoll merges feature outcomes into a fresh HostState and replaces the
// host's entry wholesale. Partial success keeps the previously known data
// for the failed feature and records only the error; all features failing
// marks the host offline. Returns the first feature error, if any.
func (a *Aggregator) applyPoll(id string, entry *hostEntry, features Features, sessions, host, docker featureResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.states[id]

	next := HostState{
		Status:     StatusOnline,
		LastUpdate: a.clock.Now(),
	}

	requested := 0
	failed := 0
	var firstErr error

	if features.Sessions {
		requested++
		if sessions.err != nil {
			failed++
			firstErr = sessions.err
			next.Sessions = prev.Sessions
		} else {
			next.Sessions = sessions.sessions
		}
	}

	if features.Host {
		requested++
		if host.err != nil {
			failed++
			if firstErr == nil {
				firstErr = host.err
			}
			next.HostInfo = prev.HostInfo
		} else {
			next.HostInfo = host.hostInfo
		}
	}

	if features.Docker {
		requested++
		if docker.err != nil {
			failed++
			if firstErr == nil {
				firstErr = docker.err
			}
			next.Docker = prev.Docker
		} else {
			next.Docker = docker.docker
		}
	}

	switch {
	case requested == 0:
		next.Status = prev.Status
	case failed == requested:
		next.Status = StatusOffline
		next.Err = firstErr.Error()
		entry.failures++
	case failed > 0:
		next.Err = firstErr.Error()
		entry.failures = 0
	default:
		entry.failures = 0
	}

	if next.Status == StatusOffline {
		a.log.Debug("host poll failed",
			slog.String("host", id),
			slog.Int("consecutive_failures", entry.failures),
			slog.String("error", next.Err))
	}

	a.states[id] = next

	return firstErr
}

func withStatus(st HostState, status Status) HostState {
	st.Status = status
	return st
}
