// Package negotiate reconciles a host-side layout container with a terminal
// renderer's column/row grid before a resize is committed.
//
// The host and the embedded renderer can observe the container size at
// different times relative to paint. Trusting either side's measurement
// blindly causes resize thrashing or truncated grids, so the strict protocol
// runs a request/confirm round trip: the host asks the renderer to propose a
// grid for its current box, and confirms the proposal only when the
// renderer's measurement agrees with the host's own within a tolerance.
// Mismatches are not errors; the renderer retries on its own timers.
package negotiate

import (
	"math"
	"sync"
)

// Size is a pixel-space container measurement.
type Size struct {
	Width  float64
	Height float64
}

// Grid is a terminal character grid.
type Grid struct {
	Cols int
	Rows int
}

// Proposal carries the renderer's view of one negotiation round: the
// container size it measured internally and the grid it computed from its
// font metrics. Proposals are transient; neither side retains history.
type Proposal struct {
	Container Size
	Grid      Grid
}

// Engine is the renderer side of the handshake. RequestFit asks the engine
// to measure its box and post a Proposal back to the host; Confirm commits
// a grid the host has accepted.
type Engine interface {
	RequestFit()
	Confirm(Grid)
}

// State identifies the host's position in the negotiation cycle.
type State int

// Negotiation states.
const (
	StateIdle State = iota
	StateAwaitingProposal
	StateReconciled
)

// String returns a human-readable state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingProposal:
		return "awaiting-proposal"
	case StateReconciled:
		return "reconciled"
	default:
		return "unknown"
	}
}

// Fitter is the host-side protocol surface shared by the strict negotiator
// and the fire-and-forget variant. Call sites select the variant: strict for
// interactive shells, fire-and-forget only where column/row correctness is
// not safety-critical (plain log display).
type Fitter interface {
	// LoadComplete begins a negotiation cycle for a freshly loaded surface.
	LoadComplete(container Size)
	// Observe reports a layout change of the host container.
	Observe(container Size)
	// HandleProposal processes a renderer proposal, returning true when the
	// grid was confirmed to the engine.
	HandleProposal(p Proposal) bool
	// Invalidate aborts the cycle when the content source changes.
	Invalidate()
}

const (
	// DefaultObserveTolerancePx filters layout jitter: deltas at or below
	// this threshold do not restart negotiation.
	DefaultObserveTolerancePx = 2.0
	// DefaultConfirmTolerancePx bounds the acceptable disagreement between
	// the host's and the renderer's container measurements, per axis.
	DefaultConfirmTolerancePx = 8.0
)

// Config tunes the strict negotiator. Zero values select the defaults.
type Config struct {
	ObserveTolerancePx float64
	ConfirmTolerancePx float64
}

func (c Config) withDefaults() Config {
	if c.ObserveTolerancePx <= 0 {
		c.ObserveTolerancePx = DefaultObserveTolerancePx
	}
	if c.ConfirmTolerancePx <= 0 {
		c.ConfirmTolerancePx = DefaultConfirmTolerancePx
	}

	return c
}

// Negotiator implements the strict request/confirm protocol:
// Idle → AwaitingProposal → Reconciled.
type Negotiator struct {
	engine Engine
	cfg    Config

	mu           sync.Mutex
	state        State
	lastMeasured Size
	haveMeasured bool
	grid         Grid
	hasGrid      bool
}

// New creates a strict negotiator bound to a renderer engine.
func New(engine Engine, cfg Config) *Negotiator {
	return &Negotiator{
		engine: engine,
		cfg:    cfg.withDefaults(),
	}
}

// State returns the current negotiation state.
func (n *Negotiator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.state
}

// Grid returns the last confirmed grid, if any.
func (n *Negotiator) Grid() (Grid, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.grid, n.hasGrid
}

// LoadComplete records the initial container measurement and always starts
// a negotiation round.
func (n *Negotiator) LoadComplete(container Size) {
	n.mu.Lock()
	n.lastMeasured = container
	n.haveMeasured = true
	n.state = StateAwaitingProposal
	n.mu.Unlock()

	n.engine.RequestFit()
}

// Observe records a host layout measurement. A delta beyond the observe
// tolerance on either axis restarts negotiation; smaller jitter is ignored.
func (n *Negotiator) Observe(container Size) {
	n.mu.Lock()

	if !n.haveMeasured {
		n.mu.Unlock()
		n.LoadComplete(container)

		return
	}

	if !exceeds(n.lastMeasured, container, n.cfg.ObserveTolerancePx) {
		n.lastMeasured = container
		n.mu.Unlock()

		return
	}

	n.lastMeasured = container
	n.state = StateAwaitingProposal
	n.mu.Unlock()

	n.engine.RequestFit()
}

// HandleProposal reconciles a renderer proposal against the host's last
// measured layout. Within tolerance on both axes the grid is confirmed to
// the engine; otherwise confirmation is withheld and the renderer is
// expected to retry on its own timers. Proposals arriving while Idle (after
// Invalidate, or before any measurement) are discarded.
func (n *Negotiator) HandleProposal(p Proposal) bool {
	n.mu.Lock()

	if n.state == StateIdle || !n.haveMeasured {
		n.mu.Unlock()
		return false
	}

	if exceeds(n.lastMeasured, p.Container, n.cfg.ConfirmTolerancePx) {
		// The renderer measured a stale box; stay in AwaitingProposal.
		n.state = StateAwaitingProposal
		n.mu.Unlock()

		return false
	}

	n.grid = p.Grid
	n.hasGrid = true
	n.state = StateReconciled
	n.mu.Unlock()

	n.engine.Confirm(p.Grid)

	return true
}

// Invalidate aborts any pending round, e.g. when the surface switches to a
// new connection. The next cycle begins at Idle with a fresh LoadComplete.
func (n *Negotiator) Invalidate() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.state = StateIdle
	n.haveMeasured = false
	n.hasGrid = false
}

func exceeds(a, b Size, tolerance float64) bool {
	return math.Abs(a.Width-b.Width) > tolerance || math.Abs(a.Height-b.Height) > tolerance
}
