package negotiate

import (
	"sync"
	"time"
)

// DefaultDelayLadder is the fit schedule after load for the fire-and-forget
// variant. Repeating the fit shortly after load papers over async layout
// settling without a confirmation round trip.
var DefaultDelayLadder = []time.Duration{0, 50 * time.Millisecond, 150 * time.Millisecond}

// FireAndForget is the relaxed protocol variant used for plain log viewers:
// it invokes fit on load and on a short fixed delay ladder and confirms
// every proposal unconditionally. It must not be used for interactive
// shells, where a mis-sized grid corrupts the session.
type FireAndForget struct {
	engine Engine
	ladder []time.Duration

	mu     sync.Mutex
	timers []*time.Timer
}

// NewFireAndForget creates the relaxed variant. A nil ladder selects
// DefaultDelayLadder.
func NewFireAndForget(engine Engine, ladder []time.Duration) *FireAndForget {
	if ladder == nil {
		ladder = DefaultDelayLadder
	}

	return &FireAndForget{engine: engine, ladder: ladder}
}

// LoadComplete schedules a fit for each rung of the delay ladder.
func (f *FireAndForget) LoadComplete(Size) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopTimersLocked()

	for _, delay := range f.ladder {
		if delay == 0 {
			go f.engine.RequestFit()
			continue
		}

		f.timers = append(f.timers, time.AfterFunc(delay, f.engine.RequestFit))
	}
}

// Observe triggers an immediate fit on any layout change.
func (f *FireAndForget) Observe(Size) {
	f.engine.RequestFit()
}

// HandleProposal confirms unconditionally; there is no reconciliation step.
func (f *FireAndForget) HandleProposal(p Proposal) bool {
	f.engine.Confirm(p.Grid)
	return true
}

// Invalidate cancels any pending scheduled fits.
func (f *FireAndForget) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopTimersLocked()
}

func (f *FireAndForget) stopTimersLocked() {
	for _, t := range f.timers {
		t.Stop()
	}

	f.timers = nil
}
