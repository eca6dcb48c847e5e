// Package debounce coalesces bursts of calls into one deferred call.
package debounce

import (
	"sync"
	"time"

	"github.com/banshee-data/aco.dashboard/internal/timeutil"
)

// Debouncer runs fn once the calls to Trigger have been quiet for the
// window. Each Trigger restarts the window; there is no queue, so only the
// latest burst produces a call.
type Debouncer struct {
	clock  timeutil.Clock
	window time.Duration
	fn     func()

	mu      sync.Mutex
	timer   timeutil.Timer
	stopped bool
}

// New returns a Debouncer. A nil clock uses the real clock.
func New(clock timeutil.Clock, window time.Duration, fn func()) *Debouncer {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Debouncer{clock: clock, window: window, fn: fn}
}

// Trigger starts or restarts the quiet window. It is a no-op after Stop.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Reset(d.window)
		return
	}
	d.timer = d.clock.AfterFunc(d.window, d.fn)
}

// Flush cancels any pending call and runs fn now if one was pending. It
// reports whether fn ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	pending := d.timer != nil && d.timer.Stop()
	d.mu.Unlock()
	if pending {
		d.fn()
	}
	return pending
}

// Stop cancels any pending call and disables further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
