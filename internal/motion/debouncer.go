package motion

import (
	"sync"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// SettleFunc receives the single settled region of a gesture.
type SettleFunc func(region models.Region)

// settleToken is one scheduled quiet-window settle. A new raw event replaces
// the token instead of resetting it, so a timer that fires late can tell it
// has been overtaken.
type settleToken struct {
	timer *time.Timer
}

// Debouncer turns a burst of in-motion notifications into one settle per gesture.
//
// The map widget's completion signal drives the settle. When quiet is
// positive the debouncer also settles on its own after that much silence,
// for widgets that never report completion. The first completion seen
// disarms the timer for good, so a pause in the middle of a drag cannot
// split one gesture into two settles.
type Debouncer struct {
	mu       sync.Mutex
	quiet    time.Duration
	settle   SettleFunc
	token    *settleToken
	moving   bool
	last     models.Region
	hasLast  bool
	timedOut bool
	stopped  bool
	// completes is set once the widget has reported a completion.
	completes bool
}

// NewDebouncer creates a debouncer that calls settle once per gesture.
// quiet is the fallback quiet window; zero disables the timer.
func NewDebouncer(quiet time.Duration, settle SettleFunc) *Debouncer {
	return &Debouncer{quiet: quiet, settle: settle}
}

// Motion records an in-motion notification.
func (d *Debouncer) Motion(region models.Region) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.moving = true
	d.timedOut = false
	d.last = region
	d.hasLast = true

	if d.quiet <= 0 || d.completes {
		return
	}

	d.cancelTokenLocked()
	token := &settleToken{}
	token.timer = time.AfterFunc(d.quiet, func() { d.fire(token) })
	d.token = token
}

// Complete handles the widget's "motion complete" signal and emits the settle.
// A completion that arrives after the quiet window already settled the same
// gesture is swallowed.
func (d *Debouncer) Complete(region models.Region) {
	d.mu.Lock()
	if !d.stopped {
		d.completes = true
	}
	if d.stopped || (d.timedOut && !d.moving) {
		d.timedOut = false
		d.mu.Unlock()
		return
	}
	d.cancelTokenLocked()
	d.moving = false
	d.hasLast = false
	d.mu.Unlock()

	d.settle(region)
}

// Moving reports whether a gesture is in progress.
func (d *Debouncer) Moving() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.moving
}

// Stop cancels any scheduled settle; later notifications are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.cancelTokenLocked()
}

func (d *Debouncer) fire(token *settleToken) {
	d.mu.Lock()
	if d.token != token || d.stopped || d.completes || !d.hasLast {
		d.mu.Unlock()
		return
	}
	region := d.last
	d.token = nil
	d.moving = false
	d.hasLast = false
	d.timedOut = true
	d.mu.Unlock()

	d.settle(region)
}

func (d *Debouncer) cancelTokenLocked() {
	if d.token != nil {
		d.token.timer.Stop()
		d.token = nil
	}
}
