// Package countdown implements the session timeout state machine. The
// countdown runs independently of user activity; callers drive it with Tick
// and observe phase transitions so a display layer can react to them.
package countdown

import "time"

// Phase is the countdown state.
type Phase int

const (
	Running Phase = iota
	Warning       // remaining at or below the warning threshold
	Paused
	Expired
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Warning:
		return "warning"
	case Paused:
		return "paused"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// Controller is a single-session countdown. It is not safe for concurrent
// use; a session drives it from one goroutine (the event loop).
type Controller struct {
	total   time.Duration
	warning time.Duration
	now     func() time.Time

	deadline time.Time
	frozen   time.Duration // remaining budget captured at pause time
	phase    Phase
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New returns a Controller with the full budget running. The warning
// threshold marks when Running transitions to Warning.
func New(total, warning time.Duration, opts ...Option) *Controller {
	c := &Controller{total: total, warning: warning, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.deadline = c.now().Add(total)
	c.phase = Running
	return c
}

// Remaining returns the time left on the clock, never negative. While
// paused it returns the frozen value.
func (c *Controller) Remaining() time.Duration {
	if c.phase == Paused {
		return c.frozen
	}
	rem := c.deadline.Sub(c.now())
	if rem < 0 {
		return 0
	}
	return rem
}

// Phase returns the phase as of the last transition.
func (c *Controller) Phase() Phase { return c.phase }

// Expired reports whether the countdown has reached its terminal phase.
func (c *Controller) Expired() bool { return c.phase == Expired }

// Tick advances the automatic transitions (Running → Warning → Expired)
// and returns the current phase. Paused and Expired are sticky: only
// Resume and Reset move out of them.
func (c *Controller) Tick() Phase {
	if c.phase == Paused || c.phase == Expired {
		return c.phase
	}
	rem := c.Remaining()
	switch {
	case rem <= 0:
		c.phase = Expired
	case rem <= c.warning:
		c.phase = Warning
	default:
		c.phase = Running
	}
	return c.phase
}

// Pause freezes the remaining budget. A no-op once expired.
func (c *Controller) Pause() {
	if c.phase == Expired || c.phase == Paused {
		return
	}
	c.frozen = c.Remaining()
	c.phase = Paused
}

// Resume recomputes the deadline from the budget frozen at pause time, so
// wall-clock time spent paused does not drain the countdown.
func (c *Controller) Resume() {
	if c.phase != Paused {
		return
	}
	c.deadline = c.now().Add(c.frozen)
	c.phase = Running
	c.Tick()
}

// Reset restores the full budget and returns to Running, from any phase.
func (c *Controller) Reset() {
	c.deadline = c.now().Add(c.total)
	c.phase = Running
	c.Tick()
}
