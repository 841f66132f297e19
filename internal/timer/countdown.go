package timer

import "time"

// Countdown tracks the remaining seconds of one armed phase. Remaining time
// is always recomputed from the captured start instant, so late or missed
// ticks never make it lag behind the wall clock.
type Countdown struct {
	clock     Clock
	planned   int
	remaining int
	startedAt time.Time // zero while paused or disarmed
	expired   bool
}

func NewCountdown(clock Clock) *Countdown {
	if clock == nil {
		clock = System
	}
	return &Countdown{clock: clock}
}

// Arm starts counting down plannedSeconds from now.
func (c *Countdown) Arm(plannedSeconds int) {
	c.planned = plannedSeconds
	c.remaining = max(plannedSeconds, 0)
	c.startedAt = c.clock.Now()
	c.expired = false
}

// Reset disarms the countdown and shows plannedSeconds as remaining.
func (c *Countdown) Reset(plannedSeconds int) {
	c.planned = plannedSeconds
	c.remaining = max(plannedSeconds, 0)
	c.startedAt = time.Time{}
	c.expired = false
}

// Tick recomputes the remaining seconds. The second result is true exactly
// once, on the tick that first observes zero.
func (c *Countdown) Tick() (int, bool) {
	if c.startedAt.IsZero() || c.expired {
		return c.remaining, false
	}

	elapsed := int(c.clock.Now().Sub(c.startedAt) / time.Second)
	remaining := c.planned - elapsed
	if remaining < 0 {
		remaining = 0
	}
	// A clock stepped backwards must not add time back.
	if remaining > c.remaining {
		remaining = c.remaining
	}
	c.remaining = remaining

	if remaining == 0 {
		c.expired = true
		return 0, true
	}
	return remaining, false
}

// Pause stops elapsed-time accounting and keeps the last computed value.
func (c *Countdown) Pause() {
	c.startedAt = time.Time{}
}

// ResumeFrom restarts accounting with a synthetic start instant so that
// plannedSeconds-remainingSeconds are already counted as elapsed.
func (c *Countdown) ResumeFrom(remainingSeconds, plannedSeconds int) {
	remainingSeconds = min(max(remainingSeconds, 0), max(plannedSeconds, 0))
	c.planned = plannedSeconds
	c.remaining = remainingSeconds
	c.expired = false
	c.startedAt = c.clock.Now().Add(-time.Duration(plannedSeconds-remainingSeconds) * time.Second)
}

func (c *Countdown) Remaining() int {
	return c.remaining
}

func (c *Countdown) Planned() int {
	return c.planned
}

// Elapsed is the number of planned seconds already consumed.
func (c *Countdown) Elapsed() int {
	return max(c.planned, 0) - c.remaining
}

func (c *Countdown) Running() bool {
	return !c.startedAt.IsZero() && !c.expired
}

// StartedAt returns the effective start instant, zero when not running.
func (c *Countdown) StartedAt() time.Time {
	return c.startedAt
}
