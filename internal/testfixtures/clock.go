package testfixtures

import (
	"sort"
	"sync"
	"time"

	"github.com/example/game-announcer/internal/scheduler"
)

// Clock provides a controllable time source for tests. Timers created through
// TimerFunc fire synchronously when Advance or Set moves past their deadline.
type Clock struct {
	mu      sync.Mutex
	current time.Time
	timers  []*clockTimer
}

type clockTimer struct {
	clock   *Clock
	due     time.Time
	fn      func()
	stopped bool
	fired   bool
}

// Stop prevents the timer from firing and reports whether it was still pending.
func (t *clockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewClock returns a clock initialised to the supplied time. When start is the
// zero value, the shared ReferenceTime is used.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the current instant tracked by the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now as a function suitable for dependency injection.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// TimerFunc returns a timer source bound to this clock.
func (c *Clock) TimerFunc() scheduler.TimerFunc {
	return func(d time.Duration, f func()) scheduler.Timer {
		c.mu.Lock()
		defer c.mu.Unlock()
		timer := &clockTimer{clock: c, due: c.current.Add(d), fn: f}
		c.timers = append(c.timers, timer)
		return timer
	}
}

// PendingTimers reports how many timers are waiting to fire.
func (c *Clock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, timer := range c.timers {
		if !timer.stopped && !timer.fired {
			count++
		}
	}
	return count
}

// Set updates the clock to the provided time and fires due timers.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	due := c.collectDue()
	c.mu.Unlock()
	runTimers(due)
}

// Advance moves the clock forward by the provided duration, fires due timers
// and returns the updated time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	updated := c.current
	due := c.collectDue()
	c.mu.Unlock()
	runTimers(due)
	return updated
}

// Current returns the clock time without modifying it. It is equivalent to
// calling Now but signals the absence of time progression.
func (c *Clock) Current() time.Time {
	return c.Now()
}

// collectDue marks and returns the timers whose deadline has passed, earliest
// first. Callers hold c.mu.
func (c *Clock) collectDue() []*clockTimer {
	var due []*clockTimer
	remaining := c.timers[:0]
	for _, timer := range c.timers {
		switch {
		case timer.stopped:
		case !timer.due.After(c.current):
			timer.fired = true
			due = append(due, timer)
		default:
			remaining = append(remaining, timer)
		}
	}
	c.timers = remaining
	sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })
	return due
}

func runTimers(timers []*clockTimer) {
	for _, timer := range timers {
		timer.fn()
	}
}
