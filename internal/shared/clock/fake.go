package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock is a manually advanced Clock. It is safe for concurrent use.
//
// Do not call Advance from inside an AfterFunc callback.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeTimer
}

type fakeTimer struct {
	clock    *FakeClock
	deadline time.Time
	callback func()
	stopped  bool
	fired    bool
}

// Fake returns a FakeClock frozen at initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// AfterFunc registers f to run when the clock is advanced past now+d.
// A non-positive d runs f synchronously before returning.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	if d <= 0 {
		f()
		return &fakeTimer{clock: c, fired: true}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{
		clock:    c,
		deadline: c.current.Add(d),
		callback: f,
	}
	c.waiters = append(c.waiters, timer)
	return timer
}

// Stop cancels the timer.
func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d and runs every callback whose
// deadline has been reached, earliest first.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current

	var due, remaining []*fakeTimer
	for _, timer := range c.waiters {
		switch {
		case timer.stopped:
		case !timer.deadline.After(target):
			timer.fired = true
			due = append(due, timer)
		default:
			remaining = append(remaining, timer)
		}
	}
	c.waiters = remaining
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, timer := range due {
		timer.callback()
	}
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, timer := range c.waiters {
		if !timer.stopped {
			count++
		}
	}
	return count
}
