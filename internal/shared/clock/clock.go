// Package clock abstracts wall-clock reads and delayed callbacks so the
// bridge's save scheduler and timestamping can be driven deterministically
// in tests.
//
// Production code injects Real(); tests inject Fake() and move time with
// Advance. AfterFunc callbacks registered on a fake clock run synchronously
// inside Advance, in deadline order.
package clock

import "time"

// Clock is the time capability consumed by the bridge.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f once d has elapsed. The returned Timer cancels
	// the call if stopped before it fires.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the timer from firing. It reports whether the call
	// stopped the timer; false means it already fired or was stopped.
	Stop() bool
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
