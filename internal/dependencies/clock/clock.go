package clock

import "time"

// Timer is a cancellable deadline. Stop and Reset follow time.Timer
// semantics and are safe to call after the timer has fired.
type Timer interface {
	// Reset re-arms the timer for d from now, returning true if it was
	// still pending.
	Reset(d time.Duration) bool

	// Stop cancels the timer, returning true if it had not yet fired.
	Stop() bool
}

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time

	// AfterFunc arms f to run on its own goroutine after d elapses.
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc arms a real time.Timer
func (c *RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
