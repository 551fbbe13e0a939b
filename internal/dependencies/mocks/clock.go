package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/lobbyn/relay/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. Timers armed via
// AfterFunc fire synchronously from Advance.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	timers  []*MockTimer
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// AfterFunc registers f to fire once the clock is advanced past d
func (c *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTimer{clock: c, deadline: c.current.Add(d), fn: f, active: true}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires any timers that come due, in
// deadline order. Callbacks run on the caller's goroutine.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	var due []*MockTimer
	for _, t := range c.timers {
		if t.active && !t.deadline.After(c.current) {
			t.active = false
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	for _, t := range due {
		t.fn()
	}
}

// Set sets the clock to the given time without firing timers
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// MockTimer is a timer armed on a MockClock
type MockTimer struct {
	clock    *MockClock
	deadline time.Time
	fn       func()
	active   bool
}

var _ clock.Timer = (*MockTimer)(nil)

// Stop cancels the timer, reporting whether it was still pending
func (t *MockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.active
	t.active = false
	return was
}

// Reset re-arms the timer for d from the mocked now
func (t *MockTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.active
	t.deadline = t.clock.current.Add(d)
	t.active = true
	return was
}
