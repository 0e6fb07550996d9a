package testutil

import (
	"sync"
	"time"
)

// DayClock is a controllable wall clock for tests that exercise day-granular
// freshness windows.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DayClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewDayClock creates a clock fixed at start.
func NewDayClock(start time.Time) *DayClock {
	return &DayClock{now: start}
}

// Now returns the current instant.
func (c *DayClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AdvanceDays moves the clock forward by n days. Negative n moves it back.
func (c *DayClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

// Advance moves the clock forward by d.
func (c *DayClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set replaces the current instant.
func (c *DayClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
