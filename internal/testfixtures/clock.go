package testfixtures

import (
	"sync"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/persistence"
)

// Clock is a controllable time source shared by services under test.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock at start, or at ReferenceTime when start is zero.
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

// NowFunc exposes Now for constructors that take a func() time.Time.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to t, backwards if needed.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward and returns the new time. Tests use it to
// walk a hold past its expiry.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// ExpireHold moves the clock to the instant hold stops being active, which is
// its expiry time itself.
func (c *Clock) ExpireHold(hold persistence.Hold) time.Time {
	c.Set(hold.ExpiresAt)
	return hold.ExpiresAt
}
