// Package clock provides a process-local logical clock that guarantees
// strictly increasing timestamps even across calls that land on the
// same wall-clock tick.
package clock

import (
	"sync"
	"time"
)

// Clock issues strictly monotonic timestamps. It wraps time.Now rather
// than replacing it: each call returns the current wall clock, or one
// nanosecond past the previous issued timestamp if the wall clock has
// not moved beyond it, so a tight loop of inserts never produces two
// diffs with the same timestamp.
type Clock struct {
	mu   sync.Mutex
	last time.Time
}

// New returns a Clock ready for use.
func New() *Clock {
	return &Clock{}
}

// Now returns the next strictly increasing timestamp.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if !now.After(c.last) {
		now = c.last.Add(time.Nanosecond)
	}
	c.last = now
	return now
}
