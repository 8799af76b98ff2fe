package engine

import "sync/atomic"

// Clock is a monotonic logical clock for record ordering.
//
// Every measurement, coordinate and integration attempt is stamped with a
// strictly increasing seq from this clock. Wall-clock timestamps are carried
// on records for display only and never used to order them.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// AdvanceTo moves the clock forward to at least seq. It never moves backwards.
func (c *Clock) AdvanceTo(seq int64) {
	for {
		cur := c.seq.Load()
		if cur >= seq || c.seq.CompareAndSwap(cur, seq) {
			return
		}
	}
}
