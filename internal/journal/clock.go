package journal

import "sync/atomic"

// Sequencer stamps journal events with a strictly increasing seq number.
// Ordering by seq is deterministic; wall-clock timestamps are recorded but
// never used for ordering.
type Sequencer interface {
	Next() int64
}

// Clock is the default Sequencer: an atomic monotonic counter.
//
// Thread-safe. A single journal typically receives events from one test
// execution at a time, but nothing relies on that.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
