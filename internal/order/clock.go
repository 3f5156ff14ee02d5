package order

import "sync/atomic"

// Sequencer hands out event sequence numbers.
type Sequencer interface {
	Next() int64
}

// Clock is a monotonic logical clock. Every event a session emits is stamped
// with the next value, so event order is explicit and replays produce
// identical sequences.
//
// Safe for concurrent use, although a Session only calls it from its owner.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments and returns the sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
