package engine

import "sync/atomic"

// Clock is the scheduler's monotonic logical clock.
//
// Frames count Update calls; seq stamps every trace event within and across
// frames with a strictly increasing number. Ordering is never derived from
// wall-clock time, so a recorded trace replays in the exact original order.
//
// Thread-safety: atomic operations. The engine is single-frame-owner, but
// diagnostics may read the clock from other goroutines.
type Clock struct {
	frame atomic.Int64
	seq   atomic.Int64
}

// NewClock creates a clock at frame 0, seq 0.
func NewClock() *Clock {
	return &Clock{}
}

// NextFrame advances and returns the frame counter. The first Update call
// runs as frame 1.
func (c *Clock) NextFrame() int64 {
	return c.frame.Add(1)
}

// Frame returns the current frame number without advancing.
func (c *Clock) Frame() int64 {
	return c.frame.Load()
}

// NextSeq returns the next event sequence number.
// Calls are linearizable - each returns a unique, increasing value.
func (c *Clock) NextSeq() int64 {
	return c.seq.Add(1)
}

// Seq returns the current sequence number without advancing.
func (c *Clock) Seq() int64 {
	return c.seq.Load()
}
