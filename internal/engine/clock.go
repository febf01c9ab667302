package engine

import "sync/atomic"

// FrameClock numbers frames with a strictly increasing sequence.
//
// Frame numbers order recorded frames and effects without relying on wall
// time, so a replayed script yields the same numbering.
//
// Thread-safety: FrameClock is safe for concurrent use. The scheduler is the
// only writer; readers such as metrics may call Current from anywhere.
type FrameClock struct {
	seq atomic.Int64
}

// NewFrameClock creates a clock whose first frame is 1.
func NewFrameClock() *FrameClock {
	return &FrameClock{}
}

// Next advances to the next frame and returns its number.
func (c *FrameClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the number of the latest frame, 0 before the first one.
func (c *FrameClock) Current() int64 {
	return c.seq.Load()
}
