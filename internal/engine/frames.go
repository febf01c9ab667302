package engine

import (
	"sync"
	"time"
)

// FrameCallback is invoked once per requested frame with the frame
// timestamp.
type FrameCallback func(timestamp time.Duration)

// FrameSource delivers animation frames, like a display link. A requested
// callback fires once; the scheduler requests again when it wants another
// frame. Callbacks must run on the goroutine that owns the engine.
type FrameSource interface {
	RequestFrame(cb FrameCallback)
}

// ManualFrames is a FrameSource fired explicitly, by the run loop ticker or
// by a deterministic simulation.
//
// Thread-safety: ManualFrames is safe for concurrent use, but Fire must be
// called from the engine goroutine.
type ManualFrames struct {
	mu       sync.Mutex
	pending  FrameCallback
	requests int
}

// NewManualFrames creates a source with no pending frame.
func NewManualFrames() *ManualFrames {
	return &ManualFrames{}
}

// RequestFrame stores cb until the next Fire. A later request replaces an
// earlier one that has not fired.
func (m *ManualFrames) RequestFrame(cb FrameCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = cb
	m.requests++
}

// Pending reports whether a frame has been requested.
func (m *ManualFrames) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// Requests returns how many frames have been requested so far.
func (m *ManualFrames) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// Fire runs the pending callback with timestamp ts. It returns false when no
// frame was requested.
func (m *ManualFrames) Fire(ts time.Duration) bool {
	m.mu.Lock()
	cb := m.pending
	m.pending = nil
	m.mu.Unlock()

	if cb == nil {
		return false
	}
	cb(ts)
	return true
}
