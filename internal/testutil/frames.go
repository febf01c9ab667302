package testutil

import (
	"sync"
	"time"
)

// ManualFrames is a frame scheduler driven by the test.
//
// Callbacks posted with PostOnAnimation are held until RunCallbacks.
// Requests for a propagation pass are counted, not executed; the test decides
// when to run the pass. FrameTime starts at 0 and moves only with Advance.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualFrames struct {
	mu        sync.Mutex
	now       time.Duration
	callbacks []func()
	requests  int
}

// NewManualFrames creates a scheduler at time 0 with nothing pending.
func NewManualFrames() *ManualFrames {
	return &ManualFrames{}
}

// PostOnAnimation queues cb for the next RunCallbacks.
func (f *ManualFrames) PostOnAnimation(cb func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, cb)
}

// PostRunUpdatesAfterAnimation records a request for a propagation pass.
func (f *ManualFrames) PostRunUpdatesAfterAnimation() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
}

// FrameTime returns the current fake timestamp.
func (f *ManualFrames) FrameTime() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake timestamp forward by d.
func (f *ManualFrames) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += d
}

// RunCallbacks snapshots and clears the pending callbacks, then runs them.
// Callbacks posted while running wait for the next call. It returns how many
// callbacks ran.
func (f *ManualFrames) RunCallbacks() int {
	f.mu.Lock()
	cbs := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	for _, cb := range cbs {
		cb()
	}
	return len(cbs)
}

// Pending returns the number of queued callbacks.
func (f *ManualFrames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.callbacks)
}

// UpdateRequests returns how many propagation passes were requested.
func (f *ManualFrames) UpdateRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}
