// Package engine drives an animation graph frame by frame.
//
// The engine wraps one graph.Registry with the three pieces a host talks to:
// the operation gateway, the EventRouter and the FrameScheduler.
//
// ARCHITECTURE:
//
// Single-Writer Frame Loop:
// All graph state is touched from one goroutine. This ensures:
// - Deterministic evaluation and propagation order
// - Reproducible traces when a script is replayed
// - No locks inside the graph
//
// Frame Processing Flow:
// 1. The host buffers structural operations and flushes them in one batch
// 2. Inbound view events are queued by the router if an Event node is attached
// 3. Anything that needs work arms exactly one frame on the FrameSource
// 4. On the frame: queued events are drained, animation callbacks run, then
// one propagation pass pushes values into connected views
// 5. A new frame is armed only if callbacks were posted during the frame
//
// Engine.Run provides a real-time loop with a ticker. Simulations call
// FlushOperations, DispatchEvent and Tick directly from a single goroutine.
//
// CRITICAL PATTERNS:
//
// Frame numbering:
// Frames are stamped with a monotonic sequence from FrameClock.Next().
// Recorded effects carry the frame number, never wall-clock time.
//
// Batch atomicity boundary:
// Operations apply in submission order. The first failure aborts the batch
// and the remaining operations are discarded, not retried.
package engine
