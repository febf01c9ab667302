package engine

import (
	"log/slog"
	"time"

	"github.com/roach88/animgraph/internal/graph"
)

// FrameScheduler runs the per-frame work of the engine.
//
// It is dormant until something asks for a frame: an animation callback, a
// propagation request or a queued event. Then it requests exactly one frame
// from its source; requests made while a frame is already armed coalesce.
//
// Per frame, in order:
//  1. drain queued events into their Event nodes
//  2. snapshot and clear the animation callbacks, then run them; callbacks
//     posted meanwhile wait for the next frame
//  3. run one propagation pass
//  4. re-arm only if callbacks were posted during the frame
//
// FrameScheduler implements graph.FrameScheduler.
type FrameScheduler struct {
	source         FrameSource
	router         *EventRouter
	registry       *graph.Registry
	clock          *FrameClock
	ticking        bool
	wantRunUpdates bool
	callbacks      []func()
	now            time.Duration
	observers      []Observer
	metrics        *Metrics
	logger         *slog.Logger
}

func newFrameScheduler(source FrameSource, clock *FrameClock, logger *slog.Logger, metrics *Metrics) *FrameScheduler {
	return &FrameScheduler{
		source:  source,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// PostOnAnimation runs cb once on the next frame.
func (s *FrameScheduler) PostOnAnimation(cb func()) {
	s.callbacks = append(s.callbacks, cb)
	s.arm()
}

// PostRunUpdatesAfterAnimation requests a propagation pass on the next frame.
func (s *FrameScheduler) PostRunUpdatesAfterAnimation() {
	s.wantRunUpdates = true
	s.arm()
}

// FrameTime returns the timestamp of the current (or last) frame.
func (s *FrameScheduler) FrameTime() time.Duration {
	return s.now
}

// Armed reports whether a frame has been requested and not yet run.
func (s *FrameScheduler) Armed() bool {
	return s.ticking
}

// WantsUpdates reports whether a propagation pass has been requested.
func (s *FrameScheduler) WantsUpdates() bool {
	return s.wantRunUpdates
}

func (s *FrameScheduler) arm() {
	if s.ticking {
		return
	}
	s.ticking = true
	s.source.RequestFrame(s.onAnimationFrame)
}

func (s *FrameScheduler) onAnimationFrame(ts time.Duration) {
	start := time.Now()
	s.now = ts
	report := FrameReport{Seq: s.clock.Next(), Timestamp: ts}
	env := s.registry.Env()

	report.Events, report.EventErr = s.router.Drain(env)
	if report.EventErr != nil {
		s.logger.Error("event dispatch failed", "frame", report.Seq, "error", report.EventErr)
	}

	callbacks := s.callbacks
	s.callbacks = nil
	for _, cb := range callbacks {
		cb()
	}
	report.Callbacks = len(callbacks)

	report.Pass, report.PassErr = s.registry.RunPropUpdates()
	if report.PassErr != nil {
		s.logger.Error("propagation failed", "frame", report.Seq, "epoch", report.Pass.Epoch, "error", report.PassErr)
	}
	s.wantRunUpdates = false

	s.ticking = false
	if len(s.callbacks) > 0 {
		s.arm()
	}

	s.logger.Debug("frame",
		"frame", report.Seq,
		"epoch", report.Pass.Epoch,
		"events", report.Events,
		"callbacks", report.Callbacks,
		"visited", report.Pass.Visited,
	)
	s.metrics.observeFrame(report, time.Since(start).Seconds())
	for _, o := range s.observers {
		o.ObserveFrame(report)
	}
}
