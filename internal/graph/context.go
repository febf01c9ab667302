package graph

import (
	"log/slog"
	"time"

	"github.com/roach88/animgraph/internal/ir"
)

// UpdateContext is the evaluation state shared by every node of a registry.
//
// Epoch starts at 1 and advances by exactly one per completed propagation
// pass. Dirty holds the nodes marked updated since the last pass, in marking
// order; duplicates are allowed.
type UpdateContext struct {
	Epoch int64
	Dirty []ir.NodeID
}

// NewUpdateContext returns a context at epoch 1 with nothing dirty.
func NewUpdateContext() *UpdateContext {
	return &UpdateContext{Epoch: 1}
}

// FrameScheduler is the part of the frame loop nodes talk to.
type FrameScheduler interface {
	// PostOnAnimation runs cb once on the next frame.
	PostOnAnimation(cb func())

	// PostRunUpdatesAfterAnimation requests a propagation pass on the next frame.
	PostRunUpdatesAfterAnimation()

	// FrameTime is the timestamp of the frame being processed.
	FrameTime() time.Duration
}

// ViewUpdater synchronously mutates native properties of a live view.
type ViewUpdater interface {
	SynchronouslyUpdateView(tag ir.ViewTag, viewName string, props map[string]any) error
}

// EventEmitter delivers structured events to the host's generic channel.
type EventEmitter interface {
	SendEvent(name string, body any) error
}

// Host bundles the external collaborators of a registry. Nil members are
// replaced by no-op implementations.
type Host struct {
	Frames FrameScheduler
	Views  ViewUpdater
	Events EventEmitter
	Logger *slog.Logger
}

// Env is passed explicitly to every evaluation and propagation call.
type Env struct {
	Update *UpdateContext
	Nodes  *Registry
	Frames FrameScheduler
	Views  ViewUpdater
	Events EventEmitter
	Logger *slog.Logger
}

func (env *Env) check(id ir.NodeID) error {
	if env == nil || env.Update == nil || env.Nodes == nil {
		return &GraphError{
			Code:    ErrCodeNoUpdateContext,
			Message: "node has no update context",
			NodeID:  id,
		}
	}
	return nil
}

type nopFrames struct{}

func (nopFrames) PostOnAnimation(func())        {}
func (nopFrames) PostRunUpdatesAfterAnimation() {}
func (nopFrames) FrameTime() time.Duration      { return 0 }

type nopViews struct{}

func (nopViews) SynchronouslyUpdateView(ir.ViewTag, string, map[string]any) error { return nil }

type nopEvents struct{}

func (nopEvents) SendEvent(string, any) error { return nil }
