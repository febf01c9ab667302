package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/animgraph/internal/graph"
	"github.com/roach88/animgraph/internal/ir"
)

// FrameReport describes one processed frame.
type FrameReport struct {
	Seq       int64
	Timestamp time.Duration
	Events    int // events delivered to Event nodes
	Callbacks int // animation callbacks run
	Pass      graph.PassStats
	EventErr  error
	PassErr   error
}

// Record converts the report to its trace form.
func (r FrameReport) Record() ir.FrameRecord {
	rec := ir.FrameRecord{
		Seq:         r.Seq,
		TimestampMS: float64(r.Timestamp) / float64(time.Millisecond),
		Epoch:       r.Pass.Epoch,
		Events:      r.Events,
		Callbacks:   r.Callbacks,
		Visited:     r.Pass.Visited,
		Sinks:       r.Pass.Sinks,
	}
	if err := errors.Join(r.EventErr, r.PassErr); err != nil {
		rec.Error = err.Error()
	}
	return rec
}

// EffectKind names the outbound channel of an effect.
type EffectKind string

const (
	// EffectView is a synchronous view mutation.
	EffectView EffectKind = "view"
	// EffectEvent is an event sent on the host's generic channel.
	EffectEvent EffectKind = "event"
)

// Effect is one outbound side effect, stamped with the frame it happened in
// (0 outside of any frame).
type Effect struct {
	Frame     int64
	Kind      EffectKind
	ViewTag   ir.ViewTag
	ViewName  string
	EventName string
	Payload   any
}

// Record converts the effect to its trace form with emission number seq.
// The payload is encoded as canonical JSON.
func (e Effect) Record(seq int64) (ir.EffectRecord, error) {
	payload, err := ir.MarshalCanonical(e.Payload)
	if err != nil {
		return ir.EffectRecord{}, fmt.Errorf("effect %d: %w", seq, err)
	}
	return ir.EffectRecord{
		Seq:       seq,
		Frame:     e.Frame,
		Kind:      string(e.Kind),
		ViewTag:   e.ViewTag,
		ViewName:  e.ViewName,
		EventName: e.EventName,
		Payload:   string(payload),
	}, nil
}

// Observer is notified of every frame and every outbound effect. Calls come
// from the engine goroutine.
type Observer interface {
	ObserveFrame(FrameReport)
	ObserveEffect(Effect)
}

// EffectLog is an in-memory Observer.
//
// Thread-safety: EffectLog is safe for concurrent use via internal mutex.
type EffectLog struct {
	mu      sync.Mutex
	frames  []FrameReport
	effects []Effect
}

// NewEffectLog creates an empty log.
func NewEffectLog() *EffectLog {
	return &EffectLog{}
}

// ObserveFrame implements Observer.
func (l *EffectLog) ObserveFrame(r FrameReport) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames = append(l.frames, r)
}

// ObserveEffect implements Observer.
func (l *EffectLog) ObserveEffect(e Effect) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.effects = append(l.effects, e)
}

// Frames returns the recorded frame reports.
func (l *EffectLog) Frames() []FrameReport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]FrameReport(nil), l.frames...)
}

// Effects returns the recorded effects.
func (l *EffectLog) Effects() []Effect {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Effect(nil), l.effects...)
}

// hostTap sits between the graph and the host outputs. It forwards every
// effect and reports it to the observers.
type hostTap struct {
	views     graph.ViewUpdater
	events    graph.EventEmitter
	frame     *FrameClock
	observers []Observer
	metrics   *Metrics
}

func (h *hostTap) SynchronouslyUpdateView(tag ir.ViewTag, name string, props map[string]any) error {
	if err := h.views.SynchronouslyUpdateView(tag, name, props); err != nil {
		return err
	}
	h.metrics.effect(string(EffectView))
	h.notify(Effect{Frame: h.frame.Current(), Kind: EffectView, ViewTag: tag, ViewName: name, Payload: props})
	return nil
}

func (h *hostTap) SendEvent(name string, body any) error {
	if err := h.events.SendEvent(name, body); err != nil {
		return err
	}
	h.metrics.effect(string(EffectEvent))
	effect := Effect{Frame: h.frame.Current(), Kind: EffectEvent, EventName: name, Payload: body}
	if pc, ok := body.(ir.PropsChange); ok {
		effect.ViewTag = pc.ViewTag
	}
	h.notify(effect)
	return nil
}

func (h *hostTap) notify(e Effect) {
	for _, o := range h.observers {
		o.ObserveEffect(e)
	}
}
