package testutil

import (
	"maps"
	"sync"

	"github.com/roach88/animgraph/internal/ir"
)

// ViewUpdate is one recorded synchronous view mutation.
type ViewUpdate struct {
	Tag   ir.ViewTag
	Name  string
	Props map[string]any
}

// SentEvent is one recorded outbound host event.
type SentEvent struct {
	Name string
	Body any
}

// RecordingHost captures outbound side effects in call order.
//
// It satisfies both the view-mutation and the event-emission interfaces, so
// one value can be passed as both.
type RecordingHost struct {
	mu     sync.Mutex
	views  []ViewUpdate
	events []SentEvent
}

// NewRecordingHost creates an empty recorder.
func NewRecordingHost() *RecordingHost {
	return &RecordingHost{}
}

// SynchronouslyUpdateView records a view mutation. Props are copied.
func (h *RecordingHost) SynchronouslyUpdateView(tag ir.ViewTag, name string, props map[string]any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.views = append(h.views, ViewUpdate{Tag: tag, Name: name, Props: maps.Clone(props)})
	return nil
}

// SendEvent records a host event.
func (h *RecordingHost) SendEvent(name string, body any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, SentEvent{Name: name, Body: body})
	return nil
}

// Views returns the recorded view mutations.
func (h *RecordingHost) Views() []ViewUpdate {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ViewUpdate(nil), h.views...)
}

// Events returns the recorded host events.
func (h *RecordingHost) Events() []SentEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]SentEvent(nil), h.events...)
}

// EventsNamed returns the bodies of recorded events with the given name.
func (h *RecordingHost) EventsNamed(name string) []any {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []any
	for _, ev := range h.events {
		if ev.Name == name {
			out = append(out, ev.Body)
		}
	}
	return out
}

// Reset forgets everything recorded so far.
func (h *RecordingHost) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.views = nil
	h.events = nil
}
