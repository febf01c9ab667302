package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/animgraph/internal/graph"
	"github.com/roach88/animgraph/internal/ir"
)

type eventKey struct {
	tag  ir.ViewTag
	name string
}

// EventRouter maps (view, event name) pairs to Event nodes and queues
// inbound events until the next frame.
type EventRouter struct {
	mapping map[eventKey]*graph.Node
	queue   []ir.InboundEvent
	wake    func()
	logger  *slog.Logger
	metrics *Metrics
}

// NewEventRouter creates a router. wake is called whenever an event is
// queued, to arm the next frame.
func NewEventRouter(wake func(), logger *slog.Logger, metrics *Metrics) *EventRouter {
	if wake == nil {
		wake = func() {}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventRouter{
		mapping: make(map[eventKey]*graph.Node),
		wake:    wake,
		logger:  logger,
		metrics: metrics,
	}
}

// Attach maps (tag, name) to node. The node must be an Event node and the key
// must be free.
func (r *EventRouter) Attach(tag ir.ViewTag, name string, node *graph.Node) error {
	if node.Kind() != graph.KindEvent {
		return graph.NewWrongKindError(node.ID(), graph.KindEvent, node.Kind())
	}
	key := eventKey{tag: tag, name: name}
	if existing, ok := r.mapping[key]; ok {
		return &graph.GraphError{
			Code:    graph.ErrCodeDuplicateEvent,
			Message: fmt.Sprintf("event handler already set for view %d event %q", tag, name),
			NodeID:  node.ID(),
			Details: map[string]string{"existing": fmt.Sprint(existing.ID())},
		}
	}
	r.mapping[key] = node
	return nil
}

// Detach removes the mapping for (tag, name). Absent keys are ignored.
func (r *EventRouter) Detach(tag ir.ViewTag, name string) {
	delete(r.mapping, eventKey{tag: tag, name: name})
}

// Mapped reports whether (tag, name) has an Event node.
func (r *EventRouter) Mapped(tag ir.ViewTag, name string) bool {
	_, ok := r.mapping[eventKey{tag: tag, name: name}]
	return ok
}

// Dispatch queues ev for the next frame if its key is mapped. Unmapped
// events are dropped and Dispatch returns false.
func (r *EventRouter) Dispatch(ev ir.InboundEvent) bool {
	if !r.Mapped(ev.ViewTag, ev.EventName) {
		r.metrics.eventDropped()
		r.logger.Debug("dropping unmapped event", "view_tag", ev.ViewTag, "event", ev.EventName)
		return false
	}
	r.queue = append(r.queue, ev)
	r.metrics.eventQueued()
	r.wake()
	return true
}

// Queued returns the number of events waiting for the next frame.
func (r *EventRouter) Queued() int { return len(r.queue) }

// Drain processes every queued event in arrival order and then discards the
// queue. The mapping is looked up again at drain time, so an event whose key
// was detached in between is skipped. A failing event does not stop the
// others; errors are joined.
func (r *EventRouter) Drain(env *graph.Env) (int, error) {
	queue := r.queue
	r.queue = nil

	var errs []error
	processed := 0
	for _, ev := range queue {
		node, ok := r.mapping[eventKey{tag: ev.ViewTag, name: ev.EventName}]
		if !ok {
			continue
		}
		if err := node.ProcessEvent(env, ev); err != nil {
			errs = append(errs, fmt.Errorf("event %q on view %d: %w", ev.EventName, ev.ViewTag, err))
			continue
		}
		processed++
	}
	return processed, errors.Join(errs...)
}
