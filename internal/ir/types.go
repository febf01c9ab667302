package ir

// NodeID identifies a node in the graph. Ids are assigned by the host and
// stay stable for the lifetime of the node.
type NodeID int64

// ViewTag identifies an externally owned view.
type ViewTag int64

// Host channel names for outbound events.
const (
	// EventPropsChange carries non-native props for a connected view.
	EventPropsChange = "onAnimatedPropsChange"

	// EventCall carries the arguments of a call node evaluation.
	EventCall = "onAnimatedCall"
)

// EventDataArg is the position of the event payload inside InboundEvent.Args.
// Hosts deliver arguments as [viewTag, eventName, data].
const EventDataArg = 2

// InboundEvent is a view event delivered by the host. It is queued until the
// next frame and discarded after dispatch.
type InboundEvent struct {
	ViewTag   ViewTag `json:"view_tag" yaml:"view_tag"`
	EventName string  `json:"event_name" yaml:"event_name"`
	Args      []any   `json:"args" yaml:"args"`
}

// NewInboundEvent builds an event using the host argument convention.
func NewInboundEvent(tag ViewTag, name string, data any) InboundEvent {
	return InboundEvent{
		ViewTag:   tag,
		EventName: name,
		Args:      []any{float64(tag), name, data},
	}
}

// Data returns the event payload, or nil when the host sent no payload.
func (e InboundEvent) Data() any {
	if len(e.Args) <= EventDataArg {
		return nil
	}
	return e.Args[EventDataArg]
}

// PropsChange is the body of an EventPropsChange event.
type PropsChange struct {
	ViewTag ViewTag        `json:"viewTag"`
	Props   map[string]any `json:"props"`
}

// Call is the body of an EventCall event.
type Call struct {
	ID   NodeID `json:"id"`
	Args []any  `json:"args"`
}
