package graph

import (
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/animgraph/internal/ir"
)

// Registry owns the nodes of one graph and its update context.
//
// It is not safe for concurrent use. All calls must come from the goroutine
// running the frame loop.
type Registry struct {
	nodes       map[ir.NodeID]*Node
	nativeProps map[string]struct{}
	env         *Env
	logger      *slog.Logger
}

// NewRegistry creates an empty registry bound to host.
func NewRegistry(host Host) *Registry {
	if host.Frames == nil {
		host.Frames = nopFrames{}
	}
	if host.Views == nil {
		host.Views = nopViews{}
	}
	if host.Events == nil {
		host.Events = nopEvents{}
	}
	if host.Logger == nil {
		host.Logger = slog.Default()
	}

	r := &Registry{
		nodes:       make(map[ir.NodeID]*Node),
		nativeProps: make(map[string]struct{}),
		logger:      host.Logger,
	}
	r.env = &Env{
		Update: NewUpdateContext(),
		Nodes:  r,
		Frames: host.Frames,
		Views:  host.Views,
		Events: host.Events,
		Logger: host.Logger,
	}
	return r
}

// Env returns the evaluation environment shared by all nodes.
func (r *Registry) Env() *Env { return r.env }

// Epoch returns the current epoch.
func (r *Registry) Epoch() int64 { return r.env.Update.Epoch }

// Len returns the number of registered nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// IDs returns the registered node ids in ascending order.
func (r *Registry) IDs() []ir.NodeID {
	return slices.Sorted(maps.Keys(r.nodes))
}

// Lookup returns the node with the given id.
func (r *Registry) Lookup(id ir.NodeID) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Node returns the node with the given id or a NODE_NOT_FOUND error.
func (r *Registry) Node(id ir.NodeID) (*Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, NewNotFoundError(id)
	}
	return n, nil
}

// CreateNode parses config and registers a node under id.
//
// An unknown node type is logged and ignored. Any other config problem is a
// fatal INVALID_CONFIG error. An existing node with the same id is replaced.
func (r *Registry) CreateNode(id ir.NodeID, config json.RawMessage) error {
	cfg, err := ParseConfig(config)
	if errors.Is(err, ErrUnknownKind) {
		r.logger.Warn("node type not supported", "node_id", id, "error", err)
		return nil
	}
	if err != nil {
		var ge *GraphError
		if errors.As(err, &ge) {
			ge.NodeID = id
		}
		return err
	}
	return r.CreateNodeFromConfig(id, cfg)
}

// CreateNodeFromConfig registers a node built from an already typed config.
func (r *Registry) CreateNodeFromConfig(id ir.NodeID, cfg Config) error {
	n := &Node{id: id, kind: cfg.Kind()}

	switch c := cfg.(type) {
	case ValueConfig:
		n.payload = &valueNode{value: c.Value}
	case SetConfig:
		n.payload = &setNode{cfg: c}
	case BlockConfig:
		n.payload = &blockNode{cfg: c}
	case OperatorConfig:
		if !IsOperator(c.Op) {
			r.logger.Error("operator not found", "node_id", id, "op", c.Op)
		}
		n.payload = newOperatorNode(c)
	case CondConfig:
		n.payload = &condNode{cfg: c}
	case StyleConfig:
		n.payload = &styleNode{cfg: c}
	case TransformConfig:
		n.payload = &transformNode{cfg: c}
	case PropsConfig:
		n.payload = &propsNode{cfg: c}
	case EventConfig:
		n.payload = &eventNode{cfg: c}
	case ClockConfig:
		n.payload = &clockNode{}
	case ClockOpConfig:
		n.payload = &clockOpNode{cfg: c}
	case CallConfig:
		n.payload = &callNode{cfg: c}
	case DebugConfig:
		n.payload = &debugNode{cfg: c}
	case BezierConfig:
		n.payload = newBezierNode(c)
	default:
		return &GraphError{
			Code:    ErrCodeInvalidConfig,
			Message: "unsupported config type",
			NodeID:  id,
		}
	}

	if _, exists := r.nodes[id]; exists {
		r.logger.Warn("replacing existing node", "node_id", id, "kind", n.kind.String())
	}
	r.nodes[id] = n
	r.logger.Debug("node created", "node_id", id, "kind", n.kind.String())
	return nil
}

// DropNode removes a node. Dependent edges pointing at it are left in place
// and skipped by propagation. Dropping an unknown id is a no-op.
func (r *Registry) DropNode(id ir.NodeID) {
	delete(r.nodes, id)
}

// ConnectNodes makes parent a dependent of child and reschedules parent.
func (r *Registry) ConnectNodes(parentID, childID ir.NodeID) error {
	parent, err := r.Node(parentID)
	if err != nil {
		return err
	}
	child, err := r.Node(childID)
	if err != nil {
		return err
	}
	return child.AddChild(r.env, parent)
}

// DisconnectNodes removes the dependent edge added by ConnectNodes.
func (r *Registry) DisconnectNodes(parentID, childID ir.NodeID) error {
	if _, err := r.Node(parentID); err != nil {
		return err
	}
	child, err := r.Node(childID)
	if err != nil {
		return err
	}
	child.RemoveChild(parentID)
	return nil
}

// ConnectNodeToView binds a Props node to a view and schedules it for
// re-evaluation. Other kinds are ignored.
func (r *Registry) ConnectNodeToView(id ir.NodeID, tag ir.ViewTag, viewName string) error {
	n, err := r.Node(id)
	if err != nil {
		return err
	}
	p, ok := n.payload.(*propsNode)
	if !ok {
		r.logger.Debug("ignoring view connection of non-props node", "node_id", id, "kind", n.kind.String())
		return nil
	}
	p.connect(tag, viewName)
	return n.DangerouslyRescheduleEvaluate(r.env)
}

// DisconnectNodeFromView unbinds a Props node. Other kinds are ignored.
func (r *Registry) DisconnectNodeFromView(id ir.NodeID, tag ir.ViewTag) error {
	n, err := r.Node(id)
	if err != nil {
		return err
	}
	if p, ok := n.payload.(*propsNode); ok {
		p.disconnect()
	}
	return nil
}

// ConfigureNativeProps replaces the allow-list of host-native properties.
func (r *Registry) ConfigureNativeProps(names []string) {
	r.nativeProps = make(map[string]struct{}, len(names))
	for _, name := range names {
		r.nativeProps[name] = struct{}{}
	}
}

// IsNativeProp reports whether name is on the native allow-list.
func (r *Registry) IsNativeProp(name string) bool {
	_, ok := r.nativeProps[name]
	return ok
}

// SetValue assigns a Value node.
func (r *Registry) SetValue(id ir.NodeID, v any) error {
	n, err := r.Node(id)
	if err != nil {
		return err
	}
	return n.SetValue(r.env, v)
}

// Value returns the memoized value of a node in the current epoch.
func (r *Registry) Value(id ir.NodeID) (any, error) {
	return value(r.env, id)
}

// RunPropUpdates runs one propagation pass over this registry.
func (r *Registry) RunPropUpdates() (PassStats, error) {
	return RunPropUpdates(r.env)
}
