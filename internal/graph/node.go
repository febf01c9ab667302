package graph

import (
	"slices"

	"github.com/roach88/animgraph/internal/ir"
)

// Node is one vertex of the evaluation graph.
//
// Its value is memoized per epoch: Value recomputes only when the node was
// last evaluated in an earlier epoch than the current one. Children holds the
// node's dependents (nodes to notify when this one changes), not its inputs.
// Inputs are looked up by id from the config on every evaluation.
//
// The per-kind state lives in payload; evaluation dispatches on its type.
type Node struct {
	id        ir.NodeID
	kind      Kind
	payload   any
	memo      any
	memoErr   error
	lastEpoch int64
	children  []ir.NodeID
}

// ID returns the host-assigned node id.
func (n *Node) ID() ir.NodeID { return n.id }

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// LastEpoch returns the epoch the memoized value was computed in.
func (n *Node) LastEpoch() int64 { return n.lastEpoch }

// Children returns a copy of the dependent ids in insertion order.
func (n *Node) Children() []ir.NodeID { return slices.Clone(n.children) }

// Value returns the memoized value, evaluating at most once per epoch.
func (n *Node) Value(env *Env) (any, error) {
	if err := env.check(n.id); err != nil {
		return nil, err
	}
	if n.lastEpoch < env.Update.Epoch {
		n.lastEpoch = env.Update.Epoch
		n.memo, n.memoErr = n.evaluate(env)
	}
	return n.memo, n.memoErr
}

// MarkUpdated appends the node to the dirty list and requests a propagation
// pass on the next frame.
func (n *Node) MarkUpdated(env *Env) error {
	if err := env.check(n.id); err != nil {
		return err
	}
	env.Update.Dirty = append(env.Update.Dirty, n.id)
	env.Frames.PostRunUpdatesAfterAnimation()
	return nil
}

// DangerouslyRescheduleEvaluate forces the next Value call to recompute
// regardless of epoch and marks the node updated.
func (n *Node) DangerouslyRescheduleEvaluate(env *Env) error {
	n.lastEpoch = 0
	return n.MarkUpdated(env)
}

// ForceUpdateMemoizedValue writes the memoized value directly, bypassing
// evaluation, and marks the node updated.
func (n *Node) ForceUpdateMemoizedValue(env *Env, v any) error {
	n.memo, n.memoErr = v, nil
	return n.MarkUpdated(env)
}

// AddChild registers dependent and reschedules it: a new edge can change what
// the dependent computes next.
func (n *Node) AddChild(env *Env, dependent *Node) error {
	if !slices.Contains(n.children, dependent.id) {
		n.children = append(n.children, dependent.id)
	}
	return dependent.DangerouslyRescheduleEvaluate(env)
}

// RemoveChild deregisters dependent without rescheduling anything.
func (n *Node) RemoveChild(dependent ir.NodeID) {
	n.children = slices.DeleteFunc(n.children, func(id ir.NodeID) bool { return id == dependent })
}

// SetValue assigns the held value of a Value node.
func (n *Node) SetValue(env *Env, v any) error {
	vn, ok := n.payload.(*valueNode)
	if !ok {
		return NewWrongKindError(n.id, KindValue, n.kind)
	}
	vn.value = v
	return n.ForceUpdateMemoizedValue(env, v)
}

// evaluate computes the node's value from its inputs.
func (n *Node) evaluate(env *Env) (any, error) {
	switch p := n.payload.(type) {
	case *valueNode:
		return p.value, nil
	case *setNode:
		return p.evaluate(env, n)
	case *blockNode:
		return p.evaluate(env)
	case *operatorNode:
		return p.evaluate(env)
	case *condNode:
		return p.evaluate(env)
	case *styleNode:
		return p.evaluate(env)
	case *transformNode:
		return p.evaluate(env)
	case *propsNode:
		return p.evaluate(env)
	case *clockNode:
		return p.evaluate(env)
	case *clockOpNode:
		return p.evaluate(env)
	case *callNode:
		return p.evaluate(env, n)
	case *debugNode:
		return p.evaluate(env, n)
	case *bezierNode:
		return p.evaluate(env)
	}
	// Event nodes are driven by inbound events only.
	return float64(0), nil
}

// value looks up id and returns its memoized value.
func value(env *Env, id ir.NodeID) (any, error) {
	n, err := env.Nodes.Node(id)
	if err != nil {
		return nil, err
	}
	return n.Value(env)
}

// values evaluates ids in order, stopping at the first error.
func values(env *Env, ids []ir.NodeID) ([]any, error) {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		v, err := value(env, id)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
