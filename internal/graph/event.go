package graph

import (
	"fmt"
	"strconv"

	"github.com/roach88/animgraph/internal/ir"
)

type eventNode struct {
	cfg EventConfig
}

// ProcessEvent writes the event payload into the Value nodes named by the
// argument mapping of an Event node. Paths are applied in order; the first
// failing path aborts the rest.
func (n *Node) ProcessEvent(env *Env, ev ir.InboundEvent) error {
	en, ok := n.payload.(*eventNode)
	if !ok {
		return NewWrongKindError(n.id, KindEvent, n.kind)
	}
	if err := env.check(n.id); err != nil {
		return err
	}

	for _, path := range en.cfg.ArgMapping {
		v, err := walkPath(ev.Data(), path.Steps)
		if err != nil {
			return &GraphError{
				Code:    ErrCodeEventPath,
				Message: err.Error(),
				NodeID:  n.id,
				Details: map[string]string{"event": ev.EventName},
			}
		}
		target, err := env.Nodes.Node(path.Target)
		if err != nil {
			return err
		}
		if target.kind != KindValue {
			return NewWrongKindError(target.id, KindValue, target.kind)
		}
		if err := target.SetValue(env, v); err != nil {
			return err
		}
	}
	return nil
}

func walkPath(v any, steps []PathStep) (any, error) {
	for i, step := range steps {
		next, ok := lookupStep(v, step)
		if !ok {
			return nil, fmt.Errorf("event path step %d (%s) not found in %T", i, step, v)
		}
		v = next
	}
	return v, nil
}

func lookupStep(v any, step PathStep) (any, bool) {
	switch x := v.(type) {
	case map[string]any:
		key := step.Key
		if step.IsIndex {
			key = strconv.Itoa(step.Index)
		}
		next, ok := x[key]
		return next, ok
	case []any:
		idx := step.Index
		if !step.IsIndex {
			var err error
			if idx, err = strconv.Atoi(step.Key); err != nil {
				return nil, false
			}
		}
		if idx < 0 || idx >= len(x) {
			return nil, false
		}
		return x[idx], true
	}
	return nil, false
}
