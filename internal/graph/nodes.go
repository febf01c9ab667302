package graph

import (
	"strconv"

	"github.com/roach88/animgraph/internal/ir"
)

type valueNode struct {
	value any
}

type setNode struct {
	cfg SetConfig
}

func (s *setNode) evaluate(env *Env, n *Node) (any, error) {
	v, err := value(env, s.cfg.Value)
	if err != nil {
		return nil, err
	}
	what, err := env.Nodes.Node(s.cfg.What)
	if err != nil {
		return nil, err
	}
	if what.kind != KindValue {
		ge := NewWrongKindError(what.id, KindValue, what.kind)
		ge.Details["set_node"] = strconv.FormatInt(int64(n.id), 10)
		return nil, ge
	}
	if err := what.SetValue(env, v); err != nil {
		return nil, err
	}
	return v, nil
}

type blockNode struct {
	cfg BlockConfig
}

func (b *blockNode) evaluate(env *Env) (any, error) {
	var result any
	for _, id := range b.cfg.Block {
		v, err := value(env, id)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

type condNode struct {
	cfg CondConfig
}

// evaluate only ever evaluates the selected branch.
func (c *condNode) evaluate(env *Env) (any, error) {
	cond, err := value(env, c.cfg.Cond)
	if err != nil {
		return nil, err
	}
	if ir.Truthy(cond) {
		return value(env, c.cfg.IfBlock)
	}
	if c.cfg.ElseBlock != nil {
		return value(env, *c.cfg.ElseBlock)
	}
	return float64(0), nil
}

// animatedTransformKey is where the view layer expects transforms.
const animatedTransformKey = "animatedTransform"

type styleNode struct {
	cfg StyleConfig
}

func (s *styleNode) evaluate(env *Env) (any, error) {
	styles := make(map[string]any, len(s.cfg.Style))
	for _, prop := range ir.SortedKeys(s.cfg.Style) {
		v, err := value(env, s.cfg.Style[prop])
		if err != nil {
			return nil, err
		}
		styles[prop] = v
	}
	if t, ok := styles["transform"]; ok {
		styles[animatedTransformKey] = t
		delete(styles, "transform")
	}
	return styles, nil
}

type transformNode struct {
	cfg TransformConfig
}

func (t *transformNode) evaluate(env *Env) (any, error) {
	out := make([]any, 0, len(t.cfg.Transform))
	for _, entry := range t.cfg.Transform {
		v := entry.Value
		if entry.NodeID != nil {
			var err error
			if v, err = value(env, *entry.NodeID); err != nil {
				return nil, err
			}
		}
		out = append(out, map[string]any{entry.Property: v})
	}
	return out, nil
}

type callNode struct {
	cfg CallConfig
}

func (c *callNode) evaluate(env *Env, n *Node) (any, error) {
	args, err := values(env, c.cfg.Input)
	if err != nil {
		return nil, err
	}
	if err := env.Events.SendEvent(ir.EventCall, ir.Call{ID: n.id, Args: args}); err != nil {
		return nil, err
	}
	return float64(0), nil
}

type debugNode struct {
	cfg DebugConfig
}

func (d *debugNode) evaluate(env *Env, n *Node) (any, error) {
	v, err := value(env, d.cfg.Value)
	if err != nil {
		return nil, err
	}
	env.Logger.Info(d.cfg.Message, "node_id", n.id, "value", v)
	return v, nil
}
