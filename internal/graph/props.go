package graph

import (
	"fmt"

	"github.com/roach88/animgraph/internal/ir"
)

// propsNode is the propagation sink that pushes values to a view.
type propsNode struct {
	cfg       PropsConfig
	connected bool
	viewTag   ir.ViewTag
	viewName  string
}

func (p *propsNode) connect(tag ir.ViewTag, name string) {
	p.connected, p.viewTag, p.viewName = true, tag, name
}

func (p *propsNode) disconnect() {
	p.connected, p.viewTag, p.viewName = false, 0, ""
}

// View returns the view a Props node is connected to.
func (n *Node) View() (tag ir.ViewTag, name string, ok bool) {
	p, isProps := n.payload.(*propsNode)
	if !isProps || !p.connected {
		return 0, "", false
	}
	return p.viewTag, p.viewName, true
}

// evaluate partitions the configured props by the native allow-list and
// emits both buckets to the connected view. Style inputs are flattened into
// their individual properties.
func (p *propsNode) evaluate(env *Env) (any, error) {
	native := make(map[string]any)
	js := make(map[string]any)
	add := func(key string, v any) {
		if env.Nodes.IsNativeProp(key) {
			native[key] = v
		} else {
			js[key] = v
		}
	}

	for _, prop := range ir.SortedKeys(p.cfg.Props) {
		input, err := env.Nodes.Node(p.cfg.Props[prop])
		if err != nil {
			return nil, err
		}
		v, err := input.Value(env)
		if err != nil {
			return nil, err
		}
		if input.kind == KindStyle {
			style, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("style node %d produced %T", input.id, v)
			}
			for _, key := range ir.SortedKeys(style) {
				add(key, style[key])
			}
			continue
		}
		add(prop, v)
	}

	if !p.connected {
		return float64(0), nil
	}
	if len(native) > 0 {
		if err := env.Views.SynchronouslyUpdateView(p.viewTag, p.viewName, native); err != nil {
			return nil, fmt.Errorf("update view %d: %w", p.viewTag, err)
		}
	}
	if len(js) > 0 {
		body := ir.PropsChange{ViewTag: p.viewTag, Props: js}
		if err := env.Events.SendEvent(ir.EventPropsChange, body); err != nil {
			return nil, fmt.Errorf("send props change for view %d: %w", p.viewTag, err)
		}
	}
	return float64(0), nil
}

// update is the sink behavior run by propagation. A disconnected node skips
// its update; the view may have gone away after the node was scheduled.
func (p *propsNode) update(env *Env, n *Node) error {
	if !p.connected {
		env.Logger.Debug("skipping update of disconnected props node", "node_id", n.id)
		return nil
	}
	_, err := n.Value(env)
	return err
}
