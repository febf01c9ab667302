package compiler

import (
	"maps"
	"slices"

	"github.com/roach88/animgraph/internal/graph"
	"github.com/roach88/animgraph/internal/ir"
)

// inputs returns the node ids a config reads from, in config order. Event
// targets count as inputs of the event node: the event writes into them.
func inputs(cfg graph.Config) []ir.NodeID {
	switch c := cfg.(type) {
	case graph.SetConfig:
		return []ir.NodeID{c.What, c.Value}
	case graph.BlockConfig:
		return c.Block
	case graph.OperatorConfig:
		return c.Input
	case graph.CondConfig:
		ids := []ir.NodeID{c.Cond, c.IfBlock}
		if c.ElseBlock != nil {
			ids = append(ids, *c.ElseBlock)
		}
		return ids
	case graph.StyleConfig:
		return mapInputs(c.Style)
	case graph.TransformConfig:
		var ids []ir.NodeID
		for _, e := range c.Transform {
			if e.NodeID != nil {
				ids = append(ids, *e.NodeID)
			}
		}
		return ids
	case graph.PropsConfig:
		return mapInputs(c.Props)
	case graph.EventConfig:
		ids := make([]ir.NodeID, 0, len(c.ArgMapping))
		for _, p := range c.ArgMapping {
			ids = append(ids, p.Target)
		}
		return ids
	case graph.ClockOpConfig:
		return []ir.NodeID{c.Clock}
	case graph.CallConfig:
		return c.Input
	case graph.DebugConfig:
		return []ir.NodeID{c.Value}
	case graph.BezierConfig:
		return []ir.NodeID{c.Input}
	}
	return nil
}

func mapInputs(m map[string]ir.NodeID) []ir.NodeID {
	ids := make([]ir.NodeID, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		ids = append(ids, m[k])
	}
	return ids
}
