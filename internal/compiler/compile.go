package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/animgraph/internal/ir"
)

// Program is a compiled document: one operation batch that builds the graph
// and the script to drive it.
type Program struct {
	Name       string
	Operations []ir.Operation
	Script     []Step
}

// Step is a compiled script step.
type Step struct {
	Sets   []Assignment
	Events []ir.InboundEvent
	Frames int
}

// Assignment sets a value node from the host side.
type Assignment struct {
	Node  ir.NodeID
	Value any
}

// Compile turns a document into a Program.
//
// Operations are ordered so that the batch applies cleanly: native props,
// node creation in declaration order, dependent edges, view connections,
// then event attachments. Configs are encoded as canonical JSON, so the same
// document always compiles to byte-identical operations.
//
// Compile does not validate references; run Validate first.
func Compile(doc *Document) (*Program, error) {
	prog := &Program{Name: doc.Name}
	ops := make([]ir.Operation, 0, 1+len(doc.Nodes)+len(doc.Edges)+len(doc.Views)+len(doc.Events))

	if len(doc.NativeProps) > 0 {
		ops = append(ops, ir.ConfigureNativeProps(doc.NativeProps...))
	}
	for i, n := range doc.Nodes {
		config, err := encodeConfig(n.Config)
		if err != nil {
			return nil, &CompileError{Field: fmt.Sprintf("nodes[%d].config", i), Message: err.Error()}
		}
		ops = append(ops, ir.CreateNode(n.ID, config))
	}
	for _, e := range doc.Edges {
		ops = append(ops, ir.ConnectNodes(e.Parent, e.Child))
	}
	for _, v := range doc.Views {
		ops = append(ops, ir.ConnectNodeToView(v.Node, v.View, v.Name))
	}
	for _, e := range doc.Events {
		ops = append(ops, ir.AttachEvent(e.View, e.Event, e.Node))
	}
	prog.Operations = ops

	for i, s := range doc.Script {
		step, err := compileStep(s)
		if err != nil {
			return nil, &CompileError{Field: fmt.Sprintf("script[%d]", i), Message: err.Error()}
		}
		prog.Script = append(prog.Script, step)
	}
	return prog, nil
}

func compileStep(s StepDecl) (Step, error) {
	step := Step{Frames: 1}
	if s.Frames != nil {
		step.Frames = *s.Frames
	}
	for _, set := range s.Set {
		v, err := normalize(set.Value)
		if err != nil {
			return Step{}, fmt.Errorf("set %d: %w", set.Node, err)
		}
		step.Sets = append(step.Sets, Assignment{Node: set.Node, Value: v})
	}
	for _, d := range s.Dispatch {
		data, err := normalize(d.Data)
		if err != nil {
			return Step{}, fmt.Errorf("dispatch %s: %w", d.Event, err)
		}
		step.Events = append(step.Events, ir.NewInboundEvent(d.View, d.Event, data))
	}
	return step, nil
}

// normalize round-trips v through JSON so numbers are float64 and maps are
// map[string]any, whatever decoder produced v.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeConfig(config map[string]any) (json.RawMessage, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	v, err := normalize(config)
	if err != nil {
		return nil, err
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}
