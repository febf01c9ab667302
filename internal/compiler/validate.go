package compiler

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/animgraph/internal/graph"
	"github.com/roach88/animgraph/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Node errors (E100-E109)
	ErrNoNodes         = "E100" // document declares no nodes
	ErrDuplicateNodeID = "E101" // two nodes share an id
	ErrMissingConfig   = "E102" // node has no config
	ErrInvalidConfig   = "E103" // config rejected by the node kind
	ErrUnknownNodeType = "E104" // config type is not a known kind

	// Reference errors (E110-E119)
	ErrUnknownNode     = "E110" // reference to an undeclared node
	ErrNotProps        = "E111" // view connected to a non-props node
	ErrNotEvent        = "E112" // event attached to a non-event node
	ErrDuplicateEvent  = "E113" // (view, event) attached twice
	ErrEventTargetKind = "E114" // event argument target is not a value node
	ErrClockTargetKind = "E115" // clock operation target is not a clock

	// Script errors (E120-E129)
	ErrUnboundEvent   = "E120" // script dispatches an event nothing is attached to
	ErrSetTargetKind  = "E121" // script assigns a non-value node
	ErrNegativeFrames = "E122" // step frame count below zero
)

// ValidationError represents one problem found in a document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a document for problems the engine would reject or
// silently ignore. It returns all errors found (does not fail-fast).
func Validate(doc *Document) []ValidationError {
	v := &validator{kinds: make(map[ir.NodeID]graph.Kind)}

	if len(doc.Nodes) == 0 {
		v.add("nodes", ErrNoNodes, "at least one node is required")
	}

	configs := make(map[ir.NodeID]graph.Config, len(doc.Nodes))
	for i, n := range doc.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if _, dup := v.kinds[n.ID]; dup {
			v.add(field+".id", ErrDuplicateNodeID, fmt.Sprintf("node %d declared twice", n.ID))
			continue
		}
		cfg, err := parseNodeConfig(n.Config)
		switch {
		case n.Config == nil:
			v.add(field+".config", ErrMissingConfig, "config is required")
			v.kinds[n.ID] = graph.KindUnknown
			continue
		case errors.Is(err, graph.ErrUnknownKind):
			v.add(field+".config.type", ErrUnknownNodeType, err.Error())
			v.kinds[n.ID] = graph.KindUnknown
			continue
		case err != nil:
			v.add(field+".config", ErrInvalidConfig, err.Error())
			v.kinds[n.ID] = graph.KindUnknown
			continue
		}
		v.kinds[n.ID] = cfg.Kind()
		configs[n.ID] = cfg
	}

	for i, n := range doc.Nodes {
		cfg, ok := configs[n.ID]
		if !ok {
			continue
		}
		v.checkConfigRefs(fmt.Sprintf("nodes[%d].config", i), cfg)
	}

	for i, e := range doc.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		v.ref(field+".parent", e.Parent)
		v.ref(field+".child", e.Child)
	}

	for i, view := range doc.Views {
		field := fmt.Sprintf("views[%d].node", i)
		if v.ref(field, view.Node) {
			v.kind(field, view.Node, graph.KindProps, ErrNotProps)
		}
	}

	bound := make(map[eventKey]bool)
	for i, e := range doc.Events {
		field := fmt.Sprintf("events[%d]", i)
		key := eventKey{view: e.View, event: e.Event}
		if bound[key] {
			v.add(field, ErrDuplicateEvent, fmt.Sprintf("view %d event %q attached twice", e.View, e.Event))
		}
		bound[key] = true
		if v.ref(field+".node", e.Node) {
			v.kind(field+".node", e.Node, graph.KindEvent, ErrNotEvent)
		}
	}

	for i, s := range doc.Script {
		field := fmt.Sprintf("script[%d]", i)
		if s.Frames != nil && *s.Frames < 0 {
			v.add(field+".frames", ErrNegativeFrames, fmt.Sprintf("frames must be >= 0, got %d", *s.Frames))
		}
		for j, set := range s.Set {
			f := fmt.Sprintf("%s.set[%d].node", field, j)
			if v.ref(f, set.Node) {
				v.kind(f, set.Node, graph.KindValue, ErrSetTargetKind)
			}
		}
		for j, d := range s.Dispatch {
			if !bound[eventKey{view: d.View, event: d.Event}] {
				v.add(fmt.Sprintf("%s.dispatch[%d]", field, j), ErrUnboundEvent,
					fmt.Sprintf("no event node attached to view %d event %q", d.View, d.Event))
			}
		}
	}

	return v.errs
}

type eventKey struct {
	view  ir.ViewTag
	event string
}

type validator struct {
	kinds map[ir.NodeID]graph.Kind
	errs  []ValidationError
}

func (v *validator) add(field, code, msg string) {
	v.errs = append(v.errs, ValidationError{Field: field, Message: msg, Code: code})
}

// ref reports whether id is declared, recording an error if not.
func (v *validator) ref(field string, id ir.NodeID) bool {
	if _, ok := v.kinds[id]; !ok {
		v.add(field, ErrUnknownNode, fmt.Sprintf("node %d is not declared", id))
		return false
	}
	return true
}

// kind checks a declared node's kind. Nodes whose config failed are skipped;
// they already have an error.
func (v *validator) kind(field string, id ir.NodeID, want graph.Kind, code string) {
	got := v.kinds[id]
	if got == graph.KindUnknown || got == want {
		return
	}
	v.add(field, code, fmt.Sprintf("node %d is %s, want %s", id, got, want))
}

func (v *validator) checkConfigRefs(field string, cfg graph.Config) {
	for _, id := range inputs(cfg) {
		v.ref(field, id)
	}
	switch c := cfg.(type) {
	case graph.EventConfig:
		for _, p := range c.ArgMapping {
			v.kind(field+".argMapping", p.Target, graph.KindValue, ErrEventTargetKind)
		}
	case graph.ClockOpConfig:
		v.kind(field+".clock", c.Clock, graph.KindClock, ErrClockTargetKind)
	case graph.SetConfig:
		v.kind(field+".what", c.What, graph.KindValue, ErrSetTargetKind)
	}
}

func parseNodeConfig(config map[string]any) (graph.Config, error) {
	if config == nil {
		return nil, nil
	}
	raw, err := encodeConfig(config)
	if err != nil {
		return nil, err
	}
	return graph.ParseConfig(json.RawMessage(raw))
}
