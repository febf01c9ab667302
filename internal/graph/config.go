package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/animgraph/internal/ir"
)

// Config is the validated, typed configuration of one node kind.
type Config interface {
	Kind() Kind
}

// ValueConfig configures a Value node. Value is the initial held value.
type ValueConfig struct {
	Value any `json:"value"`
}

// SetConfig assigns the value of node Value into the Value node What.
type SetConfig struct {
	What  ir.NodeID `json:"what"`
	Value ir.NodeID `json:"value"`
}

// BlockConfig evaluates Block in order and yields the last result.
type BlockConfig struct {
	Block []ir.NodeID `json:"block"`
}

// OperatorConfig selects a named operator applied to Input.
type OperatorConfig struct {
	Op    string      `json:"op"`
	Input []ir.NodeID `json:"input"`
}

// CondConfig is a ternary. ElseBlock is optional.
type CondConfig struct {
	Cond      ir.NodeID  `json:"cond"`
	IfBlock   ir.NodeID  `json:"ifBlock"`
	ElseBlock *ir.NodeID `json:"elseBlock,omitempty"`
}

// StyleConfig maps style property names to input nodes.
type StyleConfig struct {
	Style map[string]ir.NodeID `json:"style"`
}

// TransformEntry is one step of a transform list. Exactly one of NodeID and
// Value is set.
type TransformEntry struct {
	Property string     `json:"property"`
	NodeID   *ir.NodeID `json:"nodeID,omitempty"`
	Value    any        `json:"value,omitempty"`
}

// TransformConfig is an ordered transform list.
type TransformConfig struct {
	Transform []TransformEntry `json:"transform"`
}

// PropsConfig maps view property names to input nodes.
type PropsConfig struct {
	Props map[string]ir.NodeID `json:"props"`
}

// EventConfig holds the argument mapping of an Event node.
type EventConfig struct {
	ArgMapping []EventPath `json:"argMapping"`
}

// ClockConfig configures a Clock node. It has no fields.
type ClockConfig struct{}

// ClockOpConfig configures clockStart, clockStop and clockTest nodes.
type ClockOpConfig struct {
	Op    Kind      `json:"-"`
	Clock ir.NodeID `json:"clock"`
}

// CallConfig configures a call node emitting Input values to the host.
type CallConfig struct {
	Input []ir.NodeID `json:"input"`
}

// DebugConfig logs Message with the value of node Value.
type DebugConfig struct {
	Message string    `json:"message"`
	Value   ir.NodeID `json:"value"`
}

// BezierConfig is a cubic easing curve with control points (X1,Y1) and
// (X2,Y2) applied to Input.
type BezierConfig struct {
	Input ir.NodeID `json:"input"`
	X1    float64   `json:"mX1"`
	Y1    float64   `json:"mY1"`
	X2    float64   `json:"mX2"`
	Y2    float64   `json:"mY2"`
}

func (ValueConfig) Kind() Kind     { return KindValue }
func (SetConfig) Kind() Kind       { return KindSet }
func (BlockConfig) Kind() Kind     { return KindBlock }
func (OperatorConfig) Kind() Kind  { return KindOperator }
func (CondConfig) Kind() Kind      { return KindCond }
func (StyleConfig) Kind() Kind     { return KindStyle }
func (TransformConfig) Kind() Kind { return KindTransform }
func (PropsConfig) Kind() Kind     { return KindProps }
func (EventConfig) Kind() Kind     { return KindEvent }
func (ClockConfig) Kind() Kind     { return KindClock }
func (c ClockOpConfig) Kind() Kind { return c.Op }
func (CallConfig) Kind() Kind      { return KindCall }
func (DebugConfig) Kind() Kind     { return KindDebug }
func (BezierConfig) Kind() Kind    { return KindBezier }

// configSchema lists the keys a kind requires and how to allocate its config.
type configSchema struct {
	required []string
	alloc    func() Config
}

var configSchemas = map[Kind]configSchema{
	KindValue:      {alloc: func() Config { return &ValueConfig{} }},
	KindSet:        {required: []string{"what", "value"}, alloc: func() Config { return &SetConfig{} }},
	KindBlock:      {required: []string{"block"}, alloc: func() Config { return &BlockConfig{} }},
	KindOperator:   {required: []string{"op", "input"}, alloc: func() Config { return &OperatorConfig{} }},
	KindCond:       {required: []string{"cond", "ifBlock"}, alloc: func() Config { return &CondConfig{} }},
	KindStyle:      {required: []string{"style"}, alloc: func() Config { return &StyleConfig{} }},
	KindTransform:  {required: []string{"transform"}, alloc: func() Config { return &TransformConfig{} }},
	KindProps:      {required: []string{"props"}, alloc: func() Config { return &PropsConfig{} }},
	KindEvent:      {required: []string{"argMapping"}, alloc: func() Config { return &EventConfig{} }},
	KindClock:      {alloc: func() Config { return &ClockConfig{} }},
	KindClockStart: {required: []string{"clock"}, alloc: func() Config { return &ClockOpConfig{Op: KindClockStart} }},
	KindClockStop:  {required: []string{"clock"}, alloc: func() Config { return &ClockOpConfig{Op: KindClockStop} }},
	KindClockTest:  {required: []string{"clock"}, alloc: func() Config { return &ClockOpConfig{Op: KindClockTest} }},
	KindCall:       {required: []string{"input"}, alloc: func() Config { return &CallConfig{} }},
	KindDebug:      {required: []string{"value"}, alloc: func() Config { return &DebugConfig{} }},
	KindBezier:     {required: []string{"input", "mX1", "mY1", "mX2", "mY2"}, alloc: func() Config { return &BezierConfig{} }},
}

// ParseConfig decodes a JSON node config. The "type" key selects the kind.
// Unknown keys and missing required keys are rejected. An unrecognized type
// yields an error wrapping ErrUnknownKind.
func ParseConfig(data []byte) (Config, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, newConfigError("decode config: %v", err)
	}

	rawType, ok := fields["type"]
	if !ok {
		return nil, newConfigError("config has no type")
	}
	var tag string
	if err := json.Unmarshal(rawType, &tag); err != nil {
		return nil, newConfigError("config type must be a string")
	}
	kind, ok := ParseKind(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, tag)
	}

	schema := configSchemas[kind]
	for _, key := range schema.required {
		if _, ok := fields[key]; !ok {
			return nil, newConfigError("%s config missing required field %q", kind, key)
		}
	}

	delete(fields, "type")
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, newConfigError("re-encode config: %v", err)
	}

	cfg := schema.alloc()
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, newConfigError("%s config: %v", kind, err)
	}

	if v, ok := cfg.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}
	return deref(cfg), nil
}

// deref returns configs by value so callers can switch on concrete types.
func deref(cfg Config) Config {
	switch c := cfg.(type) {
	case *ValueConfig:
		return *c
	case *SetConfig:
		return *c
	case *BlockConfig:
		return *c
	case *OperatorConfig:
		return *c
	case *CondConfig:
		return *c
	case *StyleConfig:
		return *c
	case *TransformConfig:
		return *c
	case *PropsConfig:
		return *c
	case *EventConfig:
		return *c
	case *ClockConfig:
		return *c
	case *ClockOpConfig:
		return *c
	case *CallConfig:
		return *c
	case *DebugConfig:
		return *c
	case *BezierConfig:
		return *c
	}
	return cfg
}

func (c *OperatorConfig) validate() error {
	op, ok := operators[c.Op]
	if !ok {
		// Unknown operators are accepted here and reported at creation.
		return nil
	}
	if len(c.Input) < op.minArgs || (op.maxArgs > 0 && len(c.Input) > op.maxArgs) {
		return newConfigError("operator %q takes %s inputs, got %d", c.Op, op.arity(), len(c.Input))
	}
	return nil
}

func (c *TransformConfig) validate() error {
	for i, entry := range c.Transform {
		if entry.Property == "" {
			return newConfigError("transform entry %d has no property", i)
		}
		if entry.NodeID == nil && entry.Value == nil {
			return newConfigError("transform entry %d (%s) needs nodeID or a non-null value", i, entry.Property)
		}
	}
	return nil
}

func (c *EventConfig) validate() error {
	if len(c.ArgMapping) == 0 {
		return newConfigError("event config has an empty argMapping")
	}
	return nil
}

func (c *BezierConfig) validate() error {
	if c.X1 < 0 || c.X1 > 1 || c.X2 < 0 || c.X2 > 1 {
		return newConfigError("bezier x control points must lie in [0,1], got %v and %v", c.X1, c.X2)
	}
	return nil
}

// PathStep is one step into an event payload: an object key or a list index.
type PathStep struct {
	Key     string
	Index   int
	IsIndex bool
}

// EventPath walks Steps into the event payload and writes the result into
// the Value node Target.
type EventPath struct {
	Steps  []PathStep
	Target ir.NodeID
}

// UnmarshalJSON decodes the wire form ["key", 0, ..., targetID].
func (p *EventPath) UnmarshalJSON(data []byte) error {
	var elems []any
	if err := json.Unmarshal(data, &elems); err != nil {
		return fmt.Errorf("event path must be a list: %w", err)
	}
	if len(elems) == 0 {
		return errors.New("event path is empty")
	}

	last, ok := elems[len(elems)-1].(float64)
	if !ok || last != math.Trunc(last) {
		return fmt.Errorf("event path must end with a node id, got %v", elems[len(elems)-1])
	}

	steps := make([]PathStep, 0, len(elems)-1)
	for _, elem := range elems[:len(elems)-1] {
		switch v := elem.(type) {
		case string:
			steps = append(steps, PathStep{Key: v})
		case float64:
			if v < 0 || v != math.Trunc(v) {
				return fmt.Errorf("event path index must be a non-negative integer, got %v", v)
			}
			steps = append(steps, PathStep{Index: int(v), IsIndex: true})
		default:
			return fmt.Errorf("event path step must be a key or index, got %T", elem)
		}
	}

	p.Steps = steps
	p.Target = ir.NodeID(last)
	return nil
}

// MarshalJSON encodes the path back to its wire form.
func (p EventPath) MarshalJSON() ([]byte, error) {
	elems := make([]any, 0, len(p.Steps)+1)
	for _, s := range p.Steps {
		if s.IsIndex {
			elems = append(elems, s.Index)
		} else {
			elems = append(elems, s.Key)
		}
	}
	elems = append(elems, p.Target)
	return json.Marshal(elems)
}

func (s PathStep) String() string {
	if s.IsIndex {
		return fmt.Sprintf("[%d]", s.Index)
	}
	return "." + s.Key
}
