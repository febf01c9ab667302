package compiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/animgraph/internal/ir"
)

// Document is a declarative animation graph with an optional input script.
//
// Node configs are kept as generic maps; they are decoded into typed graph
// configs by Validate and by the engine when the createNode operation runs.
type Document struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	NativeProps []string    `json:"native_props,omitempty" yaml:"native_props,omitempty"`
	Nodes       []NodeDecl  `json:"nodes" yaml:"nodes"`
	Edges       []EdgeDecl  `json:"edges,omitempty" yaml:"edges,omitempty"`
	Views       []ViewDecl  `json:"views,omitempty" yaml:"views,omitempty"`
	Events      []EventDecl `json:"events,omitempty" yaml:"events,omitempty"`
	Script      []StepDecl  `json:"script,omitempty" yaml:"script,omitempty"`
}

// NodeDecl declares one node.
type NodeDecl struct {
	ID     ir.NodeID      `json:"id" yaml:"id"`
	Config map[string]any `json:"config" yaml:"config"`
}

// EdgeDecl declares a dependent edge: Parent is re-evaluated when Child
// changes.
type EdgeDecl struct {
	Parent ir.NodeID `json:"parent" yaml:"parent"`
	Child  ir.NodeID `json:"child" yaml:"child"`
}

// ViewDecl connects a props node to a view.
type ViewDecl struct {
	Node ir.NodeID  `json:"node" yaml:"node"`
	View ir.ViewTag `json:"view" yaml:"view"`
	Name string     `json:"name" yaml:"name"`
}

// EventDecl attaches an event node to a (view, event) pair.
type EventDecl struct {
	View  ir.ViewTag `json:"view" yaml:"view"`
	Event string     `json:"event" yaml:"event"`
	Node  ir.NodeID  `json:"node" yaml:"node"`
}

// StepDecl is one step of the input script: values are assigned, events
// dispatched, then Frames frames run (default 1).
type StepDecl struct {
	Set      []SetDecl      `json:"set,omitempty" yaml:"set,omitempty"`
	Dispatch []DispatchDecl `json:"dispatch,omitempty" yaml:"dispatch,omitempty"`
	Frames   *int           `json:"frames,omitempty" yaml:"frames,omitempty"`
}

// SetDecl assigns a value node from the host side.
type SetDecl struct {
	Node  ir.NodeID `json:"node" yaml:"node"`
	Value any       `json:"value" yaml:"value"`
}

// DispatchDecl delivers one inbound view event.
type DispatchDecl struct {
	View  ir.ViewTag `json:"view" yaml:"view"`
	Event string     `json:"event" yaml:"event"`
	Data  any        `json:"data,omitempty" yaml:"data,omitempty"`
}

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", fmt.Errorf("unsupported document extension %q", filepath.Ext(path))
}

// LoadFile reads and parses a document. The format follows the extension.
func LoadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data, format, path)
}

// Parse decodes a document. filename is only used in error positions.
// Unknown fields are rejected in every format.
func Parse(data []byte, format Format, filename string) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &CompileError{Field: "document", Message: "document is empty"}
			}
			return nil, &CompileError{Field: "yaml", Message: err.Error()}
		}
	case FormatJSON:
		if err := decodeJSON(data, &doc); err != nil {
			return nil, &CompileError{Field: "json", Message: err.Error()}
		}
	case FormatCUE:
		if err := decodeCUE(data, filename, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
	return &doc, nil
}

func decodeJSON(data []byte, doc *Document) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(doc)
}

// decodeCUE evaluates the CUE source, which must be concrete, and decodes
// its JSON form.
func decodeCUE(data []byte, filename string, doc *Document) error {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	raw, err := v.MarshalJSON()
	if err != nil {
		return formatCUEError(err)
	}
	if err := decodeJSON(raw, doc); err != nil {
		return &CompileError{Field: "cue", Message: err.Error()}
	}
	return nil
}

// CompileError represents a document error, with a source position when the
// format provides one.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: "cue", Message: err.Error()}
	}

	first := errs[0]
	msg := first.Error()
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: msg, Pos: positions[0]}
	}
	return &CompileError{Field: "cue", Message: msg}
}
