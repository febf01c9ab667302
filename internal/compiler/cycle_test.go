package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animgraph/internal/ir"
)

func op(id ir.NodeID, input ...any) NodeDecl {
	return NodeDecl{ID: id, Config: map[string]any{"type": "op", "op": "add", "input": input}}
}

func TestAnalyzeCycles_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(&Document{}))
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	doc, err := LoadFile("testdata/fade.yaml")
	require.NoError(t, err)
	assert.Empty(t, AnalyzeCycles(doc))
}

func TestAnalyzeCycles_InputCycle(t *testing.T) {
	doc := &Document{Nodes: []NodeDecl{op(1, 2), op(2, 3), op(3, 1)}}

	warnings := AnalyzeCycles(doc)
	require.Len(t, warnings, 1)
	assert.Equal(t, "input", warnings[0].Kind)
	assert.Equal(t, []ir.NodeID{1, 2, 3, 1}, warnings[0].Path)
	assert.Equal(t, "input cycle detected: 1 → 2 → 3 → 1", warnings[0].Message)
	assert.Equal(t, "warning", warnings[0].Level)
}

func TestAnalyzeCycles_SelfLoop(t *testing.T) {
	doc := &Document{Nodes: []NodeDecl{op(4, 4)}}

	warnings := AnalyzeCycles(doc)
	require.Len(t, warnings, 1)
	assert.Equal(t, []ir.NodeID{4, 4}, warnings[0].Path)
}

func TestAnalyzeCycles_DependentCycle(t *testing.T) {
	doc := &Document{
		Nodes: []NodeDecl{
			{ID: 1, Config: map[string]any{"type": "value"}},
			{ID: 2, Config: map[string]any{"type": "value"}},
		},
		Edges: []EdgeDecl{{Parent: 1, Child: 2}, {Parent: 2, Child: 1}},
	}

	warnings := AnalyzeCycles(doc)
	require.Len(t, warnings, 1)
	assert.Equal(t, "dependent", warnings[0].Kind)
	assert.Equal(t, []ir.NodeID{1, 2, 1}, warnings[0].Path)
}

func TestAnalyzeCycles_EventTargetsIgnored(t *testing.T) {
	doc := &Document{
		Nodes: []NodeDecl{
			{ID: 1, Config: map[string]any{"type": "value"}},
			{ID: 2, Config: map[string]any{"type": "event", "argMapping": []any{[]any{"x", 1}}}},
			{ID: 3, Config: map[string]any{"type": "set", "what": 1, "value": 3}},
		},
	}
	// set 3 reads itself through its value input.
	warnings := AnalyzeCycles(doc)
	require.Len(t, warnings, 1)
	assert.Equal(t, []ir.NodeID{3, 3}, warnings[0].Path)
}

func TestAnalyzeCycles_Deterministic(t *testing.T) {
	doc := &Document{Nodes: []NodeDecl{op(5, 6), op(6, 5), op(1, 2), op(2, 1)}}
	first := AnalyzeCycles(doc)
	for range 20 {
		assert.Equal(t, first, AnalyzeCycles(doc))
	}
	require.Len(t, first, 2)
	assert.Equal(t, ir.NodeID(1), first[0].Path[0])
}
