package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animgraph/internal/ir"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_DocumentPath(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/fade_on_scroll.yaml")
	require.NoError(t, err)

	assert.Equal(t, "fade_on_scroll", scenario.Name)
	assert.Equal(t, filepath.Join("testdata", "documents", "fade.yaml"), scenario.Document)
	assert.Nil(t, scenario.Graph)
	require.Len(t, scenario.Assertions, 5)
	assert.Equal(t, ir.ViewTag(11), scenario.Assertions[0].View)
	assert.Equal(t, ir.NodeID(1), scenario.Assertions[1].Node)
}

func TestLoadScenario_InlineGraph(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/opacity_fade_in.yaml")
	require.NoError(t, err)

	require.NotNil(t, scenario.Graph)
	assert.Equal(t, 16*time.Millisecond, scenario.Step)
	assert.Equal(t, 1, scenario.Frames)
	assert.Len(t, scenario.Graph.Nodes, 2)
	assert.Equal(t, []string{"opacity"}, scenario.Graph.NativeProps)

	doc, err := scenario.LoadDocument()
	require.NoError(t, err)
	assert.Same(t, scenario.Graph, doc)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
document: graph.yaml
assertion:
  - type: no_errors
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "document: graph.yaml\n",
			wantErr: "name is required",
		},
		{
			name:    "no document",
			content: "name: x\n",
			wantErr: "one of document or graph is required",
		},
		{
			name:    "both documents",
			content: "name: x\ndocument: g.yaml\ngraph: {name: g, nodes: []}\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "negative frames",
			content: "name: x\ndocument: g.yaml\nframes: -1\n",
			wantErr: "frames must not be negative",
		},
		{
			name:    "unknown assertion",
			content: "name: x\ndocument: g.yaml\nassertions:\n  - type: final_state\n",
			wantErr: `unknown type "final_state"`,
		},
		{
			name:    "view_props without view",
			content: "name: x\ndocument: g.yaml\nassertions:\n  - type: view_props\n",
			wantErr: "view_props requires view",
		},
		{
			name:    "event_count without event",
			content: "name: x\ndocument: g.yaml\nassertions:\n  - type: event_count\n    count: 1\n",
			wantErr: "event_count requires event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
