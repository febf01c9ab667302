package harness

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animgraph/internal/compiler"
	"github.com/roach88/animgraph/internal/engine"
	"github.com/roach88/animgraph/internal/ir"
)

func quietConfig() Config {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return Config{Logger: quiet, Engine: []engine.Option{engine.WithLogger(quiet)}}
}

func compileFile(t *testing.T, path string) *compiler.Program {
	t.Helper()
	doc, err := compiler.LoadFile(path)
	require.NoError(t, err)
	prog, err := compiler.Compile(doc)
	require.NoError(t, err)
	return prog
}

func TestPlay_FadeDocument(t *testing.T) {
	p, err := Play(compileFile(t, "testdata/documents/fade.yaml"), quietConfig())
	require.NoError(t, err)

	// Four frame slots; the last one has nothing armed.
	assert.Equal(t, 3, p.Fired)
	assert.Equal(t, 64*time.Millisecond, p.Elapsed)
	assert.Empty(t, p.FrameErrors())

	var opacities []any
	for _, e := range p.Log.Effects() {
		require.Equal(t, engine.EffectView, e.Kind)
		assert.Equal(t, ir.ViewTag(11), e.ViewTag)
		opacities = append(opacities, e.Payload.(map[string]any)["opacity"])
	}
	assert.Equal(t, []any{1.0, 0.75, 0.5}, opacities)

	frames := p.Log.Frames()
	require.Len(t, frames, 3)
	assert.Equal(t, 0, frames[0].Events)
	assert.Equal(t, 1, frames[1].Events)
	assert.Equal(t, 32*time.Millisecond, frames[1].Timestamp)
}

func TestPlay_IdleFramesAdvanceTime(t *testing.T) {
	cfg := quietConfig()
	cfg.Step = 10 * time.Millisecond
	cfg.Frames = 5

	p, err := Play(compileFile(t, "testdata/documents/fade.yaml"), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Fired)
	assert.Equal(t, 90*time.Millisecond, p.Elapsed)
}

func TestPlay_SetupFailure(t *testing.T) {
	prog := &compiler.Program{Operations: []ir.Operation{ir.ConnectNodes(1, 2)}}

	p, err := Play(prog, quietConfig())
	require.Error(t, err)
	assert.True(t, engine.IsFlushError(err))
	require.NotNil(t, p)
	assert.Zero(t, p.Fired)
}

func TestPlay_SetOnWrongKind(t *testing.T) {
	prog := &compiler.Program{
		Operations: []ir.Operation{ir.CreateNode(1, []byte(`{"type":"clock"}`))},
		Script:     []compiler.Step{{Sets: []compiler.Assignment{{Node: 1, Value: 2.0}}, Frames: 1}},
	}

	_, err := Play(prog, quietConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script step 0: set node 1")
}

func TestPlay_UnattachedEventIsDropped(t *testing.T) {
	prog := &compiler.Program{
		Operations: []ir.Operation{ir.CreateNode(1, []byte(`{"type":"value","value":1}`))},
		Script: []compiler.Step{{
			Events: []ir.InboundEvent{ir.NewInboundEvent(99, "onPress", nil)},
			Frames: 1,
		}},
	}

	p, err := Play(prog, quietConfig())
	require.NoError(t, err)
	assert.Zero(t, p.Fired)
	assert.Empty(t, p.Log.Effects())
}

func TestRun_FadeScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/fade_on_scroll.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Frames, 3)
	assert.Len(t, result.Effects, 3)
	assert.Equal(t, int64(1), result.Effects[0].Seq)
	assert.Equal(t, `{"opacity":1}`, result.Effects[0].Payload)
}

func TestRun_InvalidDocument(t *testing.T) {
	scenario := &Scenario{
		Name:  "broken",
		Graph: &compiler.Document{Name: "broken"},
	}
	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[E100]")
}

func TestRun_FailingAssertions(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/fade_on_scroll.yaml")
	require.NoError(t, err)
	scenario.Assertions = []Assertion{
		{Type: AssertViewProps, View: 11, Props: map[string]any{"opacity": 0.25}},
		{Type: AssertNodeValue, Node: 1, Value: 49},
		{Type: AssertEventCount, Event: ir.EventPropsChange, Count: 1},
		{Type: AssertViewProps, View: 404, Props: map[string]any{"opacity": 1}},
		{Type: AssertNodeValue, Node: 404, Value: 0},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "Expected: view 11 prop \"opacity\" = 0.25")
	assert.Contains(t, result.Errors[1], "Actual: 50")
	assert.Contains(t, result.Errors[2], "Actual: 0 events")
	assert.Contains(t, result.Errors[3], "view never updated")
	assert.Contains(t, result.Errors[4], "NODE_NOT_FOUND")
}
