package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animgraph/internal/ir"
)

func TestRunWithGolden_OpacityFadeIn(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/opacity_fade_in.yaml")
	require.NoError(t, err)

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_OpacityFadeIn -update
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestRunWithGolden_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/opacity_fade_in.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Frames, second.Frames)
	assert.Equal(t, first.Effects, second.Effects)
}

func TestTraceSnapshot_CanonicalForm(t *testing.T) {
	snapshot := TraceSnapshot{
		ScenarioName: "tiny",
		Frames:       []ir.FrameRecord{{Seq: 1, TimestampMS: 16, Epoch: 1, Error: "boom"}},
		Effects: []ir.EffectRecord{
			{Seq: 1, Frame: 1, Kind: "event", EventName: "onAnimatedCall", Payload: `{"args":[1],"id":3}`},
		},
	}

	m, err := snapshot.toCanonicalMap()
	require.NoError(t, err)
	data, err := ir.MarshalCanonical(m)
	require.NoError(t, err)

	assert.Equal(t,
		`{"effects":[{"event_name":"onAnimatedCall","frame":1,"kind":"event","payload":{"args":[1],"id":3},"seq":1}],`+
			`"frames":[{"callbacks":0,"epoch":1,"error":"boom","events":0,"seq":1,"sinks":0,"timestamp_ms":16,"visited":0}],`+
			`"scenario":"tiny"}`,
		string(data))
}

func TestTraceSnapshot_BadPayload(t *testing.T) {
	snapshot := TraceSnapshot{Effects: []ir.EffectRecord{{Seq: 7, Payload: "{"}}}
	_, err := snapshot.toCanonicalMap()
	assert.ErrorContains(t, err, "effect 7 payload")
}
