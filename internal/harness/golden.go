package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/animgraph/internal/ir"
)

// TraceSnapshot is the golden form of a run: every frame and every effect,
// serialized as canonical JSON.
type TraceSnapshot struct {
	ScenarioName string
	Frames       []ir.FrameRecord
	Effects      []ir.EffectRecord
}

// toCanonicalMap converts the snapshot to plain maps for ir.MarshalCanonical.
// Effect payloads are embedded as JSON values, not strings.
func (s *TraceSnapshot) toCanonicalMap() (map[string]any, error) {
	frames := make([]any, len(s.Frames))
	for i, f := range s.Frames {
		m := map[string]any{
			"seq":          f.Seq,
			"timestamp_ms": f.TimestampMS,
			"epoch":        f.Epoch,
			"events":       f.Events,
			"callbacks":    f.Callbacks,
			"visited":      f.Visited,
			"sinks":        f.Sinks,
		}
		if f.Error != "" {
			m["error"] = f.Error
		}
		frames[i] = m
	}

	effects := make([]any, len(s.Effects))
	for i, e := range s.Effects {
		var payload any
		if err := json.Unmarshal([]byte(e.Payload), &payload); err != nil {
			return nil, fmt.Errorf("effect %d payload: %w", e.Seq, err)
		}
		m := map[string]any{
			"seq":     e.Seq,
			"frame":   e.Frame,
			"kind":    e.Kind,
			"payload": payload,
		}
		if e.ViewTag != 0 {
			m["view_tag"] = e.ViewTag
		}
		if e.ViewName != "" {
			m["view_name"] = e.ViewName
		}
		if e.EventName != "" {
			m["event_name"] = e.EventName
		}
		effects[i] = m
	}

	return map[string]any{
		"scenario": s.ScenarioName,
		"frames":   frames,
		"effects":  effects,
	}, nil
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Assertion failures and trace
// mismatches fail the test.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's trace against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Frames:       result.Frames,
		Effects:      result.Effects,
	}
	canonicalMap, err := snapshot.toCanonicalMap()
	if err != nil {
		return err
	}
	traceJSON, err := ir.MarshalCanonical(canonicalMap)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
