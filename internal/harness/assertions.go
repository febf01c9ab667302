package harness

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/animgraph/internal/engine"
	"github.com/roach88/animgraph/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Frames   int // frames that ran, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "  Frames run: %d\n", e.Frames)
	return buf.String()
}

// EvaluateAssertions checks every assertion against a finished playback and
// returns one message per failure.
func EvaluateAssertions(p *Playback, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(p, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return failures
}

func evaluate(p *Playback, a Assertion) error {
	switch a.Type {
	case AssertViewProps:
		return assertViewProps(p, a)
	case AssertNodeValue:
		return assertNodeValue(p, a)
	case AssertEventCount:
		return assertEventCount(p, a)
	case AssertNoErrors:
		return assertNoErrors(p)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertViewProps compares the last native props pushed to a view with the
// expected ones (subset match).
func assertViewProps(p *Playback, a Assertion) error {
	var last map[string]any
	for _, e := range p.Log.Effects() {
		if e.Kind != engine.EffectView || e.ViewTag != a.View {
			continue
		}
		if props, ok := e.Payload.(map[string]any); ok {
			last = props
		}
	}
	if last == nil {
		return &AssertionError{
			Type:     AssertViewProps,
			Expected: fmt.Sprintf("view %d updated with %v", a.View, a.Props),
			Actual:   "view never updated",
			Frames:   p.Fired,
		}
	}

	for _, key := range slices.Sorted(maps.Keys(a.Props)) {
		got, ok := last[key]
		if !ok {
			return &AssertionError{
				Type:     AssertViewProps,
				Expected: fmt.Sprintf("view %d prop %q = %v", a.View, key, a.Props[key]),
				Actual:   fmt.Sprintf("prop missing from %v", last),
				Frames:   p.Fired,
			}
		}
		if !sameValue(a.Props[key], got) {
			return &AssertionError{
				Type:     AssertViewProps,
				Expected: fmt.Sprintf("view %d prop %q = %v", a.View, key, a.Props[key]),
				Actual:   fmt.Sprintf("%v", got),
				Frames:   p.Fired,
			}
		}
	}
	return nil
}

// assertNodeValue reads a node in the engine's current epoch.
func assertNodeValue(p *Playback, a Assertion) error {
	got, err := p.Engine.Registry().Value(a.Node)
	if err != nil {
		return &AssertionError{
			Type:     AssertNodeValue,
			Expected: fmt.Sprintf("node %d = %v", a.Node, a.Value),
			Actual:   fmt.Sprintf("error: %v", err),
			Frames:   p.Fired,
		}
	}
	if !sameValue(a.Value, got) {
		return &AssertionError{
			Type:     AssertNodeValue,
			Expected: fmt.Sprintf("node %d = %v", a.Node, a.Value),
			Actual:   fmt.Sprintf("%v", got),
			Frames:   p.Fired,
		}
	}
	return nil
}

// assertEventCount counts outbound host events with the given name.
func assertEventCount(p *Playback, a Assertion) error {
	count := 0
	for _, e := range p.Log.Effects() {
		if e.Kind == engine.EffectEvent && e.EventName == a.Event {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d %s events", a.Count, a.Event),
			Actual:   fmt.Sprintf("%d events", count),
			Frames:   p.Fired,
		}
	}
	return nil
}

func assertNoErrors(p *Playback) error {
	errs := p.FrameErrors()
	if len(errs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertNoErrors,
		Expected: "no failed frames",
		Actual:   errors.Join(errs...).Error(),
		Frames:   p.Fired,
	}
}

// sameValue compares an expected YAML value with an engine value. Both sides
// go through JSON first so integers and float64 compare equal.
func sameValue(want, got any) bool {
	if ir.Equal(want, got) {
		return true
	}
	w, err := jsonValue(want)
	if err != nil {
		return false
	}
	g, err := jsonValue(got)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(w, g)
}

func jsonValue(v any) (any, error) {
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
