package harness

import (
	"github.com/roach88/animgraph/internal/ir"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Frames and Effects are the trace of the run, in logical order.
	Frames  []ir.FrameRecord  `json:"frames"`
	Effects []ir.EffectRecord `json:"effects"`

	// Errors holds assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// newResult builds a passing result from a playback's trace.
func newResult(p *Playback) (*Result, error) {
	frames, effects, err := TraceRecords(p)
	if err != nil {
		return nil, err
	}
	return &Result{
		Pass:    true,
		Frames:  frames,
		Effects: effects,
		Errors:  []string{},
	}, nil
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// TraceRecords converts a playback's log to trace records. Effects are
// numbered from 1 in emission order.
func TraceRecords(p *Playback) ([]ir.FrameRecord, []ir.EffectRecord, error) {
	reports := p.Log.Frames()
	frames := make([]ir.FrameRecord, len(reports))
	for i, r := range reports {
		frames[i] = r.Record()
	}

	observed := p.Log.Effects()
	effects := make([]ir.EffectRecord, len(observed))
	for i, e := range observed {
		rec, err := e.Record(int64(i + 1))
		if err != nil {
			return nil, nil, err
		}
		effects[i] = rec
	}
	return frames, effects, nil
}
