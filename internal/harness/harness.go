package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/animgraph/internal/compiler"
	"github.com/roach88/animgraph/internal/engine"
)

// Config controls a playback.
type Config struct {
	// Step is the simulated time between frames. Defaults to DefaultStep.
	Step time.Duration

	// Frames is the number of idle frames played after the script.
	Frames int

	// Logger receives playback progress. Defaults to slog.Default().
	Logger *slog.Logger

	// Engine options are applied after the playback's own observer, so
	// callers can add observers, metrics or a logger.
	Engine []engine.Option
}

// Playback is the outcome of playing a program on a fresh engine.
type Playback struct {
	Engine  *engine.Engine
	Log     *engine.EffectLog
	Elapsed time.Duration // simulated time of the last frame slot
	Fired   int           // frames that actually ran

	step   time.Duration
	logger *slog.Logger
}

// Play applies the program's setup batch to a new engine and then plays its
// script: per step, assignments first, then inbound events, then the step's
// frames. A frame slot only runs when the engine has armed a frame; idle
// slots still advance simulated time.
//
// A setup or assignment failure stops the playback. The partial Playback is
// returned with the error so the caller can still inspect what ran.
func Play(prog *compiler.Program, cfg Config) (*Playback, error) {
	step := cfg.Step
	if step <= 0 {
		step = DefaultStep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	log := engine.NewEffectLog()
	opts := append([]engine.Option{engine.WithObserver(log)}, cfg.Engine...)
	p := &Playback{
		Engine: engine.New(opts...),
		Log:    log,
		step:   step,
		logger: logger,
	}

	if err := p.Engine.EnqueueAll(prog.Operations); err != nil {
		return p, fmt.Errorf("setup: %w", err)
	}
	if err := p.Engine.FlushOperations(); err != nil {
		return p, fmt.Errorf("setup: %w", err)
	}

	for i, s := range prog.Script {
		if err := p.playStep(i, s); err != nil {
			return p, err
		}
	}
	p.advance(cfg.Frames)

	logger.Info("playback finished",
		"program", prog.Name,
		"steps", len(prog.Script),
		"frames", p.Fired,
		"elapsed", p.Elapsed,
	)
	return p, nil
}

func (p *Playback) playStep(i int, s compiler.Step) error {
	for _, set := range s.Sets {
		if err := p.Engine.Registry().SetValue(set.Node, set.Value); err != nil {
			return fmt.Errorf("script step %d: set node %d: %w", i, set.Node, err)
		}
	}
	for _, ev := range s.Events {
		if !p.Engine.DispatchEvent(ev) {
			p.logger.Warn("event not attached, dropped",
				"step", i,
				"view_tag", ev.ViewTag,
				"event", ev.EventName,
			)
		}
	}
	fired := p.advance(s.Frames)
	p.logger.Debug("script step played", "step", i, "frames", fired)
	return nil
}

// advance plays n frame slots and returns how many frames ran.
func (p *Playback) advance(n int) int {
	fired := 0
	for range n {
		p.Elapsed += p.step
		if p.Engine.Tick(p.Elapsed) {
			fired++
		}
	}
	p.Fired += fired
	return fired
}

// FrameErrors returns the errors of every failed frame, in order.
func (p *Playback) FrameErrors() []error {
	var errs []error
	for _, r := range p.Log.Frames() {
		if err := errors.Join(r.EventErr, r.PassErr); err != nil {
			errs = append(errs, fmt.Errorf("frame %d: %w", r.Seq, err))
		}
	}
	return errs
}

// Run loads, compiles and plays a scenario, then evaluates its assertions.
//
// Each run uses a fresh engine with manual frames and a run id equal to the
// scenario name. Engine logs are discarded.
func Run(scenario *Scenario) (*Result, error) {
	doc, err := scenario.LoadDocument()
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if errs := compiler.Validate(doc); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid document: %s", strings.Join(msgs, "; "))
	}
	prog, err := compiler.Compile(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to compile document: %w", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := Play(prog, Config{
		Step:   scenario.Step,
		Frames: scenario.Frames,
		Logger: quiet,
		Engine: []engine.Option{
			engine.WithLogger(quiet),
			engine.WithIDGenerator(engine.NewFixedGenerator(scenario.Name)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to play script: %w", err)
	}

	result, err := newResult(p)
	if err != nil {
		return nil, err
	}
	for _, msg := range EvaluateAssertions(p, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
