package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/animgraph/internal/engine"
	"github.com/roach88/animgraph/internal/harness"
	"github.com/roach88/animgraph/internal/ir"
	"github.com/roach88/animgraph/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Frames   int
	Step     time.Duration
	Database string

	// IDGenerator allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

// RunResult summarizes a simulated run.
type RunResult struct {
	RunID     string                        `json:"run_id"`
	Name      string                        `json:"name"`
	Digest    string                        `json:"digest"`
	Frames    int                           `json:"frames"`
	ElapsedMS float64                       `json:"elapsed_ms"`
	Effects   map[string]int                `json:"effects"`
	Views     map[ir.ViewTag]map[string]any `json:"views"`
	Errors    []string                      `json:"errors,omitempty"`
	Database  string                        `json:"database,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <document>",
		Short: "Simulate a document with deterministic frames",
		Long: `Apply a document's graph to a fresh engine and play its script.

Frames are fired by hand at multiples of --step, so output is identical
across runs. After the script, --frames extra frame slots are played.
With --db every frame and outbound effect is recorded to SQLite for the
trace command.

Examples:
  animgraph run header.yaml
  animgraph run header.yaml --frames 30 --step 8ms
  animgraph run header.yaml --db ./trace.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Frames, "frames", 0, "extra frames to play after the script")
	cmd.Flags().DurationVar(&opts.Step, "step", harness.DefaultStep, "simulated time between frames")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run to this SQLite database")

	return cmd
}

func runSimulation(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	logger := newLogger(opts.RootOptions, cmd)

	if opts.Frames < 0 {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "--frames must not be negative", nil)
	}

	doc, err := loadDocument(formatter, path)
	if err != nil {
		return err
	}
	prog, err := compileDocument(formatter, doc)
	if err != nil {
		return err
	}
	digest, err := ir.OperationsDigest(prog.Operations)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeCompile, "failed to digest operations", err)
	}

	gen := opts.IDGenerator
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	runID := gen.Generate()
	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithIDGenerator(engine.NewFixedGenerator(runID)),
	}

	var rec *store.Recorder
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		run := ir.RunRecord{ID: runID, Name: prog.Name, Source: path, Digest: digest}
		rec, err = store.NewRecorder(commandContext(cmd), st, run, logger)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, "failed to record run", err)
		}
		engineOpts = append(engineOpts, engine.WithObserver(rec))
	}

	logger.Info("playing document", "path", path, "run_id", runID, "steps", len(prog.Script))
	p, err := harness.Play(prog, harness.Config{
		Step:   opts.Step,
		Frames: opts.Frames,
		Logger: logger,
		Engine: engineOpts,
	})
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeSetup, "playback failed", err)
	}
	if rec != nil {
		if err := rec.Err(); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, "failed to record trace", err)
		}
	}

	result := summarizePlayback(p, prog.Name, digest)
	result.Database = opts.Database

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		printRunResult(formatter, result)
	}

	if len(result.Errors) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d frame(s) failed", len(result.Errors)))
	}
	return nil
}

// summarizePlayback collects effect counts and the last native props each
// view received.
func summarizePlayback(p *harness.Playback, name, digest string) RunResult {
	result := RunResult{
		RunID:     p.Engine.RunID(),
		Name:      name,
		Digest:    digest,
		Frames:    p.Fired,
		ElapsedMS: float64(p.Elapsed) / float64(time.Millisecond),
		Effects:   map[string]int{},
		Views:     map[ir.ViewTag]map[string]any{},
	}
	for _, e := range p.Log.Effects() {
		result.Effects[string(e.Kind)]++
		if e.Kind != engine.EffectView {
			continue
		}
		if props, ok := e.Payload.(map[string]any); ok {
			result.Views[e.ViewTag] = props
		}
	}
	for _, err := range p.FrameErrors() {
		result.Errors = append(result.Errors, err.Error())
	}
	return result
}

func printRunResult(f *OutputFormatter, r RunResult) {
	w := f.Writer
	fmt.Fprintf(w, "Run %s (%s)\n", r.RunID, r.Name)
	fmt.Fprintf(w, "  frames:  %d (%gms simulated)\n", r.Frames, r.ElapsedMS)
	for _, kind := range slices.Sorted(maps.Keys(r.Effects)) {
		fmt.Fprintf(w, "  %-8s %d\n", kind+":", r.Effects[kind])
	}
	for _, tag := range slices.Sorted(maps.Keys(r.Views)) {
		props, err := ir.MarshalCanonical(r.Views[tag])
		if err != nil {
			props = []byte(fmt.Sprint(r.Views[tag]))
		}
		fmt.Fprintf(w, "  view %d: %s\n", tag, props)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  ✗ %s\n", e)
	}
	if f.Verbose {
		fmt.Fprintf(w, "  digest:  %s\n", r.Digest)
	}
	if r.Database != "" {
		fmt.Fprintf(w, "Recorded to %s\n", r.Database)
	}
}

// commandContext returns the command's context, or Background when the
// command is executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// isShutdown reports whether err is a normal end of a real-time loop.
func isShutdown(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

