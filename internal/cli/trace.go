package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/animgraph/internal/ir"
	"github.com/roach88/animgraph/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // empty selects the latest run
	List     bool
	Kind     string // optional effect kind filter: "view" or "event"
	View     int64
	Event    string
	From     int64
	To       int64
}

// TraceEffect is an effect with its payload decoded.
type TraceEffect struct {
	Seq       int64      `json:"seq"`
	Frame     int64      `json:"frame"`
	Kind      string     `json:"kind"`
	ViewTag   ir.ViewTag `json:"view_tag,omitempty"`
	ViewName  string     `json:"view_name,omitempty"`
	EventName string     `json:"event_name,omitempty"`
	Payload   any        `json:"payload"`
}

// TraceStats holds summary statistics for a run.
type TraceStats struct {
	Frames       int            `json:"frames"`
	FailedFrames int            `json:"failed_frames"`
	LastEpoch    int64          `json:"last_epoch"`
	Effects      map[string]int `json:"effects"`
	Views        int            `json:"views"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run     ir.RunRecord     `json:"run"`
	Stats   TraceStats       `json:"stats"`
	Frames  []ir.FrameRecord `json:"frames"`
	Effects []TraceEffect    `json:"effects"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect a recorded run",
		Long: `Show the frames and outbound effects recorded by run or serve --db.

Without --run the most recent run is shown. Frames and effects are listed
in logical order: frame number first, then emission order within it.

Examples:
  animgraph trace --db ./trace.db
  animgraph trace --db ./trace.db --list
  animgraph trace --db ./trace.db --run 0190b7c2-... --kind view --format json
  animgraph trace --db ./trace.db --view 11 --from 10 --to 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show (default: latest)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list recorded runs")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only show effects of this kind (view|event)")
	cmd.Flags().Int64Var(&opts.View, "view", 0, "only show effects addressed to this view tag")
	cmd.Flags().StringVar(&opts.Event, "event", "", "only show events with this name")
	cmd.Flags().Int64Var(&opts.From, "from", 0, "first frame to show")
	cmd.Flags().Int64Var(&opts.To, "to", 0, "last frame to show (0 shows through the end)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	ctx := commandContext(cmd)

	if opts.Kind != "" && opts.Kind != "view" && opts.Kind != "event" {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid kind %q: must be view or event", opts.Kind), nil)
	}
	if opts.From < 0 || opts.To < 0 || (opts.To > 0 && opts.From > opts.To) {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid frame range %d..%d", opts.From, opts.To), nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	if opts.List {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
		}
		if formatter.JSON() {
			return formatter.Success(runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(formatter.Writer, "No runs recorded.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(formatter.Writer, "%s  %-20s %s\n", r.ID, r.Name, r.Source)
		}
		return nil
	}

	runID := opts.RunID
	if runID == "" {
		latest, err := st.LatestRun(ctx)
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.fail(ExitCommandError, ErrCodeNoRuns, "no runs recorded", nil)
		}
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, "failed to find latest run", err)
		}
		runID = latest.ID
	}

	trace, err := st.ReadTrace(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.fail(ExitCommandError, ErrCodeNoRuns, fmt.Sprintf("run not found: %s", runID), nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, "failed to read trace", err)
	}
	summary, err := st.Summarize(ctx, runID)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, "failed to summarize run", err)
	}

	result := TraceResult{
		Run: trace.Run,
		Stats: TraceStats{
			Frames:       summary.Frames,
			FailedFrames: summary.FailedFrame,
			LastEpoch:    summary.LastEpoch,
			Effects:      summary.Effects,
			Views:        summary.Views,
		},
		Frames:  trace.Frames,
		Effects: make([]TraceEffect, 0, len(trace.Effects)),
	}
	effects, err := st.QueryEffects(ctx, runID, store.EffectFilter{
		Kind:      opts.Kind,
		ViewTag:   ir.ViewTag(opts.View),
		EventName: opts.Event,
		FromFrame: opts.From,
		ToFrame:   opts.To,
	})
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, "failed to query effects", err)
	}
	for _, e := range effects {
		payload, err := store.DecodePayload(e.Payload)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("corrupt payload in effect %d", e.Seq), err)
		}
		result.Effects = append(result.Effects, TraceEffect{
			Seq:       e.Seq,
			Frame:     e.Frame,
			Kind:      e.Kind,
			ViewTag:   e.ViewTag,
			ViewName:  e.ViewName,
			EventName: e.EventName,
			Payload:   payload,
		})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	printTrace(formatter, result, effects)
	return nil
}

// printTrace renders frames with their effects nested underneath. Payloads
// are printed as stored (canonical JSON).
func printTrace(f *OutputFormatter, r TraceResult, raw []ir.EffectRecord) {
	w := f.Writer
	fmt.Fprintf(w, "Run %s (%s)\n", r.Run.ID, r.Run.Name)
	if r.Run.Source != "" {
		fmt.Fprintf(w, "  source: %s\n", r.Run.Source)
	}
	if f.Verbose && r.Run.Digest != "" {
		fmt.Fprintf(w, "  digest: %s\n", r.Run.Digest)
	}

	payloads := make(map[int64]string, len(raw))
	for _, e := range raw {
		payloads[e.Seq] = e.Payload
	}
	byFrame := make(map[int64][]TraceEffect)
	for _, e := range r.Effects {
		byFrame[e.Frame] = append(byFrame[e.Frame], e)
	}

	fmt.Fprintln(w)
	for _, e := range byFrame[0] {
		printEffect(w, e, payloads[e.Seq])
	}
	for _, fr := range r.Frames {
		fmt.Fprintf(w, "frame %d @%gms epoch=%d events=%d callbacks=%d visited=%d\n",
			fr.Seq, fr.TimestampMS, fr.Epoch, fr.Events, fr.Callbacks, fr.Visited)
		if fr.Error != "" {
			fmt.Fprintf(w, "  ✗ %s\n", fr.Error)
		}
		for _, e := range byFrame[fr.Seq] {
			printEffect(w, e, payloads[e.Seq])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d frames (%d failed), %d views", r.Stats.Frames, r.Stats.FailedFrames, r.Stats.Views)
	for _, kind := range slices.Sorted(maps.Keys(r.Stats.Effects)) {
		fmt.Fprintf(w, ", %d %s effects", r.Stats.Effects[kind], kind)
	}
	fmt.Fprintln(w)
}

func printEffect(w io.Writer, e TraceEffect, payload string) {
	switch e.Kind {
	case "view":
		fmt.Fprintf(w, "  [%d] view %d %s %s\n", e.Seq, e.ViewTag, e.ViewName, payload)
	default:
		fmt.Fprintf(w, "  [%d] %s %s\n", e.Seq, e.EventName, payload)
	}
}
