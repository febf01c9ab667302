package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/roach88/animgraph/internal/compiler"
	"github.com/roach88/animgraph/internal/engine"
	"github.com/roach88/animgraph/internal/ir"
	"github.com/roach88/animgraph/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Interval    time.Duration
	MetricsAddr string
	Database    string
	Duration    time.Duration // stop after this long; 0 runs until interrupted
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <document>",
		Short: "Run a document in real time",
		Long: `Start the engine's real-time loop with a document's graph.

Frames fire on a wall-clock ticker. The document script is replayed in
real time: each step's assignments and events are submitted to the loop,
then the step waits for its frame count of ticks. Prometheus metrics are
exposed on --metrics-addr at /metrics.

Examples:
  animgraph serve header.yaml --metrics-addr :9090
  animgraph serve header.yaml --interval 8ms --duration 5s --db ./trace.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", engine.DefaultFrameInterval, "frame interval")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "address for the Prometheus /metrics endpoint (disabled if empty)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run to this SQLite database")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "stop after this long (0 runs until interrupted)")

	return cmd
}

func runServe(opts *ServeOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	logger := newLogger(opts.RootOptions, cmd)

	doc, err := loadDocument(formatter, path)
	if err != nil {
		return err
	}
	prog, err := compileDocument(formatter, doc)
	if err != nil {
		return err
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = engine.DefaultFrameInterval
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMetrics(engine.NewMetrics(reg)),
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	runID := engine.UUIDv7Generator{}.Generate()
	engineOpts = append(engineOpts, engine.WithIDGenerator(engine.NewFixedGenerator(runID)))

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

		digest, err := ir.OperationsDigest(prog.Operations)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeCompile, "failed to digest operations", err)
		}
		run := ir.RunRecord{ID: runID, Name: prog.Name, Source: path, Digest: digest}
		// Writes must outlive the shutdown signal.
		rec, err = store.NewRecorder(context.WithoutCancel(ctx), st, run, logger)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, "failed to record run", err)
		}
		engineOpts = append(engineOpts, engine.WithObserver(rec))
	}

	eng := engine.New(engineOpts...)
	if err := eng.EnqueueAll(prog.Operations); err != nil {
		return formatter.fail(ExitFailure, ErrCodeSetup, "invalid setup batch", err)
	}
	if err := eng.FlushOperations(); err != nil {
		return formatter.fail(ExitFailure, ErrCodeSetup, "failed to apply setup batch", err)
	}

	if opts.MetricsAddr != "" {
		srv, err := serveMetrics(opts.MetricsAddr, reg, logger)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to start metrics server", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", "error", err)
			}
		}()
		if !formatter.JSON() {
			fmt.Fprintf(formatter.Writer, "Metrics at http://%s/metrics\n", srv.Addr)
		}
	}

	go replayScript(ctx, eng, prog.Script, interval, logger)

	if !formatter.JSON() {
		fmt.Fprintf(formatter.Writer, "Serving %s (run %s). Press Ctrl-C to stop.\n", prog.Name, runID)
	}
	if err := eng.Run(ctx, interval); !isShutdown(err) {
		return formatter.fail(ExitFailure, ErrCodeGeneric, "engine error", err)
	}
	logger.Info("engine stopped gracefully", "frames", eng.Frame())

	if rec != nil {
		if err := rec.Err(); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, "failed to record trace", err)
		}
	}

	summary := struct {
		RunID  string `json:"run_id"`
		Name   string `json:"name"`
		Frames int64  `json:"frames"`
	}{runID, prog.Name, eng.Frame()}
	if formatter.JSON() {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "Stopped after %d frames\n", summary.Frames)
	return nil
}

// serveMetrics starts the /metrics endpoint. The returned server's Addr is
// the bound address.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{Addr: ln.Addr().String(), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("metrics server listening", "addr", srv.Addr)
	return srv, nil
}

// replayScript submits each script step to the run loop and then waits for
// the step's frames to elapse on the wall clock.
func replayScript(ctx context.Context, eng *engine.Engine, script []compiler.Step, interval time.Duration, logger *slog.Logger) {
	for i, step := range script {
		err := eng.Submit(func(e *engine.Engine) {
			for _, set := range step.Sets {
				if err := e.Registry().SetValue(set.Node, set.Value); err != nil {
					logger.Error("script assignment failed", "step", i, "node_id", set.Node, "error", err)
				}
			}
			for _, ev := range step.Events {
				if !e.DispatchEvent(ev) {
					logger.Warn("event not attached, dropped", "step", i, "view_tag", ev.ViewTag, "event", ev.EventName)
				}
			}
		})
		if err != nil {
			return
		}

		timer := time.NewTimer(time.Duration(step.Frames) * interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
	logger.Debug("script finished", "steps", len(script))
}
