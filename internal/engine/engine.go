package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/animgraph/internal/graph"
	"github.com/roach88/animgraph/internal/ir"
)

// DefaultFrameInterval is the tick period used by Run when none is given.
const DefaultFrameInterval = 16 * time.Millisecond

// Engine is the frame-driven graph evaluation engine.
//
// It owns one graph Registry, the EventRouter, the FrameScheduler and the
// pending operation batch. All of that state is single-threaded.
//
// Thread-safety model:
//   - Submit(), Stop(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine; commands submitted
//     with Submit execute there
//   - every other method: only from the goroutine that owns the engine
//     (the Run goroutine, or the caller when Run is not used)
type Engine struct {
	registry  *graph.Registry
	router    *EventRouter
	scheduler *FrameScheduler
	clock     *FrameClock
	manual    *ManualFrames
	pending   []ir.Operation
	inbox     *commandQueue
	logger    *slog.Logger
	metrics   *Metrics
	runID     string
}

type config struct {
	logger    *slog.Logger
	source    FrameSource
	views     graph.ViewUpdater
	events    graph.EventEmitter
	metrics   *Metrics
	observers []Observer
	ids       IDGenerator
}

// Option configures an Engine.
type Option func(*config)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithFrameSource replaces the built-in ManualFrames source, for hosts with
// their own display link. Tick and Run only drive the built-in source.
func WithFrameSource(s FrameSource) Option {
	return func(c *config) { c.source = s }
}

// WithViewUpdater sets the synchronous view-mutation channel.
func WithViewUpdater(v graph.ViewUpdater) Option {
	return func(c *config) { c.views = v }
}

// WithEventEmitter sets the host's generic event channel.
func WithEventEmitter(ev graph.EventEmitter) Option {
	return func(c *config) { c.events = ev }
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithObserver adds an observer of frames and effects. It may be given more
// than once.
func WithObserver(o Observer) Option {
	return func(c *config) { c.observers = append(c.observers, o) }
}

// WithIDGenerator sets the run id generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *config) { c.ids = g }
}

// New creates an Engine with an empty graph.
func New(opts ...Option) *Engine {
	cfg := config{
		logger: slog.Default(),
		views:  discardViews{},
		events: discardEvents{},
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		clock:   NewFrameClock(),
		inbox:   newCommandQueue(),
		logger:  cfg.logger,
		metrics: cfg.metrics,
		runID:   cfg.ids.Generate(),
	}

	source := cfg.source
	if source == nil {
		e.manual = NewManualFrames()
		source = e.manual
	}

	e.scheduler = newFrameScheduler(source, e.clock, e.logger, e.metrics)
	e.scheduler.observers = cfg.observers
	e.router = NewEventRouter(e.scheduler.arm, e.logger, e.metrics)
	tap := &hostTap{
		views:     cfg.views,
		events:    cfg.events,
		frame:     e.clock,
		observers: cfg.observers,
		metrics:   e.metrics,
	}
	e.registry = graph.NewRegistry(graph.Host{
		Frames: e.scheduler,
		Views:  tap,
		Events: tap,
		Logger: e.logger,
	})
	e.scheduler.router = e.router
	e.scheduler.registry = e.registry
	return e
}

// RunID identifies this engine instance in recorded traces.
func (e *Engine) RunID() string { return e.runID }

// Registry exposes the graph, mainly for inspection and tests.
func (e *Engine) Registry() *graph.Registry { return e.registry }

// Router exposes the event router.
func (e *Engine) Router() *EventRouter { return e.router }

// Scheduler exposes the frame scheduler.
func (e *Engine) Scheduler() *FrameScheduler { return e.scheduler }

// Frame returns the number of the latest processed frame.
func (e *Engine) Frame() int64 { return e.clock.Current() }

// DispatchEvent delivers an inbound host event. It is queued for the next
// frame if an Event node is attached to its (view, event) pair, otherwise
// dropped.
func (e *Engine) DispatchEvent(ev ir.InboundEvent) bool {
	return e.router.Dispatch(ev)
}

// Tick fires the built-in frame source at timestamp ts. It returns false when
// no frame was armed or a custom FrameSource is in use.
func (e *Engine) Tick(ts time.Duration) bool {
	if e.manual == nil {
		return false
	}
	return e.manual.Fire(ts)
}

// Submit schedules fn to run on the Run goroutine.
// Thread-safe: may be called from any goroutine.
//
// Returns a STOPPED error if the engine has been stopped.
func (e *Engine) Submit(fn func(*Engine)) error {
	if !e.inbox.Enqueue(fn) {
		return errStopped
	}
	return nil
}

// Run drives the engine in real time until ctx is cancelled or Stop is
// called. Submitted commands run as they arrive; the built-in frame source
// fires on every tick of interval with the time elapsed since Run started.
//
// ERROR HANDLING: frame errors are logged by the scheduler and the loop
// continues. A command that needs to report an error must do so itself.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	e.logger.Info("engine starting", "run_id", e.runID, "interval", interval)

	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.inbox.Close()
			return ctx.Err()

		case <-e.inbox.Wait():
			e.drainInbox()
			if e.inbox.Closed() {
				e.logger.Info("engine stopping: stopped")
				return nil
			}

		case <-ticker.C:
			e.Tick(time.Since(start))
		}
	}
}

func (e *Engine) drainInbox() {
	for {
		cmd, ok := e.inbox.TryDequeue()
		if !ok {
			return
		}
		cmd(e)
	}
}

// Stop makes Run return after executing the commands already submitted.
func (e *Engine) Stop() {
	e.inbox.Close()
}

type discardViews struct{}

func (discardViews) SynchronouslyUpdateView(ir.ViewTag, string, map[string]any) error { return nil }

type discardEvents struct{}

func (discardEvents) SendEvent(string, any) error { return nil }
