package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/animgraph/internal/engine"
	"github.com/roach88/animgraph/internal/ir"
)

// Recorder writes the frames and effects of one engine run to a Store.
// It implements engine.Observer.
//
// Observer callbacks cannot fail, so the first write error is kept and
// returned by Err; later records are still attempted and logged on failure.
//
// Thread-safety: Recorder is safe for concurrent use via internal mutex.
type Recorder struct {
	mu     sync.Mutex
	store  *Store
	ctx    context.Context
	runID  string
	seq    int64
	err    error
	logger *slog.Logger
}

// NewRecorder writes the run record and returns a recorder for it.
func NewRecorder(ctx context.Context, s *Store, run ir.RunRecord, logger *slog.Logger) (*Recorder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := s.WriteRun(ctx, run); err != nil {
		return nil, err
	}
	return &Recorder{store: s, ctx: ctx, runID: run.ID, logger: logger}, nil
}

// RunID returns the id of the recorded run.
func (r *Recorder) RunID() string { return r.runID }

// ObserveFrame implements engine.Observer.
func (r *Recorder) ObserveFrame(report engine.FrameReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail(r.store.WriteFrame(r.ctx, r.runID, report.Record()))
}

// ObserveEffect implements engine.Observer.
func (r *Recorder) ObserveEffect(e engine.Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	rec, err := e.Record(r.seq)
	if err != nil {
		r.fail(err)
		return
	}
	r.fail(r.store.WriteEffect(r.ctx, r.runID, rec))
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) fail(err error) {
	if err == nil {
		return
	}
	r.logger.Error("trace write failed", "run_id", r.runID, "error", err)
	if r.err == nil {
		r.err = err
	}
}
