package store

import (
	"context"
	"fmt"

	"github.com/roach88/animgraph/internal/ir"
)

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run ir.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, source, digest)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Name, run.Source, run.Digest)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteFrame inserts a frame record for a run.
//
// Note: The run must exist (foreign key constraint).
func (s *Store) WriteFrame(ctx context.Context, runID string, f ir.FrameRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO frames
		(run_id, seq, timestamp_ms, epoch, events, callbacks, visited, sinks, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		f.Seq,
		f.TimestampMS,
		f.Epoch,
		f.Events,
		f.Callbacks,
		f.Visited,
		f.Sinks,
		f.Error,
	)
	if err != nil {
		return fmt.Errorf("write frame %d: %w", f.Seq, err)
	}
	return nil
}

// WriteEffect inserts an effect record for a run. The payload must already be
// canonical JSON; see NewEffectRecord.
//
// Note: The run must exist (foreign key constraint).
func (s *Store) WriteEffect(ctx context.Context, runID string, e ir.EffectRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO effects
		(run_id, seq, frame, kind, view_tag, view_name, event_name, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		e.Seq,
		e.Frame,
		e.Kind,
		int64(e.ViewTag),
		e.ViewName,
		e.EventName,
		e.Payload,
	)
	if err != nil {
		return fmt.Errorf("write effect %d: %w", e.Seq, err)
	}
	return nil
}
