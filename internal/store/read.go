package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/animgraph/internal/ir"
)

// ErrRunNotFound is returned when a run id is not in the store.
var ErrRunNotFound = errors.New("run not found")

// Trace is everything recorded for one run.
type Trace struct {
	Run     ir.RunRecord
	Frames  []ir.FrameRecord
	Effects []ir.EffectRecord
}

// ListRuns returns all runs, oldest first (UUIDv7 ids sort by creation).
func (s *Store) ListRuns(ctx context.Context) ([]ir.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, source, digest
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.RunRecord{}
	for rows.Next() {
		var r ir.RunRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Source, &r.Digest); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recently created run.
func (s *Store) LatestRun(ctx context.Context) (ir.RunRecord, error) {
	var r ir.RunRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, digest
		FROM runs
		ORDER BY id COLLATE BINARY DESC
		LIMIT 1
	`).Scan(&r.ID, &r.Name, &r.Source, &r.Digest)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrRunNotFound
	}
	if err != nil {
		return r, fmt.Errorf("query latest run: %w", err)
	}
	return r, nil
}

// ReadTrace returns a run with its frames and effects in sequence order.
//
// Returns empty slices (not nil) if the run recorded nothing.
func (s *Store) ReadTrace(ctx context.Context, runID string) (Trace, error) {
	var t Trace
	err := s.db.QueryRowContext(ctx, `SELECT id, name, source, digest FROM runs WHERE id = ?`, runID).
		Scan(&t.Run.ID, &t.Run.Name, &t.Run.Source, &t.Run.Digest)
	if errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return t, fmt.Errorf("query run: %w", err)
	}

	if t.Frames, err = s.readFrames(ctx, runID); err != nil {
		return t, err
	}
	if t.Effects, err = s.QueryEffects(ctx, runID, EffectFilter{}); err != nil {
		return t, err
	}
	return t, nil
}

func (s *Store) readFrames(ctx context.Context, runID string) ([]ir.FrameRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, timestamp_ms, epoch, events, callbacks, visited, sinks, error
		FROM frames
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	frames := []ir.FrameRecord{}
	for rows.Next() {
		var f ir.FrameRecord
		if err := rows.Scan(&f.Seq, &f.TimestampMS, &f.Epoch, &f.Events, &f.Callbacks, &f.Visited, &f.Sinks, &f.Error); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frames: %w", err)
	}
	return frames, nil
}
