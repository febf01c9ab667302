package store

import (
	"context"
	"fmt"
)

// RunSummary aggregates a recorded run.
type RunSummary struct {
	RunID       string
	Frames      int
	FailedFrame int            // frames whose report carried an error
	LastEpoch   int64          // epoch of the last frame's pass, 0 if none
	Effects     map[string]int // by kind
	Views       int            // distinct views that received effects
}

// Summarize computes a RunSummary with aggregate queries.
func (s *Store) Summarize(ctx context.Context, runID string) (RunSummary, error) {
	sum := RunSummary{RunID: runID, Effects: map[string]int{}}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0),
		       COALESCE(MAX(epoch), 0)
		FROM frames
		WHERE run_id = ?
	`, runID).Scan(&sum.Frames, &sum.FailedFrame, &sum.LastEpoch)
	if err != nil {
		return sum, fmt.Errorf("summarize frames: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM effects
		WHERE run_id = ?
		GROUP BY kind
		ORDER BY kind ASC
	`, runID)
	if err != nil {
		return sum, fmt.Errorf("summarize effects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return sum, fmt.Errorf("scan effect count: %w", err)
		}
		sum.Effects[kind] = n
	}
	if err := rows.Err(); err != nil {
		return sum, fmt.Errorf("iterate effect counts: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT view_tag)
		FROM effects
		WHERE run_id = ? AND view_tag != 0
	`, runID).Scan(&sum.Views)
	if err != nil {
		return sum, fmt.Errorf("summarize views: %w", err)
	}
	return sum, nil
}
