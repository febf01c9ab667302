package store

import (
	"context"
	"fmt"

	"github.com/roach88/animgraph/internal/ir"
	"github.com/roach88/animgraph/internal/queryir"
	"github.com/roach88/animgraph/internal/querysql"
)

// EffectFilter narrows the effects of a run. Zero fields match everything.
type EffectFilter struct {
	Kind      string     // "view" or "event"
	ViewTag   ir.ViewTag // only effects addressed to this view
	EventName string
	FromFrame int64 // inclusive; 0 means the first frame
	ToFrame   int64 // inclusive; 0 means the last frame
}

var effectColumns = []string{"seq", "frame", "kind", "view_tag", "view_name", "event_name", "payload"}

// Query builds the trace query for the effects of runID matching f.
func (f EffectFilter) Query(runID string) queryir.Select {
	preds := []queryir.Predicate{queryir.Equals{Column: "run_id", Value: runID}}
	if f.Kind != "" {
		preds = append(preds, queryir.Equals{Column: "kind", Value: f.Kind})
	}
	if f.ViewTag != 0 {
		preds = append(preds, queryir.Equals{Column: "view_tag", Value: int64(f.ViewTag)})
	}
	if f.EventName != "" {
		preds = append(preds, queryir.Equals{Column: "event_name", Value: f.EventName})
	}
	if f.FromFrame > 0 || f.ToFrame > 0 {
		hi := f.ToFrame
		if hi == 0 {
			hi = 1<<63 - 1
		}
		preds = append(preds, queryir.Between{Column: "frame", Lo: f.FromFrame, Hi: hi})
	}
	return queryir.Select{
		From:    queryir.TableEffects,
		Columns: effectColumns,
		Filter:  queryir.AllOf(preds...),
	}
}

// QueryEffects returns the effects of a run that match f, in sequence
// order. An unknown run yields an empty slice.
func (s *Store) QueryEffects(ctx context.Context, runID string, f EffectFilter) ([]ir.EffectRecord, error) {
	query, params, err := querysql.Compile(f.Query(runID))
	if err != nil {
		return nil, fmt.Errorf("compile effects query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query effects: %w", err)
	}
	defer rows.Close()

	effects := []ir.EffectRecord{}
	for rows.Next() {
		var e ir.EffectRecord
		var tag int64
		if err := rows.Scan(&e.Seq, &e.Frame, &e.Kind, &tag, &e.ViewName, &e.EventName, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan effect: %w", err)
		}
		e.ViewTag = ir.ViewTag(tag)
		effects = append(effects, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate effects: %w", err)
	}
	return effects, nil
}
