package queryir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	q := Select{
		From:    TableEffects,
		Columns: []string{"seq", "frame", "payload"},
		Filter: And{Predicates: []Predicate{
			Equals{Column: "run_id", Value: "run-1"},
			Equals{Column: "view_tag", Value: int64(11)},
			Between{Column: "frame", Lo: 1, Hi: 1},
		}},
		Limit: 5,
	}
	assert.NoError(t, Validate(q))
	assert.NoError(t, Validate(&q))
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"nil query", nil, "nil query"},
		{"nil pointer", (*Select)(nil), "nil query"},
		{"unknown table", Select{From: "actions", Columns: []string{"id"}}, `unknown table "actions"`},
		{"no columns", Select{From: TableRuns}, "no columns"},
		{"unknown column", Select{From: TableRuns, Columns: []string{"id", "owner"}}, "unknown column runs.owner"},
		{"duplicate column", Select{From: TableRuns, Columns: []string{"id", "id"}}, "duplicate column runs.id"},
		{"negative limit", Select{From: TableRuns, Columns: []string{"id"}, Limit: -1}, "negative limit -1"},
		{
			"filter on unknown column",
			Select{From: TableFrames, Columns: []string{"seq"}, Filter: Equals{Column: "kind", Value: "view"}},
			"unknown column frames.kind",
		},
		{
			"string for integer column",
			Select{From: TableEffects, Columns: []string{"seq"}, Filter: Equals{Column: "frame", Value: "2"}},
			"does not fit the column",
		},
		{
			"plain int is rejected",
			Select{From: TableEffects, Columns: []string{"seq"}, Filter: Equals{Column: "frame", Value: 2}},
			"does not fit the column",
		},
		{
			"range on text column",
			Select{From: TableEffects, Columns: []string{"seq"}, Filter: Between{Column: "kind", Lo: 0, Hi: 1}},
			"range needs an integer column",
		},
		{
			"empty range",
			Select{From: TableEffects, Columns: []string{"seq"}, Filter: Between{Column: "frame", Lo: 4, Hi: 2}},
			"empty range [4, 2]",
		},
		{
			"nil inside and",
			Select{From: TableEffects, Columns: []string{"seq"}, Filter: And{Predicates: []Predicate{nil}}},
			"nil predicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.query)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidQuery))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	err := Validate(Select{
		From:    TableFrames,
		Columns: []string{"nope"},
		Filter:  Between{Column: "seq", Lo: 3, Hi: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown column frames.nope")
	assert.Contains(t, err.Error(), "empty range [3, 1]")
}

func TestAllOf(t *testing.T) {
	eq := Equals{Column: "kind", Value: "view"}

	assert.Nil(t, AllOf())
	assert.Nil(t, AllOf(nil, nil))
	assert.Equal(t, eq, AllOf(nil, eq))
	assert.Equal(t, And{Predicates: []Predicate{eq, eq}}, AllOf(eq, nil, eq))
}
