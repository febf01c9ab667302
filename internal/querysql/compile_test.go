package querysql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animgraph/internal/queryir"
)

func TestCompile_EffectsFilter(t *testing.T) {
	q := queryir.Select{
		From:    queryir.TableEffects,
		Columns: []string{"seq", "payload"},
		Filter: queryir.AllOf(
			queryir.Equals{Column: "run_id", Value: "run-1"},
			queryir.Equals{Column: "kind", Value: "view"},
			queryir.Between{Column: "frame", Lo: 2, Hi: 5},
		),
	}

	sql, params, err := Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT seq, payload FROM effects WHERE run_id = ? AND kind = ? AND frame BETWEEN ? AND ? ORDER BY seq ASC",
		sql)
	assert.Equal(t, []any{"run-1", "view", int64(2), int64(5)}, params)
}

func TestCompile_ValuesNeverInterpolated(t *testing.T) {
	q := &queryir.Select{
		From:    queryir.TableRuns,
		Columns: []string{"id"},
		Filter:  queryir.Equals{Column: "name", Value: "x'; DROP TABLE runs; --"},
	}

	sql, params, err := Compile(q)
	require.NoError(t, err)
	assert.NotContains(t, sql, "DROP")
	assert.Equal(t, "SELECT id FROM runs WHERE name = ? ORDER BY id COLLATE BINARY ASC", sql)
	assert.Len(t, params, 1)
}

func TestCompile_OrderByAlwaysPresent(t *testing.T) {
	for table := range queryir.Schemas {
		t.Run(string(table), func(t *testing.T) {
			sql, params, err := Compile(queryir.Select{
				From:    table,
				Columns: []string{queryir.Schemas[table].OrderBy},
			})
			require.NoError(t, err)
			assert.Contains(t, sql, " ORDER BY "+queryir.Schemas[table].OrderBy)
			assert.NotContains(t, sql, "WHERE")
			assert.Empty(t, params)
		})
	}
}

func TestCompile_LimitAndNestedAnd(t *testing.T) {
	q := queryir.Select{
		From:    queryir.TableFrames,
		Columns: []string{"seq"},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Column: "run_id", Value: "r"},
			queryir.And{Predicates: []queryir.Predicate{
				queryir.Equals{Column: "error", Value: ""},
				queryir.Equals{Column: "timestamp_ms", Value: 16.0},
			}},
			queryir.And{},
		}},
		Limit: 10,
	}

	sql, params, err := Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT seq FROM frames WHERE run_id = ? AND (error = ? AND timestamp_ms = ?) AND (1 = 1) ORDER BY seq ASC LIMIT ?",
		sql)
	assert.Equal(t, []any{"r", "", 16.0, int64(10)}, params)
}

func TestCompile_RejectsInvalidQuery(t *testing.T) {
	_, _, err := Compile(queryir.Select{From: "sync_firings", Columns: []string{"id"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, queryir.ErrInvalidQuery))

	_, _, err = Compile(nil)
	assert.True(t, errors.Is(err, queryir.ErrInvalidQuery))
}
