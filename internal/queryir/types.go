package queryir

// Query is a read over one trace table.
type Query interface {
	queryNode()
}

// Predicate is a filter condition on the rows of a Select.
//
// Predicate types:
//   - Equals: column = value
//   - Between: lo <= column <= hi
//   - And: all predicates hold
type Predicate interface {
	predicateNode()
}

// Table is a trace table name.
type Table string

const (
	TableRuns    Table = "runs"
	TableFrames  Table = "frames"
	TableEffects Table = "effects"
)

// ColumnType is the storage class of a column.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnInteger
	ColumnReal
)

// Schema describes the queryable columns of a table and the column its
// rows are ordered by.
type Schema struct {
	Columns map[string]ColumnType
	OrderBy string
}

// Schemas lists every queryable table.
var Schemas = map[Table]Schema{
	TableRuns: {
		Columns: map[string]ColumnType{
			"id":     ColumnText,
			"name":   ColumnText,
			"source": ColumnText,
			"digest": ColumnText,
		},
		OrderBy: "id",
	},
	TableFrames: {
		Columns: map[string]ColumnType{
			"run_id":       ColumnText,
			"seq":          ColumnInteger,
			"timestamp_ms": ColumnReal,
			"epoch":        ColumnInteger,
			"events":       ColumnInteger,
			"callbacks":    ColumnInteger,
			"visited":      ColumnInteger,
			"sinks":        ColumnInteger,
			"error":        ColumnText,
		},
		OrderBy: "seq",
	},
	TableEffects: {
		Columns: map[string]ColumnType{
			"run_id":     ColumnText,
			"seq":        ColumnInteger,
			"frame":      ColumnInteger,
			"kind":       ColumnText,
			"view_tag":   ColumnInteger,
			"view_name":  ColumnText,
			"event_name": ColumnText,
			"payload":    ColumnText,
		},
		OrderBy: "seq",
	},
}

// Select returns Columns from rows of From that match Filter.
//
//	Select{
//	  From:    TableEffects,
//	  Columns: []string{"seq", "payload"},
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Column: "run_id", Value: "0190..."},
//	    Equals{Column: "kind", Value: "view"},
//	    Between{Column: "frame", Lo: 2, Hi: 5},
//	  }},
//	}
//
// translates to
//
//	SELECT seq, payload FROM effects
//	WHERE run_id = ? AND kind = ? AND frame BETWEEN ? AND ?
//	ORDER BY seq ASC
//
// Columns must be non-empty; there is no SELECT *. A Limit of zero means
// no limit.
type Select struct {
	From    Table
	Columns []string
	Filter  Predicate // nil matches every row
	Limit   int
}

func (Select) queryNode() {}

// Equals matches rows whose column equals Value. Value must be a string,
// an int64 or a float64 matching the column type.
type Equals struct {
	Column string
	Value  any
}

func (Equals) predicateNode() {}

// Between matches rows whose integer column lies in [Lo, Hi].
type Between struct {
	Column string
	Lo, Hi int64
}

func (Between) predicateNode() {}

// And is a conjunction. An empty And matches every row.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// AllOf returns the conjunction of the non-nil predicates, or nil when
// there are none.
func AllOf(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
