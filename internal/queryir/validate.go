package queryir

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery is wrapped by every error Validate returns.
var ErrInvalidQuery = errors.New("invalid query")

// Validate checks a query against the table schemas. It returns every
// problem found, joined, or nil.
func Validate(q Query) error {
	v := &validator{}
	v.query(q)
	if len(v.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidQuery, errors.Join(v.problems...))
}

type validator struct {
	problems []error
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Errorf(format, args...))
}

func (v *validator) query(q Query) {
	switch query := q.(type) {
	case Select:
		v.selectQuery(query)
	case *Select:
		if query == nil {
			v.addf("nil query")
			return
		}
		v.selectQuery(*query)
	case nil:
		v.addf("nil query")
	default:
		v.addf("unknown query type %T", q)
	}
}

func (v *validator) selectQuery(sel Select) {
	schema, ok := Schemas[sel.From]
	if !ok {
		v.addf("unknown table %q", sel.From)
		return
	}
	if len(sel.Columns) == 0 {
		v.addf("select from %s: no columns", sel.From)
	}
	seen := make(map[string]bool, len(sel.Columns))
	for _, c := range sel.Columns {
		if _, ok := schema.Columns[c]; !ok {
			v.addf("unknown column %s.%s", sel.From, c)
		}
		if seen[c] {
			v.addf("duplicate column %s.%s", sel.From, c)
		}
		seen[c] = true
	}
	if sel.Limit < 0 {
		v.addf("negative limit %d", sel.Limit)
	}
	if sel.Filter != nil {
		v.predicate(sel.From, schema, sel.Filter)
	}
}

func (v *validator) predicate(table Table, schema Schema, p Predicate) {
	switch pred := p.(type) {
	case Equals:
		typ, ok := v.column(table, schema, pred.Column)
		if ok && !valueFits(typ, pred.Value) {
			v.addf("%s.%s: value %v (%T) does not fit the column", table, pred.Column, pred.Value, pred.Value)
		}
	case Between:
		typ, ok := v.column(table, schema, pred.Column)
		if ok && typ != ColumnInteger {
			v.addf("%s.%s: range needs an integer column", table, pred.Column)
		}
		if pred.Lo > pred.Hi {
			v.addf("%s.%s: empty range [%d, %d]", table, pred.Column, pred.Lo, pred.Hi)
		}
	case And:
		for _, sub := range pred.Predicates {
			v.predicate(table, schema, sub)
		}
	case nil:
		v.addf("nil predicate")
	default:
		v.addf("unknown predicate type %T", p)
	}
}

func (v *validator) column(table Table, schema Schema, name string) (ColumnType, bool) {
	typ, ok := schema.Columns[name]
	if !ok {
		v.addf("unknown column %s.%s", table, name)
	}
	return typ, ok
}

func valueFits(typ ColumnType, value any) bool {
	switch value.(type) {
	case string:
		return typ == ColumnText
	case int64:
		return typ == ColumnInteger || typ == ColumnReal
	case float64:
		return typ == ColumnReal
	default:
		return false
	}
}
