package table

import (
	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// Clip returns the table with finite numeric cells clamped to
// [lower, upper]. Either bound may be nil; supplying both with
// lower > upper fails validation. Non-numeric and missing cells are
// untouched.
func (t *Table) Clip(lower, upper *float64) (*Table, error) {
	if lower != nil && upper != nil && *lower > *upper {
		return nil, errors.Newf(errors.ErrorTypeValidation, "clip lower bound %v exceeds upper bound %v", *lower, *upper)
	}
	rows := make([]record.Row, len(t.rows))
	for i, r := range t.rows {
		row := r.Clone()
		for _, col := range t.columns {
			v := row.Get(col)
			if !v.IsNumber() {
				continue
			}
			f := v.Float()
			if lower != nil && f < *lower {
				row[col] = value.Number(*lower)
			} else if upper != nil && f > *upper {
				row[col] = value.Number(*upper)
			}
		}
		rows[i] = row
	}
	return newTable(t.columns, rows, t.index), nil
}

// Replace returns the table with every cell canonical-equal to one of
// old replaced by replacement. The array form requires an accompanying
// replacement value; nil fails validation.
func (t *Table) Replace(old []value.Value, replacement *value.Value) (*Table, error) {
	if replacement == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "array-form replace requires a replacement value")
	}
	targets := make(map[string]struct{}, len(old))
	for _, v := range old {
		targets[value.Fragment(v)] = struct{}{}
	}
	rows := make([]record.Row, len(t.rows))
	for i, r := range t.rows {
		row := r.Clone()
		for _, col := range t.columns {
			if _, ok := targets[value.Fragment(row.Get(col))]; ok {
				row[col] = *replacement
			}
		}
		rows[i] = row
	}
	return newTable(t.columns, rows, t.index), nil
}
