// Package record defines the row representation shared by the table
// layer and the ordering, grouping and counting engines. A Row maps
// column names to cell values; column order lives with the owning
// table, not the row.
package record

import (
	"sort"

	"github.com/ajitpratap0/tabular/pkg/value"
)

// Row is one table row. Columns not present in the map are Unset.
type Row map[string]value.Value

// Get returns the cell for column, or Unset when the row has no entry
// for it.
func (r Row) Get(column string) value.Value {
	if v, ok := r[column]; ok {
		return v
	}
	return value.Unset()
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// InferColumns returns the column names observed across rows in
// first-seen order. Go maps do not preserve insertion order, so names
// that first appear in the same row are taken alphabetically; names
// introduced by later rows append after all earlier ones.
func InferColumns(rows []Row) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range rows {
		fresh := make([]string, 0, len(r))
		for k := range r {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		cols = append(cols, fresh...)
	}
	return cols
}
