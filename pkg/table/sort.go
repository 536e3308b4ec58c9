package table

import (
	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/ordering"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// SortOptions controls SortValues. The zero value sorts ascending on
// every column, places missing values last and applies no limit.
type SortOptions struct {
	// Ascending holds per-column direction flags. nil or a single flag
	// broadcasts to all sort columns; otherwise the length must equal
	// the sort column count. Direction only reorders present values;
	// missing placement is governed by Missing alone.
	Ascending []bool
	// Missing places missing values first or last (default last).
	Missing ordering.MissingPlacement
	// Limit keeps only the leading rows of the sort order, using top-K
	// selection when the limit is small relative to the row count. nil
	// means no limit; negative values fail validation; values beyond
	// the row count clamp silently.
	Limit *int
}

// SortValues returns the table stably sorted by the given columns.
func (t *Table) SortValues(by []string, opts SortOptions) (*Table, error) {
	if len(by) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "sort requires at least one column")
	}
	if err := t.checkColumns(by...); err != nil {
		return nil, err
	}
	asc, err := ordering.BroadcastAscending(opts.Ascending, len(by))
	if err != nil {
		return nil, err
	}
	k, err := ordering.ValidateLimit(opts.Limit, len(t.rows))
	if err != nil {
		return nil, err
	}

	cmps := make([]ordering.Comparator, len(by))
	for i, col := range by {
		cmps[i] = ordering.Column(t.rows, col, asc[i], opts.Missing)
	}
	cmp := ordering.Compose(cmps...)

	var perm []int
	if opts.Limit == nil {
		perm = ordering.SortPositions(len(t.rows), cmp)
	} else {
		perm = ordering.TopK(len(t.rows), cmp, k)
	}
	return t.takePositions(perm), nil
}

// NLargest returns the n rows with the largest values in the given
// columns, equivalent to a descending sort truncated to n.
func (t *Table) NLargest(n int, by ...string) (*Table, error) {
	return t.SortValues(by, SortOptions{Ascending: []bool{false}, Limit: &n})
}

// NSmallest returns the n rows with the smallest values in the given
// columns.
func (t *Table) NSmallest(n int, by ...string) (*Table, error) {
	return t.SortValues(by, SortOptions{Ascending: []bool{true}, Limit: &n})
}

// DropDuplicates returns the table with duplicate rows removed, keeping
// the first occurrence. Rows are compared by the composite key of the
// subset columns; an empty subset compares all columns.
func (t *Table) DropDuplicates(subset ...string) (*Table, error) {
	if len(subset) == 0 {
		subset = t.columns
	} else if err := t.checkColumns(subset...); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	vals := make([]value.Value, len(subset))
	var perm []int
	for i, r := range t.rows {
		for j, col := range subset {
			vals[j] = r.Get(col)
		}
		key := value.CompositeKey(vals)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		perm = append(perm, i)
	}
	return t.takePositions(perm), nil
}

// takePositions materializes a derived table from row positions,
// carrying the matching index labels.
func (t *Table) takePositions(perm []int) *Table {
	rows := make([]record.Row, len(perm))
	index := make([]value.Value, len(perm))
	for i, p := range perm {
		rows[i] = t.rows[p]
		index[i] = t.index[p]
	}
	return newTable(t.columns, rows, index)
}
