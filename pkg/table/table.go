// Package table provides the row-oriented Table aggregate and the
// operation surface over the ordering, grouping, counting and pivot
// engines. Tables have value semantics: every shape-changing operation
// returns a new Table, and row storage shared between derived tables is
// never mutated.
package table

import (
	"github.com/google/uuid"

	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/grouping"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// Table is an immutable-per-operation collection of rows with an
// ordered, unique column list and one index label per row. The identity
// id keys the grouping memo cache; a derived table always gets a fresh
// identity, so stale partitions can never be served.
type Table struct {
	id      string
	columns []string
	rows    []record.Row
	index   []value.Value
	cache   *grouping.Cache
}

func newTable(columns []string, rows []record.Row, index []value.Value) *Table {
	return &Table{
		id:      uuid.NewString(),
		columns: columns,
		rows:    rows,
		index:   index,
		cache:   grouping.NewCache(),
	}
}

func rangeIndex(n int) []value.Value {
	out := make([]value.Value, n)
	for i := range out {
		out[i] = value.Int(i)
	}
	return out
}

// FromRows builds a table from a row list. Columns are inferred in
// first-seen order across all rows; the index defaults to a range.
// Rows are copied, so the caller's slices and maps stay caller-owned.
func FromRows(rows []record.Row) *Table {
	owned := make([]record.Row, len(rows))
	for i, r := range rows {
		owned[i] = r.Clone()
	}
	return newTable(record.InferColumns(owned), owned, rangeIndex(len(owned)))
}

// Column is one named column of cell values, for column-major
// construction.
type Column struct {
	Name   string
	Values []value.Value
}

// FromColumns builds a table from column-major input. Column names must
// be unique and all columns must have equal length.
func FromColumns(columns []Column) (*Table, error) {
	names := make([]string, len(columns))
	seen := make(map[string]struct{}, len(columns))
	n := 0
	for i, c := range columns {
		if _, ok := seen[c.Name]; ok {
			return nil, errors.Newf(errors.ErrorTypeDuplicate, "duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		names[i] = c.Name
		if i == 0 {
			n = len(c.Values)
		} else if len(c.Values) != n {
			return nil, errors.ShapeMismatch("column "+c.Name, n, len(c.Values))
		}
	}
	rows := make([]record.Row, n)
	for i := range rows {
		row := make(record.Row, len(columns))
		for _, c := range columns {
			row[c.Name] = c.Values[i]
		}
		rows[i] = row
	}
	return newTable(names, rows, rangeIndex(n)), nil
}

// WithIndex returns a copy of the table with explicit index labels.
// The label count must equal the row count and labels must be numbers
// or text.
func (t *Table) WithIndex(labels []value.Value) (*Table, error) {
	if len(labels) != len(t.rows) {
		return nil, errors.ShapeMismatch("index", len(t.rows), len(labels))
	}
	for _, l := range labels {
		if k := l.Kind(); k != value.KindNumber && k != value.KindText {
			return nil, errors.Newf(errors.ErrorTypeValidation, "index labels must be numbers or text, got %s", k)
		}
	}
	return newTable(t.columns, t.rows, append([]value.Value(nil), labels...)), nil
}

// Len returns the row count.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the column count.
func (t *Table) Width() int { return len(t.columns) }

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Index returns the index labels.
func (t *Table) Index() []value.Value {
	return append([]value.Value(nil), t.index...)
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Row returns a copy of the row at position i.
func (t *Table) Row(i int) record.Row {
	return t.rows[i].Clone()
}

// At returns the cell at row i, column name. Columns absent from the
// row but present on the table read as Unset.
func (t *Table) At(i int, column string) (value.Value, error) {
	if err := t.checkColumns(column); err != nil {
		return value.Unset(), err
	}
	return t.rows[i].Get(column), nil
}

// ColumnValues returns all cells of one column in row order.
func (t *Table) ColumnValues(name string) ([]value.Value, error) {
	if err := t.checkColumns(name); err != nil {
		return nil, err
	}
	out := make([]value.Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Get(name)
	}
	return out, nil
}

// checkColumns fails with a column-not-found error for the first name
// absent from the table. Every operation validates its referenced
// columns through this before scanning any data.
func (t *Table) checkColumns(names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return errors.ColumnNotFound(name)
		}
	}
	return nil
}

// Select returns a table restricted to the given columns, in the given
// order. Row storage is shared.
func (t *Table) Select(columns ...string) (*Table, error) {
	if err := t.checkColumns(columns...); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			return nil, errors.Newf(errors.ErrorTypeDuplicate, "duplicate column name %q", c)
		}
		seen[c] = struct{}{}
	}
	return newTable(append([]string(nil), columns...), t.rows, t.index), nil
}

// Drop returns a table without the given columns.
func (t *Table) Drop(columns ...string) (*Table, error) {
	if err := t.checkColumns(columns...); err != nil {
		return nil, err
	}
	dropped := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		dropped[c] = struct{}{}
	}
	var kept []string
	for _, c := range t.columns {
		if _, ok := dropped[c]; !ok {
			kept = append(kept, c)
		}
	}
	return newTable(kept, t.rows, t.index), nil
}

// Rename returns a table with columns renamed per mapping. Every source
// name must exist and the resulting column list must stay unique.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	for from := range mapping {
		if !t.HasColumn(from) {
			return nil, errors.ColumnNotFound(from)
		}
	}
	renamed := make([]string, len(t.columns))
	seen := make(map[string]struct{}, len(t.columns))
	for i, c := range t.columns {
		name := c
		if to, ok := mapping[c]; ok {
			name = to
		}
		if _, ok := seen[name]; ok {
			return nil, errors.Newf(errors.ErrorTypeDuplicate, "rename would duplicate column name %q", name)
		}
		seen[name] = struct{}{}
		renamed[i] = name
	}
	rows := make([]record.Row, len(t.rows))
	for i, r := range t.rows {
		row := make(record.Row, len(r))
		for _, c := range t.columns {
			name := c
			if to, ok := mapping[c]; ok {
				name = to
			}
			if v, ok := r[c]; ok {
				row[name] = v
			}
		}
		rows[i] = row
	}
	return newTable(renamed, rows, t.index), nil
}

// Filter returns the rows for which pred returns true. The predicate
// borrows each row for the duration of the call and must not retain or
// modify it.
func (t *Table) Filter(pred func(record.Row) bool) *Table {
	var rows []record.Row
	var index []value.Value
	for i, r := range t.rows {
		if pred(r) {
			rows = append(rows, r)
			index = append(index, t.index[i])
		}
	}
	return newTable(t.columns, rows, index)
}

// Head returns the first n rows.
func (t *Table) Head(n int) (*Table, error) {
	if n < 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "head count must be non-negative, got %d", n)
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return newTable(t.columns, t.rows[:n], t.index[:n]), nil
}

// Tail returns the last n rows.
func (t *Table) Tail(n int) (*Table, error) {
	if n < 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "tail count must be non-negative, got %d", n)
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	from := len(t.rows) - n
	return newTable(t.columns, t.rows[from:], t.index[from:]), nil
}

// ResetIndex moves the index labels into a new leading column and
// replaces the index with a fresh range. name defaults to "index".
func (t *Table) ResetIndex(name string) (*Table, error) {
	if name == "" {
		name = "index"
	}
	if t.HasColumn(name) {
		return nil, errors.Newf(errors.ErrorTypeDuplicate, "reset index would duplicate column name %q", name)
	}
	columns := append([]string{name}, t.columns...)
	rows := make([]record.Row, len(t.rows))
	for i, r := range t.rows {
		row := r.Clone()
		row[name] = t.index[i]
		rows[i] = row
	}
	return newTable(columns, rows, rangeIndex(len(rows))), nil
}
