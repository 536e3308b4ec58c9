// Package pivot reshapes grouped aggregates into a wide layout,
// spreading one column's distinct values into output columns and
// optionally adding grand-total margins.
package pivot

import (
	"sort"
	"strconv"

	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/grouping"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// Options controls a pivot composition.
type Options struct {
	// Index lists the columns whose distinct tuples become output rows.
	Index []string
	// Values lists the columns to aggregate.
	Values []string
	// Columns optionally names a spread column whose distinct values
	// become output columns. Empty means no spread.
	Columns string
	// Op is the named aggregation applied to each value column; Reduce
	// overrides it with a custom reducer when set.
	Op     grouping.Op
	Reduce grouping.Reducer
	// DropNA filters out rows with a missing value in any involved
	// column before aggregating. Default true.
	DropNA bool
	// Sort orders rows by index tuple and spread columns by value.
	// Default true.
	Sort bool
	// Margins adds a grand-total row and, with a spread column, margin
	// columns. Each margin re-aggregates the filtered source rows.
	Margins bool
	// MarginsName labels margin rows and columns. Default "All".
	MarginsName string
	// FillValue, when set, replaces every absent cell in value and
	// margin columns.
	FillValue *value.Value
}

// DefaultOptions returns pivot options with mean aggregation, dropna
// and sorting enabled, and the conventional margins label.
func DefaultOptions(index, values []string) Options {
	return Options{
		Index:       index,
		Values:      values,
		Op:          grouping.OpMean,
		DropNA:      true,
		Sort:        true,
		MarginsName: "All",
	}
}

// Result is the wide table produced by Compose: ordered column names
// and one row per distinct index tuple (plus a margins row when
// requested).
type Result struct {
	Columns []string
	Rows    []record.Row
}

// Compose builds the pivot.
func Compose(rows []record.Row, opts Options) (Result, error) {
	if len(opts.Index) == 0 {
		return Result{}, errors.New(errors.ErrorTypeValidation, "pivot requires at least one index column")
	}
	if len(opts.Values) == 0 {
		return Result{}, errors.New(errors.ErrorTypeValidation, "pivot requires at least one value column")
	}
	if opts.MarginsName == "" {
		opts.MarginsName = "All"
	}

	filtered := filterInvolved(rows, opts)

	specs := make([]grouping.AggSpec, len(opts.Values))
	for i, v := range opts.Values {
		specs[i] = grouping.AggSpec{Column: v, Op: opts.Op, Reduce: opts.Reduce}
	}

	if opts.Columns == "" {
		return composeNarrow(filtered, specs, opts)
	}
	return composeSpread(filtered, specs, opts)
}

// filterInvolved applies dropna over the union of index, value and
// spread columns.
func filterInvolved(rows []record.Row, opts Options) []record.Row {
	if !opts.DropNA {
		return rows
	}
	involved := append([]string(nil), opts.Index...)
	involved = append(involved, opts.Values...)
	if opts.Columns != "" {
		involved = append(involved, opts.Columns)
	}
	out := make([]record.Row, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, col := range involved {
			if row.Get(col).IsMissing() {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

// composeNarrow handles the no-spread case: the grouped aggregate is
// the pivot, with an optional margins row.
func composeNarrow(rows []record.Row, specs []grouping.AggSpec, opts Options) (Result, error) {
	grouped, err := grouping.Aggregate(rows, opts.Index, specs, grouping.Options{DropNA: opts.DropNA, Sort: opts.Sort})
	if err != nil {
		return Result{}, err
	}

	columns := append([]string(nil), opts.Index...)
	columns = append(columns, opts.Values...)

	out := make([]record.Row, 0, len(grouped)+1)
	for _, g := range grouped {
		row := make(record.Row, len(columns))
		for i, col := range opts.Index {
			row[col] = g.Keys[i]
		}
		for i, col := range opts.Values {
			row[col] = g.Values[i]
		}
		out = append(out, row)
	}

	if opts.Margins {
		all := allPositions(len(rows))
		row := make(record.Row, len(columns))
		row[opts.Index[0]] = value.Text(opts.MarginsName)
		for _, col := range opts.Index[1:] {
			row[col] = value.Text("")
		}
		for i, col := range opts.Values {
			row[col] = grouping.Apply(rows, all, specs[i])
		}
		out = append(out, row)
	}

	fillAbsent(out, opts.Values, opts.FillValue)
	return Result{Columns: columns, Rows: out}, nil
}

// composeSpread handles the spread-column case: distinct spread values
// become output columns and each grouped aggregate lands in the cell at
// (index tuple, spread value).
func composeSpread(rows []record.Row, specs []grouping.AggSpec, opts Options) (Result, error) {
	groupCols := append(append([]string(nil), opts.Index...), opts.Columns)
	grouped, err := grouping.Aggregate(rows, groupCols, specs, grouping.Options{DropNA: opts.DropNA, Sort: opts.Sort})
	if err != nil {
		return Result{}, err
	}

	spread := distinctSpread(rows, opts)

	columns := append([]string(nil), opts.Index...)
	taken := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		taken[c] = struct{}{}
	}
	// Distinct spread values can share a rendering (the text "10" and
	// the number 10), so names go through the same dedup as margins.
	cellCol := make(map[string]map[string]string, len(opts.Values))
	for _, v := range opts.Values {
		cellCol[v] = make(map[string]string, len(spread))
		for _, d := range spread {
			name := dedupName(spreadColumnName(v, d, len(opts.Values) > 1), taken)
			taken[name] = struct{}{}
			columns = append(columns, name)
			cellCol[v][value.Fragment(d)] = name
		}
	}

	// One output row per distinct index tuple, in grouped order.
	rowLookup := make(map[string]record.Row)
	var order []string
	var keyTuples [][]value.Value
	for _, g := range grouped {
		idxKeys := g.Keys[:len(opts.Index)]
		spreadVal := g.Keys[len(opts.Index)]
		ck := value.CompositeKey(idxKeys)
		row, ok := rowLookup[ck]
		if !ok {
			row = make(record.Row, len(columns))
			for i, col := range opts.Index {
				row[col] = idxKeys[i]
			}
			rowLookup[ck] = row
			order = append(order, ck)
			keyTuples = append(keyTuples, idxKeys)
		}
		for i, v := range opts.Values {
			if name, ok := cellCol[v][value.Fragment(spreadVal)]; ok {
				row[name] = g.Values[i]
			}
		}
	}

	valueCols := append([]string(nil), columns[len(opts.Index):]...)
	out := make([]record.Row, len(order))
	for i, ck := range order {
		out[i] = rowLookup[ck]
	}

	if opts.Margins {
		columns, out = addSpreadMargins(rows, specs, opts, columns, out, keyTuples, spread, cellCol, &valueCols)
	}

	fillAbsent(out, valueCols, opts.FillValue)
	return Result{Columns: columns, Rows: out}, nil
}

// distinctSpread enumerates the spread column's distinct values over
// the filtered rows, honoring dropna and the sort option.
func distinctSpread(rows []record.Row, opts Options) []value.Value {
	seen := make(map[string]struct{})
	var out []value.Value
	for _, row := range rows {
		v := row.Get(opts.Columns)
		if v.IsMissing() && opts.DropNA {
			continue
		}
		key := value.Fragment(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	if opts.Sort {
		sort.SliceStable(out, func(i, j int) bool {
			return value.Compare(out[i], out[j]) < 0
		})
	}
	return out
}

// addSpreadMargins appends per-row margin columns and the grand-total
// row. Every margin re-aggregates the filtered source rows matching the
// relevant subset; combining already-aggregated cells would be wrong
// for mean, min and max.
func addSpreadMargins(rows []record.Row, specs []grouping.AggSpec, opts Options, columns []string, out []record.Row, keyTuples [][]value.Value, spread []value.Value, cellCol map[string]map[string]string, valueCols *[]string) ([]string, []record.Row) {
	taken := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		taken[c] = struct{}{}
	}
	marginCols := make([]string, len(opts.Values))
	for i, v := range opts.Values {
		base := opts.MarginsName
		if len(opts.Values) > 1 {
			base = v + "_" + opts.MarginsName
		}
		name := dedupName(base, taken)
		taken[name] = struct{}{}
		marginCols[i] = name
		columns = append(columns, name)
		*valueCols = append(*valueCols, name)
	}

	// Member positions per index tuple and per spread value.
	byIndex := make(map[string][]int)
	bySpread := make(map[string][]int)
	for pos, row := range rows {
		idxKeys := make([]value.Value, len(opts.Index))
		missing := false
		for i, col := range opts.Index {
			idxKeys[i] = row.Get(col)
			if idxKeys[i].IsMissing() {
				missing = true
			}
		}
		if !missing || !opts.DropNA {
			ck := value.CompositeKey(idxKeys)
			byIndex[ck] = append(byIndex[ck], pos)
		}
		sv := row.Get(opts.Columns)
		if !sv.IsMissing() || !opts.DropNA {
			bySpread[value.Fragment(sv)] = append(bySpread[value.Fragment(sv)], pos)
		}
	}

	for i, row := range out {
		positions := byIndex[value.CompositeKey(keyTuples[i])]
		for j := range opts.Values {
			row[marginCols[j]] = grouping.Apply(rows, positions, specs[j])
		}
	}

	total := make(record.Row, len(columns))
	total[opts.Index[0]] = value.Text(opts.MarginsName)
	for _, col := range opts.Index[1:] {
		total[col] = value.Text("")
	}
	all := allPositions(len(rows))
	for i, v := range opts.Values {
		for _, d := range spread {
			total[cellCol[v][value.Fragment(d)]] = grouping.Apply(rows, bySpread[value.Fragment(d)], specs[i])
		}
		total[marginCols[i]] = grouping.Apply(rows, all, specs[i])
	}
	out = append(out, total)
	return columns, out
}

// spreadColumnName names the output column for one (value column,
// spread value) cell. A single value column uses the spread value's
// rendering directly; multiple value columns prefix it.
func spreadColumnName(valueCol string, d value.Value, multi bool) string {
	label := d.Render()
	if d.IsMissing() {
		label = "null"
	}
	if multi {
		return valueCol + "_" + label
	}
	return label
}

// dedupName suffixes an incrementing counter until the name is free.
func dedupName(name string, taken map[string]struct{}) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for i := 1; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

func fillAbsent(rows []record.Row, valueCols []string, fill *value.Value) {
	if fill == nil {
		return
	}
	for _, row := range rows {
		for _, col := range valueCols {
			if row.Get(col).IsMissing() {
				row[col] = *fill
			}
		}
	}
}

func allPositions(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
