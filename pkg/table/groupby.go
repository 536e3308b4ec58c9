package table

import (
	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/grouping"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// GroupByOptions controls a grouping. Use NewGroupByOptions for the
// defaults (dropna and sorted group order enabled).
type GroupByOptions struct {
	// DropNA excludes rows with a missing value in any key column from
	// every group rather than forming a missing-key group.
	DropNA bool
	// Sort orders groups by key tuple; false keeps first-seen order.
	Sort bool
	// AsIndex moves the single group key into the result index instead
	// of a column. Multi-key groupings have no single-index form and
	// fail loudly.
	AsIndex bool
}

// NewGroupByOptions returns the default grouping options.
func NewGroupByOptions() GroupByOptions {
	return GroupByOptions{DropNA: true, Sort: true}
}

// GroupBy is a deferred grouping of a table by key columns. Repeated
// aggregations against the same handle reuse the table's partition
// cache.
type GroupBy struct {
	table *Table
	keys  []string
	opts  GroupByOptions
}

// GroupBy validates the key columns and returns a grouping handle.
func (t *Table) GroupBy(keys []string, opts GroupByOptions) (*GroupBy, error) {
	if len(keys) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "groupby requires at least one key column")
	}
	if err := t.checkColumns(keys...); err != nil {
		return nil, err
	}
	return &GroupBy{table: t, keys: append([]string(nil), keys...), opts: opts}, nil
}

// Agg is one requested aggregate: a named op or custom reducer over a
// column, optionally under an output name (defaults to the column).
type Agg struct {
	Column string
	Op     grouping.Op
	Reduce grouping.Reducer
	As     string
}

// Agg computes the requested aggregates per group. When every aggregate
// is a named op the engine streams through accumulators without
// materializing group membership.
func (g *GroupBy) Agg(aggs ...Agg) (*Table, error) {
	if len(aggs) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "agg requires at least one aggregate")
	}
	specs := make([]grouping.AggSpec, len(aggs))
	names := make([]string, len(aggs))
	for i, a := range aggs {
		if err := g.table.checkColumns(a.Column); err != nil {
			return nil, err
		}
		specs[i] = grouping.AggSpec{Column: a.Column, Op: a.Op, Reduce: a.Reduce}
		names[i] = a.As
		if names[i] == "" {
			names[i] = a.Column
		}
	}

	grouped, err := grouping.Aggregate(g.table.rows, g.keys, specs, g.groupingOptions())
	if err != nil {
		return nil, err
	}
	return g.materialize(grouped, names)
}

// Size returns one row per group with a "size" column holding the
// member-row count.
func (g *GroupBy) Size() (*Table, error) {
	grouped, err := grouping.Size(g.table.rows, g.keys, g.groupingOptions())
	if err != nil {
		return nil, err
	}
	return g.materialize(grouped, []string{"size"})
}

func (g *GroupBy) groupingOptions() grouping.Options {
	return grouping.Options{
		DropNA:  g.opts.DropNA,
		Sort:    g.opts.Sort,
		TableID: g.table.id,
		Cache:   g.table.cache,
	}
}

// materialize builds the result table from per-group aggregates. Keys
// become leading columns, or the index when AsIndex is set on a
// single-key grouping.
func (g *GroupBy) materialize(grouped []grouping.Aggregated, resultNames []string) (*Table, error) {
	if g.opts.AsIndex && len(g.keys) > 1 {
		return nil, errors.Newf(errors.ErrorTypeUnsupported,
			"single-index output is not supported for a %d-key grouping; use AsIndex=false", len(g.keys))
	}

	var columns []string
	if !g.opts.AsIndex {
		columns = append(columns, g.keys...)
	}
	seen := make(map[string]struct{}, len(columns)+len(resultNames))
	for _, c := range columns {
		seen[c] = struct{}{}
	}
	for _, name := range resultNames {
		if _, ok := seen[name]; ok {
			return nil, errors.Newf(errors.ErrorTypeDuplicate, "aggregation would duplicate column name %q", name)
		}
		seen[name] = struct{}{}
		columns = append(columns, name)
	}

	rows := make([]record.Row, len(grouped))
	index := make([]value.Value, len(grouped))
	for i, gr := range grouped {
		row := make(record.Row, len(columns))
		if g.opts.AsIndex {
			index[i] = indexLabel(gr.Keys[0])
		} else {
			for j, key := range g.keys {
				row[key] = gr.Keys[j]
			}
		}
		for j, name := range resultNames {
			row[name] = gr.Values[j]
		}
		rows[i] = row
	}
	if !g.opts.AsIndex {
		index = rangeIndex(len(rows))
	}
	return newTable(columns, rows, index), nil
}

// indexLabel coerces a group key into a valid index label kind. Numbers
// and text pass through; anything else takes its text rendering.
func indexLabel(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindNumber, value.KindText:
		return v
	default:
		return value.Text(v.Render())
	}
}
