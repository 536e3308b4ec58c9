// Package tabular is an in-memory tabular data engine: immutable
// row-oriented tables with stable multi-key sorting, grouped
// aggregation, frequency counting and pivot composition over a small
// tagged-union cell model.
//
// # Architecture
//
// The module splits into a value model, four independent engines and a
// table facade:
//
//	pkg/value    - Cell values (number, text, bool, timestamp, missing),
//	               a missing-last total order and self-delimiting
//	               canonical keys for map grouping
//	pkg/record   - The row representation shared by the engines
//	pkg/ordering - Stable multi-key comparison, full sorts and adaptive
//	               top-K selection
//	pkg/grouping - Partitioning, streaming accumulators, custom reducers
//	               and a per-table partition cache
//	pkg/counting - Distinct-value frequency tables with an adaptive
//	               two-column strategy
//	pkg/pivot    - Wide reshaping with spread columns and recomputed
//	               grand-total margins
//	pkg/table    - The immutable Table type tying the engines together
//	pkg/formats  - CSV and JSON codecs at the IO boundary
//
// Tables have value semantics: every operation returns a new table and
// shared row storage is never mutated.
//
// # Quick start
//
//	import (
//	    "github.com/ajitpratap0/tabular/pkg/grouping"
//	    "github.com/ajitpratap0/tabular/pkg/record"
//	    "github.com/ajitpratap0/tabular/pkg/table"
//	    "github.com/ajitpratap0/tabular/pkg/value"
//	)
//
//	t := table.FromRows([]record.Row{
//	    {"group": value.Text("A"), "value": value.Number(20)},
//	    {"group": value.Text("A"), "value": value.Number(10)},
//	    {"group": value.Text("B"), "value": value.Number(5)},
//	})
//	g, _ := t.GroupBy([]string{"group"}, table.NewGroupByOptions())
//	out, _ := g.Agg(table.Agg{Column: "value", Op: grouping.OpMean})
//
// The cmd/tabular CLI exposes format conversion and the standard
// benchmark case set.
package tabular
