package grouping

import (
	"sort"

	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// Op is a named aggregation.
type Op uint8

const (
	// OpCount counts non-missing cells.
	OpCount Op = iota + 1
	// OpSum totals finite numeric cells.
	OpSum
	// OpMean averages finite numeric cells.
	OpMean
	// OpMin keeps the smallest non-missing cell under the value order.
	OpMin
	// OpMax keeps the largest non-missing cell under the value order.
	OpMax
)

// String returns the op name.
func (op Op) String() string {
	switch op {
	case OpCount:
		return "count"
	case OpSum:
		return "sum"
	case OpMean:
		return "mean"
	case OpMin:
		return "min"
	case OpMax:
		return "max"
	default:
		return "invalid"
	}
}

// OpFromName resolves an aggregation name.
func OpFromName(name string) (Op, error) {
	switch name {
	case "count":
		return OpCount, nil
	case "sum":
		return OpSum, nil
	case "mean", "avg":
		return OpMean, nil
	case "min":
		return OpMin, nil
	case "max":
		return OpMax, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeValidation, "unknown aggregation %q", name)
	}
}

// Reducer is a caller-supplied aggregation. It receives the group's raw
// cell values for the target column and the group's member rows, and
// returns an arbitrary cell value. Reducers force group
// materialization; the accumulator fast path never runs them.
type Reducer func(values []value.Value, rows []record.Row) value.Value

// AggSpec requests one aggregate over one column. When Reduce is set it
// takes precedence over Op.
type AggSpec struct {
	Column string
	Op     Op
	Reduce Reducer
}

// Aggregated is one group's aggregation result: the key tuple plus one
// value per requested spec.
type Aggregated struct {
	Keys   []value.Value
	Values []value.Value
}

// accumulator is the fixed-size running state for one named aggregate
// of one group. It never retains rows.
type accumulator struct {
	op    Op
	count int     // non-missing cells, for OpCount
	total float64 // running sum, for OpSum/OpMean
	nums  int     // contributing numeric cells, for OpMean
	seen  bool
	best  value.Value
}

func (a *accumulator) add(v value.Value) {
	switch a.op {
	case OpCount:
		if !v.IsMissing() {
			a.count++
		}
	case OpSum, OpMean:
		if v.IsNumber() {
			a.total += v.Float()
			a.nums++
			a.seen = true
		}
	case OpMin:
		if !v.IsMissing() {
			if !a.seen || value.Compare(v, a.best) < 0 {
				a.best = v
				a.seen = true
			}
		}
	case OpMax:
		if !v.IsMissing() {
			if !a.seen || value.Compare(v, a.best) > 0 {
				a.best = v
				a.seen = true
			}
		}
	}
}

func (a *accumulator) result() value.Value {
	switch a.op {
	case OpCount:
		return value.Int(a.count)
	case OpSum:
		if !a.seen {
			return value.Absent()
		}
		return value.Number(a.total)
	case OpMean:
		if !a.seen {
			return value.Absent()
		}
		return value.Number(a.total / float64(a.nums))
	case OpMin, OpMax:
		if !a.seen {
			return value.Absent()
		}
		return a.best
	default:
		return value.Absent()
	}
}

// Aggregate groups rows by the key columns and computes the requested
// aggregates per group. When every spec is a named op the pass streams
// through fixed-size accumulators without materializing per-group row
// lists; a custom reducer switches the whole call to the
// materialized-group path. A partition already sitting in the cache is
// reused either way, but a named-op call never builds one.
func Aggregate(rows []record.Row, keyColumns []string, specs []AggSpec, opts Options) ([]Aggregated, error) {
	if len(keyColumns) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "grouping requires at least one key column")
	}
	if len(specs) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "aggregation requires at least one spec")
	}
	for _, s := range specs {
		if s.Reduce == nil && (s.Op < OpCount || s.Op > OpMax) {
			return nil, errors.Newf(errors.ErrorTypeValidation, "invalid aggregation op for column %q", s.Column)
		}
	}

	named := true
	for _, s := range specs {
		if s.Reduce != nil {
			named = false
			break
		}
	}
	if named {
		if opts.Cache != nil && opts.TableID != "" {
			key := cacheKey(opts.TableID, keyColumns, opts.DropNA)
			if got, ok := opts.Cache.get(key); ok {
				return aggregateEntries(rows, orderEntries(got, opts.Sort), specs), nil
			}
		}
		return aggregateStreaming(rows, keyColumns, specs, opts)
	}

	entries, err := Partition(rows, keyColumns, opts)
	if err != nil {
		return nil, err
	}
	return aggregateEntries(rows, entries, specs), nil
}

// aggregateEntries reduces each materialized group per the specs.
func aggregateEntries(rows []record.Row, entries []*Entry, specs []AggSpec) []Aggregated {
	out := make([]Aggregated, len(entries))
	for i, e := range entries {
		vals := make([]value.Value, len(specs))
		for j, s := range specs {
			vals[j] = Apply(rows, e.Positions, s)
		}
		out[i] = Aggregated{Keys: e.Keys, Values: vals}
	}
	return out
}

// aggregateStreaming is the named-aggregate fast path: one pass, one
// accumulator per group per spec, no group membership retained.
func aggregateStreaming(rows []record.Row, keyColumns []string, specs []AggSpec, opts Options) ([]Aggregated, error) {
	type group struct {
		keys []value.Value
		accs []accumulator
	}
	lookup := make(map[string]*group)
	var groups []*group

	single := len(keyColumns) == 1
	keys := make([]value.Value, len(keyColumns))
	for _, row := range rows {
		missing := false
		for i, col := range keyColumns {
			keys[i] = row.Get(col)
			if keys[i].IsMissing() {
				missing = true
			}
		}
		if missing && opts.DropNA {
			continue
		}
		var mapKey string
		if single {
			mapKey = value.Fragment(keys[0])
		} else {
			mapKey = value.CompositeKey(keys)
		}
		g, ok := lookup[mapKey]
		if !ok {
			g = &group{keys: append([]value.Value(nil), keys...), accs: make([]accumulator, len(specs))}
			for i, s := range specs {
				g.accs[i].op = s.Op
			}
			lookup[mapKey] = g
			groups = append(groups, g)
		}
		for i, s := range specs {
			g.accs[i].add(row.Get(s.Column))
		}
	}

	if opts.Sort {
		sort.SliceStable(groups, func(i, j int) bool {
			return CompareKeyTuples(groups[i].keys, groups[j].keys) < 0
		})
	}

	out := make([]Aggregated, len(groups))
	for i, g := range groups {
		vals := make([]value.Value, len(g.accs))
		for j := range g.accs {
			vals[j] = g.accs[j].result()
		}
		out[i] = Aggregated{Keys: g.keys, Values: vals}
	}
	return out, nil
}

// Apply reduces one column over the given member positions with the
// spec's semantics. Exposed for composers that must re-aggregate raw
// source rows, such as pivot margins.
func Apply(rows []record.Row, positions []int, spec AggSpec) value.Value {
	if spec.Reduce != nil {
		vals := make([]value.Value, len(positions))
		members := make([]record.Row, len(positions))
		for i, p := range positions {
			vals[i] = rows[p].Get(spec.Column)
			members[i] = rows[p]
		}
		return spec.Reduce(vals, members)
	}
	acc := accumulator{op: spec.Op}
	for _, p := range positions {
		acc.add(rows[p].Get(spec.Column))
	}
	return acc.result()
}
