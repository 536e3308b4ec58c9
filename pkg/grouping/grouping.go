// Package grouping partitions rows into groups by one or more key
// columns and aggregates them, either through fixed-size streaming
// accumulators (named aggregates) or by materializing group membership
// (custom reducers).
package grouping

import (
	"sort"

	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// Options controls a grouping pass.
type Options struct {
	// DropNA excludes any row with a missing value in any key column
	// from every group. Default true.
	DropNA bool
	// Sort orders groups by their key tuples; when false groups keep
	// first-seen order. Default true.
	Sort bool
	// TableID is the opaque identity of the source table, used with
	// Cache to memoize partitions. Empty disables memoization.
	TableID string
	// Cache memoizes partitions across repeated grouping calls against
	// the same table, key columns and DropNA setting. Optional.
	Cache *Cache
}

// DefaultOptions returns the default grouping options.
func DefaultOptions() Options {
	return Options{DropNA: true, Sort: true}
}

// Entry is one group: its key tuple and the positions of its member
// rows in the source slice, in source order.
type Entry struct {
	Keys      []value.Value
	Positions []int
}

// Partition groups rows by the key columns in a single pass. The
// single-key case keys the lookup map on the value's own fragment,
// skipping composite-key concatenation; multi-key grouping uses
// composite keys. Group key values are the first-seen originals.
func Partition(rows []record.Row, keyColumns []string, opts Options) ([]*Entry, error) {
	if len(keyColumns) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "grouping requires at least one key column")
	}

	if opts.Cache != nil && opts.TableID != "" {
		key := cacheKey(opts.TableID, keyColumns, opts.DropNA)
		if got, ok := opts.Cache.get(key); ok {
			return orderEntries(got, opts.Sort), nil
		}
		entries := partition(rows, keyColumns, opts.DropNA)
		opts.Cache.put(key, entries)
		return orderEntries(entries, opts.Sort), nil
	}

	return orderEntries(partition(rows, keyColumns, opts.DropNA), opts.Sort), nil
}

func partition(rows []record.Row, keyColumns []string, dropna bool) []*Entry {
	lookup := make(map[string]*Entry)
	var entries []*Entry

	single := len(keyColumns) == 1
	keys := make([]value.Value, len(keyColumns))
	for pos, row := range rows {
		missing := false
		for i, col := range keyColumns {
			keys[i] = row.Get(col)
			if keys[i].IsMissing() {
				missing = true
			}
		}
		if missing && dropna {
			continue
		}
		var mapKey string
		if single {
			mapKey = value.Fragment(keys[0])
		} else {
			mapKey = value.CompositeKey(keys)
		}
		e, ok := lookup[mapKey]
		if !ok {
			e = &Entry{Keys: append([]value.Value(nil), keys...)}
			lookup[mapKey] = e
			entries = append(entries, e)
		}
		e.Positions = append(e.Positions, pos)
	}
	return entries
}

// orderEntries returns entries in the requested order without mutating
// the input slice, which may be shared with the cache.
func orderEntries(entries []*Entry, sorted bool) []*Entry {
	out := append([]*Entry(nil), entries...)
	if sorted {
		sort.SliceStable(out, func(i, j int) bool {
			return CompareKeyTuples(out[i].Keys, out[j].Keys) < 0
		})
	}
	return out
}

// CompareKeyTuples orders two group-key tuples positionally by the
// value total order, breaking a full-prefix tie by length (shorter
// first). Length only differs across heterogeneous group shapes, which
// normal grouping never produces.
func CompareKeyTuples(a, b []value.Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := value.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Size returns one Aggregated per group whose single value is the
// member-row count. Unlike the named-aggregate fast path this
// materializes the partition.
func Size(rows []record.Row, keyColumns []string, opts Options) ([]Aggregated, error) {
	entries, err := Partition(rows, keyColumns, opts)
	if err != nil {
		return nil, err
	}
	out := make([]Aggregated, len(entries))
	for i, e := range entries {
		out[i] = Aggregated{
			Keys:   e.Keys,
			Values: []value.Value{value.Int(len(e.Positions))},
		}
	}
	return out, nil
}
