// Package counting computes distinct-value frequency tables over one or
// more key columns. The two-column case picks between a flat
// composite-key map and a nested two-level map based on sampled key
// cardinality; both strategies produce identical results.
package counting

import (
	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/ordering"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// Options controls a value-counts pass.
type Options struct {
	// Normalize reports proportions of considered rows instead of raw
	// counts. The division happens at the presentation layer; the
	// engine always returns integer counts plus the denominator.
	Normalize bool
	// DropNA excludes rows with any missing value among the subset
	// columns, from the counts and from the normalize denominator.
	// Default true.
	DropNA bool
	// Sort orders entries by count (descending unless Ascending), ties
	// broken by comparing the value tuples ascending. When false,
	// entries keep first-seen order. Default true.
	Sort bool
	// Ascending flips the count comparison only, not the tie-break.
	Ascending bool
	// Limit truncates the result. nil means unlimited; negative values
	// fail validation; values beyond the entry count clamp silently.
	Limit *int
}

// DefaultOptions returns the default counting options.
func DefaultOptions() Options {
	return Options{DropNA: true, Sort: true}
}

// Entry is one distinct value combination and its frequency.
type Entry struct {
	Values []value.Value
	Count  int
}

// Result carries the ordered entries plus the number of rows that were
// considered, which is the denominator for proportions.
type Result struct {
	Entries    []Entry
	Considered int
}

// Count computes the frequency table of the subset columns over rows.
func Count(rows []record.Row, subset []string, opts Options) (Result, error) {
	if len(subset) == 0 {
		return Result{}, errors.New(errors.ErrorTypeValidation, "value counts requires at least one subset column")
	}

	var entries []*Entry
	var considered int
	switch len(subset) {
	case 1:
		entries, considered = countSingle(rows, subset[0], opts.DropNA)
	case 2:
		switch choosePairStrategy(rows, subset[0], subset[1], opts.DropNA) {
		case pairFlat:
			entries, considered = countPairFlat(rows, subset[0], subset[1], opts.DropNA)
		default:
			entries, considered = countPairNested(rows, subset[0], subset[1], opts.DropNA)
		}
	default:
		entries, considered = countComposite(rows, subset, opts.DropNA)
	}

	k, err := ordering.ValidateLimit(opts.Limit, len(entries))
	if err != nil {
		return Result{}, err
	}

	if !opts.Sort {
		out := make([]Entry, k)
		for i := 0; i < k; i++ {
			out[i] = *entries[i]
		}
		return Result{Entries: out, Considered: considered}, nil
	}

	cmp := func(i, j int) int {
		a, b := entries[i], entries[j]
		if a.Count != b.Count {
			c := -1
			if a.Count < b.Count {
				c = 1
			}
			if opts.Ascending {
				c = -c
			}
			return c
		}
		return compareTuples(a.Values, b.Values)
	}
	perm := ordering.TopK(len(entries), cmp, k)
	out := make([]Entry, len(perm))
	for i, p := range perm {
		out[i] = *entries[p]
	}
	return Result{Entries: out, Considered: considered}, nil
}

func compareTuples(a, b []value.Value) int {
	for i := range a {
		if i >= len(b) {
			break
		}
		if c := value.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func countSingle(rows []record.Row, column string, dropna bool) ([]*Entry, int) {
	lookup := make(map[string]*Entry)
	var entries []*Entry
	considered := 0
	for _, row := range rows {
		v := row.Get(column)
		if v.IsMissing() && dropna {
			continue
		}
		considered++
		key := value.Fragment(v)
		e, ok := lookup[key]
		if !ok {
			e = &Entry{Values: []value.Value{v}}
			lookup[key] = e
			entries = append(entries, e)
		}
		e.Count++
	}
	return entries, considered
}

func countComposite(rows []record.Row, subset []string, dropna bool) ([]*Entry, int) {
	lookup := make(map[string]*Entry)
	var entries []*Entry
	considered := 0
	vals := make([]value.Value, len(subset))
	for _, row := range rows {
		missing := false
		for i, col := range subset {
			vals[i] = row.Get(col)
			if vals[i].IsMissing() {
				missing = true
			}
		}
		if missing && dropna {
			continue
		}
		considered++
		key := value.CompositeKey(vals)
		e, ok := lookup[key]
		if !ok {
			e = &Entry{Values: append([]value.Value(nil), vals...)}
			lookup[key] = e
			entries = append(entries, e)
		}
		e.Count++
	}
	return entries, considered
}
