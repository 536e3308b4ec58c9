// Package ordering builds row comparators and computes sort
// permutations, including adaptive top-K selection that avoids a full
// sort when only a prefix of the order is needed.
package ordering

import (
	"sort"
	"strings"

	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// MissingPlacement controls where missing values land in a sort. It is
// independent of the ascending flag: flipping the direction reorders
// present values only.
type MissingPlacement uint8

const (
	// MissingLast places missing values after all present values.
	MissingLast MissingPlacement = iota
	// MissingFirst places missing values before all present values.
	MissingFirst
)

// Comparator compares the rows at positions i and j. Negative means row
// i orders first, zero means tied.
type Comparator func(i, j int) int

// Column builds a comparator for one column. The first non-missing
// value in the column selects a kind-specialized comparison; rows whose
// values do not match that kind fall back to the generic total order,
// so specialization never changes the result, only its cost.
func Column(rows []record.Row, column string, ascending bool, missing MissingPlacement) Comparator {
	base := baseComparator(rows, column)
	return func(i, j int) int {
		a, b := rows[i].Get(column), rows[j].Get(column)
		am, bm := a.IsMissing(), b.IsMissing()
		if am || bm {
			switch {
			case am && bm:
				return 0
			case am:
				if missing == MissingLast {
					return 1
				}
				return -1
			default:
				if missing == MissingLast {
					return -1
				}
				return 1
			}
		}
		c := base(a, b)
		if !ascending {
			c = -c
		}
		return c
	}
}

// baseComparator picks the comparison for present values by inspecting
// the first non-missing cell in the column.
func baseComparator(rows []record.Row, column string) func(a, b value.Value) int {
	kind := value.KindUnset
	for _, r := range rows {
		v := r.Get(column)
		if !v.IsMissing() {
			kind = v.Kind()
			break
		}
	}
	switch kind {
	case value.KindNumber:
		return func(a, b value.Value) int {
			if a.Kind() == value.KindNumber && b.Kind() == value.KindNumber {
				av, bv := a.Float(), b.Float()
				switch {
				case av < bv:
					return -1
				case av > bv:
					return 1
				case av == bv:
					return 0
				}
			}
			return value.Compare(a, b)
		}
	case value.KindText:
		return func(a, b value.Value) int {
			if a.Kind() == value.KindText && b.Kind() == value.KindText {
				return strings.Compare(a.Str(), b.Str())
			}
			return value.Compare(a, b)
		}
	case value.KindBool:
		return func(a, b value.Value) int {
			if a.Kind() == value.KindBool && b.Kind() == value.KindBool {
				av, bv := a.Truth(), b.Truth()
				switch {
				case av == bv:
					return 0
				case !av:
					return -1
				default:
					return 1
				}
			}
			return value.Compare(a, b)
		}
	case value.KindTime:
		return func(a, b value.Value) int {
			if a.Kind() == value.KindTime && b.Kind() == value.KindTime {
				return a.Instant().Compare(b.Instant())
			}
			return value.Compare(a, b)
		}
	default:
		return value.Compare
	}
}

// Compose combines comparators lexicographically: the first non-zero
// comparison decides. When every comparator reports a tie the rows stay
// in their original relative order, which keeps sorts stable.
func Compose(cmps ...Comparator) Comparator {
	if len(cmps) == 1 {
		return cmps[0]
	}
	return func(i, j int) int {
		for _, cmp := range cmps {
			if c := cmp(i, j); c != 0 {
				return c
			}
		}
		return 0
	}
}

// SortPositions returns the stable sort permutation of positions
// 0..n-1 under cmp.
func SortPositions(n int, cmp Comparator) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return cmp(perm[a], perm[b]) < 0
	})
	return perm
}

// BroadcastAscending normalizes per-column ascending flags. A nil or
// single-element slice broadcasts to all columns; otherwise the length
// must equal the column count.
func BroadcastAscending(flags []bool, columns int) ([]bool, error) {
	switch len(flags) {
	case 0:
		out := make([]bool, columns)
		for i := range out {
			out[i] = true
		}
		return out, nil
	case 1:
		out := make([]bool, columns)
		for i := range out {
			out[i] = flags[0]
		}
		return out, nil
	case columns:
		return flags, nil
	default:
		return nil, errors.ShapeMismatch("ascending flags", columns, len(flags))
	}
}

// ValidateLimit checks a result limit against the row count. nil means
// unlimited and returns n. Negative limits fail validation; limits
// beyond n clamp silently.
func ValidateLimit(limit *int, n int) (int, error) {
	if limit == nil {
		return n, nil
	}
	k := *limit
	if k < 0 {
		return 0, errors.Newf(errors.ErrorTypeValidation, "limit must be a non-negative integer, got %d", k)
	}
	if k > n {
		return n, nil
	}
	return k, nil
}
