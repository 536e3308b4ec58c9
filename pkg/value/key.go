package value

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Fragment token tags. Each fragment is self-delimiting so fragments can
// be concatenated without a separator: the tag fixes the token grammar
// and text tokens carry an explicit byte-length prefix, which keeps a
// value ending in a tag-like substring from colliding with an adjacent
// fragment.
const (
	fragMissing = "m;"
	fragNumber  = "n:"
	fragBool    = "b:"
	fragText    = "s:"
)

// UnixNano can only represent instants between these bounds, roughly
// the years 1678 through 2262.
var (
	minNanoTime = time.Unix(0, math.MinInt64)
	maxNanoTime = time.Unix(0, math.MaxInt64)
)

// Canonical normalizes v for key purposes: timestamps become their
// UnixNano instant rendered as text (instants beyond the ~1678-2262
// UnixNano range use their RFC3339 rendering instead), Unset collapses
// into Absent, and Number/Text/Bool pass through unchanged. Two values
// are canonical-equal exactly when grouping and deduplication must
// treat them as the same key.
func Canonical(v Value) Value {
	switch v.kind {
	case KindTime:
		if v.t.Before(minNanoTime) || v.t.After(maxNanoTime) {
			return Text(v.Render())
		}
		return Text(strconv.FormatInt(v.t.UnixNano(), 10))
	case KindUnset:
		return Absent()
	case KindNumber, KindText, KindBool, KindAbsent:
		return v
	default:
		return Text(v.Render())
	}
}

// Fragment encodes one canonical value as a self-delimiting token.
// Equal fragments imply canonical-equal values and vice versa; the tag
// prefixes keep tokens collision-resistant across type boundaries, so
// the text "5" never collides with the number 5.
func Fragment(v Value) string {
	c := Canonical(v)
	switch c.kind {
	case KindAbsent:
		return fragMissing
	case KindNumber:
		f := c.num
		if f == 0 {
			// Negative zero compares equal to zero and must share its key.
			f = 0
		}
		return fragNumber + strconv.FormatFloat(f, 'g', -1, 64) + ";"
	case KindBool:
		if c.b {
			return fragBool + "1;"
		}
		return fragBool + "0;"
	default:
		return fragText + strconv.Itoa(len(c.str)) + ":" + c.str
	}
}

// CompositeKey concatenates the fragments of an ordered value tuple.
// Two tuples produce equal keys iff each positional pair is
// canonical-equal; grouping, deduplication and key matching all rely on
// that equivalence.
func CompositeKey(values []Value) string {
	var sb strings.Builder
	for _, v := range values {
		sb.WriteString(Fragment(v))
	}
	return sb.String()
}

// PairKey builds the composite key of exactly two values without
// allocating an intermediate slice. Used on the flat-map path of
// two-column frequency counting, which hashes one pair per row.
func PairKey(a, b Value) string {
	return Fragment(a) + Fragment(b)
}

// CanonicalEqual reports whether two values are equal under the
// canonical key rule.
func CanonicalEqual(a, b Value) bool {
	return Fragment(a) == Fragment(b)
}
