// Package value defines the cell value model shared by every engine in
// tabular: a closed tagged union over numbers, text, booleans, timestamps
// and the two missing variants, together with a total ordering and the
// canonical key encoding used for grouping and deduplication.
package value

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant of the union a Value holds.
type Kind uint8

const (
	// KindUnset marks a cell that was never assigned (undefined-equivalent).
	KindUnset Kind = iota
	// KindAbsent marks an explicit null.
	KindAbsent
	// KindNumber holds a float64.
	KindNumber
	// KindText holds a UTF-8 string.
	KindText
	// KindBool holds a boolean.
	KindBool
	// KindTime holds a timestamp instant.
	KindTime
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindUnset:
		return "unset"
	case KindAbsent:
		return "absent"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Value is a single table cell. The zero value is Unset. Exactly one
// variant is active; accessors for inactive variants return zero values.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	t    time.Time
}

// Number returns a Value holding f.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int returns a Value holding n as a float64.
func Int(n int) Value { return Value{kind: KindNumber, num: float64(n)} }

// Text returns a Value holding s.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Bool returns a Value holding b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Time returns a Value holding t.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Absent returns the explicit-null Value.
func Absent() Value { return Value{kind: KindAbsent} }

// Unset returns the never-assigned Value.
func Unset() Value { return Value{} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is Absent or Unset. Both variants are
// missing for comparison and aggregation purposes; they stay distinct
// only on read/write paths.
func (v Value) IsMissing() bool { return v.kind == KindAbsent || v.kind == KindUnset }

// IsNumber reports whether v holds a finite number. NaN and infinities
// are deliberately excluded; they never contribute to aggregates.
func (v Value) IsNumber() bool {
	return v.kind == KindNumber && !math.IsNaN(v.num) && !math.IsInf(v.num, 0)
}

// Float returns the numeric payload, or 0 for non-number variants.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.num
}

// Str returns the text payload, or "" for non-text variants.
func (v Value) Str() string {
	if v.kind != KindText {
		return ""
	}
	return v.str
}

// Truth returns the boolean payload, or false for non-bool variants.
func (v Value) Truth() bool {
	if v.kind != KindBool {
		return false
	}
	return v.b
}

// Instant returns the timestamp payload, or the zero time for non-time
// variants.
func (v Value) Instant() time.Time {
	if v.kind != KindTime {
		return time.Time{}
	}
	return v.t
}

// Render returns the deterministic text rendering of v. Missing values
// render as the empty string, numbers use the shortest round-trippable
// form, and timestamps use RFC3339Nano in UTC. Render is the fallback
// used for cross-type comparison, so it must stay locale-independent.
func (v Value) Render() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Compare imposes a total order over values:
//
//   - missing values sort after all present values; two missing values
//     compare equal regardless of Absent/Unset
//   - same-kind present values compare natively (numeric, byte-wise
//     text, false < true, timestamp instant)
//   - cross-kind present values fall back to byte-wise comparison of
//     their text renderings
//
// The cross-kind fallback uses code-point order rather than locale
// collation so that the order is deterministic everywhere.
func Compare(a, b Value) int {
	am, bm := a.IsMissing(), b.IsMissing()
	switch {
	case am && bm:
		return 0
	case am:
		return 1
	case bm:
		return -1
	}
	if a.kind == b.kind {
		switch a.kind {
		case KindNumber:
			return compareFloats(a.num, b.num)
		case KindText:
			return strings.Compare(a.str, b.str)
		case KindBool:
			return compareBools(a.b, b.b)
		case KindTime:
			return a.t.Compare(b.t)
		}
	}
	return strings.Compare(a.Render(), b.Render())
}

func compareFloats(a, b float64) int {
	// NaN sorts after every other number so the order stays total.
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
