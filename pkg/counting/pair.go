package counting

import (
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// pairStrategy selects the internal representation for two-column
// counting. Both strategies produce identical entries in identical
// first-seen order; the choice is invisible in output.
type pairStrategy uint8

const (
	// pairFlat keys one map on the concatenated pair fragment. Wins
	// when the first column is high-cardinality and nesting buys no
	// lookup sharing.
	pairFlat pairStrategy = iota
	// pairNested keys a two-level map, first-column fragment then
	// second. Wins when the first column has few distinct values,
	// because the outer fragment is hashed once per distinct value
	// instead of once per row.
	pairNested
)

const (
	// cardinalitySampleSize bounds the sampling pass that estimates the
	// first column's cardinality.
	cardinalitySampleSize = 512
	// highCardinalityRatio is the distinct-to-sampled ratio above which
	// the first column counts as high-cardinality.
	highCardinalityRatio = 0.35
)

// choosePairStrategy samples up to the first cardinalitySampleSize
// countable rows and compares the first column's distinct-key ratio
// against highCardinalityRatio.
func choosePairStrategy(rows []record.Row, first, second string, dropna bool) pairStrategy {
	distinct := make(map[string]struct{})
	sampled := 0
	for _, row := range rows {
		if sampled >= cardinalitySampleSize {
			break
		}
		a, b := row.Get(first), row.Get(second)
		if dropna && (a.IsMissing() || b.IsMissing()) {
			continue
		}
		sampled++
		distinct[value.Fragment(a)] = struct{}{}
	}
	if sampled == 0 {
		return pairNested
	}
	if float64(len(distinct))/float64(sampled) > highCardinalityRatio {
		return pairFlat
	}
	return pairNested
}

func countPairFlat(rows []record.Row, first, second string, dropna bool) ([]*Entry, int) {
	lookup := make(map[string]*Entry)
	var entries []*Entry
	considered := 0
	for _, row := range rows {
		a, b := row.Get(first), row.Get(second)
		if dropna && (a.IsMissing() || b.IsMissing()) {
			continue
		}
		considered++
		key := value.PairKey(a, b)
		e, ok := lookup[key]
		if !ok {
			e = &Entry{Values: []value.Value{a, b}}
			lookup[key] = e
			entries = append(entries, e)
		}
		e.Count++
	}
	return entries, considered
}

func countPairNested(rows []record.Row, first, second string, dropna bool) ([]*Entry, int) {
	lookup := make(map[string]map[string]*Entry)
	var entries []*Entry
	considered := 0
	for _, row := range rows {
		a, b := row.Get(first), row.Get(second)
		if dropna && (a.IsMissing() || b.IsMissing()) {
			continue
		}
		considered++
		outer := value.Fragment(a)
		inner, ok := lookup[outer]
		if !ok {
			inner = make(map[string]*Entry)
			lookup[outer] = inner
		}
		key := value.Fragment(b)
		e, ok := inner[key]
		if !ok {
			e = &Entry{Values: []value.Value{a, b}}
			inner[key] = e
			entries = append(entries, e)
		}
		e.Count++
	}
	return entries, considered
}
