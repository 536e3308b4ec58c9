// Package testutil provides deterministic dataset generation shared by
// tests and the benchmark command.
package testutil

import (
	"fmt"
	"math"

	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/table"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// LCG returns a deterministic pseudo-random source in [0, 1). The
// constants are the classic numerical-recipes parameters, matching the
// generator used by the project's benchmark companions so datasets are
// reproducible across implementations.
func LCG(seed uint32) func() float64 {
	state := seed
	return func() float64 {
		state = 1664525*state + 1013904223
		return float64(state) / float64(1<<32)
	}
}

// DatasetOptions selects dataset variants.
type DatasetOptions struct {
	// Skew concentrates 70% of rows in group "A".
	Skew bool
	// Wide adds ten extra numeric columns.
	Wide bool
	// HighCardinality gives user_key and session_key near-unique values.
	HighCardinality bool
	// IncludeMissing nulls out city and segment on a fixed cadence.
	IncludeMissing bool
}

var (
	groups   = []string{"A", "B", "C", "D", "E", "F"}
	cities   = []string{"Austin", "Seattle", "Boston", "Denver", "Miami"}
	segments = []string{"consumer", "enterprise", "startup"}
)

// BuildDataset generates rowCount rows of the benchmark dataset, seeded
// at 42.
func BuildDataset(rowCount int, opts DatasetOptions) *table.Table {
	rnd := LCG(42)
	rows := make([]record.Row, rowCount)
	for idx := 0; idx < rowCount; idx++ {
		val := math.Floor(rnd() * 1000)
		weight := math.Round((rnd()*5+0.5)*100) / 100

		group := groups[idx%len(groups)]
		if opts.Skew && idx%100 < 70 {
			group = "A"
		}
		city := value.Text(cities[idx%len(cities)])
		if opts.IncludeMissing && idx%23 == 0 {
			city = value.Absent()
		}
		segment := value.Text(segments[idx%len(segments)])
		if opts.IncludeMissing && idx%31 == 0 {
			segment = value.Absent()
		}
		userMod, sessionMul := idx%120, 0
		if opts.HighCardinality {
			userMod = idx
			sessionMul = idx * 7
		} else {
			sessionMul = idx % 300
		}

		bucket := "low"
		switch {
		case val > 700:
			bucket = "high"
		case val > 350:
			bucket = "mid"
		}

		row := record.Row{
			"id":          value.Int(idx),
			"group":       value.Text(group),
			"city":        city,
			"segment":     segment,
			"value":       value.Number(val),
			"weight":      value.Number(weight),
			"revenue":     value.Number(math.Round(val*weight*100) / 100),
			"active":      value.Bool(idx%3 == 0),
			"bucket":      value.Text(bucket),
			"user_key":    value.Text(fmt.Sprintf("u_%d", userMod)),
			"session_key": value.Text(fmt.Sprintf("s_%d", sessionMul)),
		}
		if opts.Wide {
			for i := 0; i < 10; i++ {
				row[fmt.Sprintf("extra_%d", i)] = value.Number(math.Mod(val+float64(i), float64(50+i)))
			}
		}
		rows[idx] = row
	}
	return table.FromRows(rows)
}
