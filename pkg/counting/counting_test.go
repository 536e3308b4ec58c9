package counting

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

func textRows(column string, vals ...string) []record.Row {
	rows := make([]record.Row, len(vals))
	for i, v := range vals {
		rows[i] = record.Row{column: value.Text(v)}
	}
	return rows
}

func TestCountSingleColumn(t *testing.T) {
	rows := textRows("c", "x", "y", "x", "x")
	res, err := Count(rows, []string{"c"}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "x", res.Entries[0].Values[0].Str())
	assert.Equal(t, 3, res.Entries[0].Count)
	assert.Equal(t, "y", res.Entries[1].Values[0].Str())
	assert.Equal(t, 1, res.Entries[1].Count)
	assert.Equal(t, 4, res.Considered)
}

func TestCountTotalsMatchConsidered(t *testing.T) {
	rows := []record.Row{
		{"a": value.Text("p"), "b": value.Number(1)},
		{"a": value.Text("p"), "b": value.Absent()},
		{"a": value.Text("q"), "b": value.Number(1)},
		{"a": value.Absent(), "b": value.Number(2)},
		{"a": value.Text("p"), "b": value.Number(1)},
	}
	for _, dropna := range []bool{true, false} {
		opts := DefaultOptions()
		opts.DropNA = dropna
		res, err := Count(rows, []string{"a", "b"}, opts)
		require.NoError(t, err)
		total := 0
		for _, e := range res.Entries {
			total += e.Count
		}
		assert.Equal(t, res.Considered, total, "dropna=%v", dropna)
		if dropna {
			assert.Equal(t, 3, res.Considered)
		} else {
			assert.Equal(t, 5, res.Considered)
		}
	}
}

func TestCountSortAndTieBreak(t *testing.T) {
	rows := textRows("c", "b", "a", "b", "a", "c")
	res, err := Count(rows, []string{"c"}, DefaultOptions())
	require.NoError(t, err)
	// a and b tie at 2; the tuple tie-break is ascending regardless of
	// count direction.
	assert.Equal(t, "a", res.Entries[0].Values[0].Str())
	assert.Equal(t, "b", res.Entries[1].Values[0].Str())
	assert.Equal(t, "c", res.Entries[2].Values[0].Str())

	opts := DefaultOptions()
	opts.Ascending = true
	res, err = Count(rows, []string{"c"}, opts)
	require.NoError(t, err)
	assert.Equal(t, "c", res.Entries[0].Values[0].Str())
	assert.Equal(t, "a", res.Entries[1].Values[0].Str())
	assert.Equal(t, "b", res.Entries[2].Values[0].Str())
}

func TestCountUnsortedKeepsFirstSeenOrder(t *testing.T) {
	rows := textRows("c", "z", "a", "z", "m")
	opts := DefaultOptions()
	opts.Sort = false
	res, err := Count(rows, []string{"c"}, opts)
	require.NoError(t, err)
	assert.Equal(t, "z", res.Entries[0].Values[0].Str())
	assert.Equal(t, "a", res.Entries[1].Values[0].Str())
	assert.Equal(t, "m", res.Entries[2].Values[0].Str())

	two := 2
	opts.Limit = &two
	res, err = Count(rows, []string{"c"}, opts)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "z", res.Entries[0].Values[0].Str())
	assert.Equal(t, "a", res.Entries[1].Values[0].Str())
}

func TestCountLimit(t *testing.T) {
	rows := textRows("c", "x", "y", "x", "x", "y", "z")
	one := 1
	opts := DefaultOptions()
	opts.Limit = &one
	res, err := Count(rows, []string{"c"}, opts)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "x", res.Entries[0].Values[0].Str())
	assert.Equal(t, 6, res.Considered, "the limit truncates entries, not the denominator")

	neg := -2
	opts.Limit = &neg
	_, err = Count(rows, []string{"c"}, opts)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestCountMissingAsCategory(t *testing.T) {
	rows := []record.Row{
		{"c": value.Text("x")},
		{"c": value.Absent()},
		{},
		{"c": value.Text("x")},
	}
	opts := DefaultOptions()
	opts.DropNA = false
	res, err := Count(rows, []string{"c"}, opts)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2, "absent and unset collapse into one missing category")
	assert.Equal(t, 2, res.Entries[0].Count)
	assert.Equal(t, 2, res.Entries[1].Count)
}

func TestCountNoSubset(t *testing.T) {
	_, err := Count(nil, nil, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func pairRows(n, firstCard int) []record.Row {
	rows := make([]record.Row, n)
	for i := range rows {
		rows[i] = record.Row{
			"a": value.Text(fmt.Sprintf("a%03d", i%firstCard)),
			"b": value.Text(fmt.Sprintf("b%d", i%7)),
		}
	}
	return rows
}

func TestChoosePairStrategy(t *testing.T) {
	low := pairRows(1000, 3)
	assert.Equal(t, pairNested, choosePairStrategy(low, "a", "b", true))

	high := pairRows(1000, 900)
	assert.Equal(t, pairFlat, choosePairStrategy(high, "a", "b", true))

	assert.Equal(t, pairNested, choosePairStrategy(nil, "a", "b", true),
		"no countable rows defaults to the nested layout")

	allMissing := []record.Row{{"a": value.Absent(), "b": value.Text("x")}}
	assert.Equal(t, pairNested, choosePairStrategy(allMissing, "a", "b", true))
}

func TestPairStrategiesAgree(t *testing.T) {
	for name, rows := range map[string][]record.Row{
		"low_card":  pairRows(1000, 3),
		"high_card": pairRows(1000, 900),
	} {
		t.Run(name, func(t *testing.T) {
			flat, flatConsidered := countPairFlat(rows, "a", "b", true)
			nested, nestedConsidered := countPairNested(rows, "a", "b", true)
			assert.Equal(t, flatConsidered, nestedConsidered)
			require.Equal(t, len(flat), len(nested))
			for i := range flat {
				assert.Equal(t, flat[i].Count, nested[i].Count, "entry %d", i)
				assert.Zero(t, value.Compare(flat[i].Values[0], nested[i].Values[0]))
				assert.Zero(t, value.Compare(flat[i].Values[1], nested[i].Values[1]))
			}
		})
	}
}

func TestPairDropNA(t *testing.T) {
	rows := []record.Row{
		{"a": value.Text("x"), "b": value.Number(1)},
		{"a": value.Text("x"), "b": value.Absent()},
		{"a": value.Absent(), "b": value.Number(1)},
		{"a": value.Text("x"), "b": value.Number(1)},
	}
	res, err := Count(rows, []string{"a", "b"}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Entries, 1, "a row missing either column is excluded")
	assert.Equal(t, 2, res.Entries[0].Count)
	assert.Equal(t, 2, res.Considered)
}
