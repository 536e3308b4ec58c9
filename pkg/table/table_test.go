package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/grouping"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

func scoresTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := FromColumns([]Column{
		{Name: "name", Values: []value.Value{
			value.Text("ann"), value.Text("bob"), value.Text("cid"), value.Text("dee"),
		}},
		{Name: "score", Values: []value.Value{
			value.Number(30), value.Number(50), value.Number(40), value.Number(20),
		}},
	})
	require.NoError(t, err)
	return tbl
}

func TestFromRowsInference(t *testing.T) {
	rows := []record.Row{
		{"b": value.Number(1), "a": value.Number(2)},
		{"c": value.Text("x")},
	}
	tbl := FromRows(rows)
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns(),
		"first-seen across rows, alphabetical within a row")
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 3, tbl.Width())

	// The source rows stay caller-owned.
	rows[0]["a"] = value.Number(99)
	v, err := tbl.At(0, "a")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v.Float())
}

func TestFromColumnsErrors(t *testing.T) {
	_, err := FromColumns([]Column{
		{Name: "a", Values: []value.Value{value.Number(1)}},
		{Name: "a", Values: []value.Value{value.Number(2)}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicate))

	_, err = FromColumns([]Column{
		{Name: "a", Values: []value.Value{value.Number(1), value.Number(2)}},
		{Name: "b", Values: []value.Value{value.Number(3)}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))
}

func TestWithIndex(t *testing.T) {
	tbl := scoresTable(t)
	labels := []value.Value{value.Text("w"), value.Text("x"), value.Text("y"), value.Text("z")}
	indexed, err := tbl.WithIndex(labels)
	require.NoError(t, err)
	assert.Equal(t, labels, indexed.Index())

	_, err = tbl.WithIndex(labels[:2])
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))

	_, err = tbl.WithIndex([]value.Value{
		value.Bool(true), value.Bool(false), value.Bool(true), value.Bool(false),
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestUnsetCellsReadAsMissing(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"a": value.Number(1), "b": value.Number(2)},
		{"a": value.Number(3)},
	})
	v, err := tbl.At(1, "b")
	require.NoError(t, err)
	assert.True(t, v.IsMissing())

	_, err = tbl.At(0, "nope")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))
}

func TestSelectDropRename(t *testing.T) {
	tbl := scoresTable(t)

	sel, err := tbl.Select("score")
	require.NoError(t, err)
	assert.Equal(t, []string{"score"}, sel.Columns())

	_, err = tbl.Select("score", "score")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicate))

	_, err = tbl.Select("missing")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))

	dropped, err := tbl.Drop("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"score"}, dropped.Columns())

	renamed, err := tbl.Rename(map[string]string{"score": "points"})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "points"}, renamed.Columns())
	v, err := renamed.At(1, "points")
	require.NoError(t, err)
	assert.Equal(t, 50.0, v.Float())

	_, err = tbl.Rename(map[string]string{"score": "name"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicate))

	_, err = tbl.Rename(map[string]string{"nope": "x"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))
}

func TestFilterCarriesIndexLabels(t *testing.T) {
	tbl := scoresTable(t)
	kept := tbl.Filter(func(r record.Row) bool {
		return r.Get("score").Float() >= 40
	})
	assert.Equal(t, 2, kept.Len())
	assert.Equal(t, []value.Value{value.Int(1), value.Int(2)}, kept.Index())
}

func TestHeadTail(t *testing.T) {
	tbl := scoresTable(t)

	head, err := tbl.Head(2)
	require.NoError(t, err)
	assert.Equal(t, 2, head.Len())
	v, err := head.At(0, "name")
	require.NoError(t, err)
	assert.Equal(t, "ann", v.Str())

	tail, err := tbl.Tail(1)
	require.NoError(t, err)
	v, err = tail.At(0, "name")
	require.NoError(t, err)
	assert.Equal(t, "dee", v.Str())

	big, err := tbl.Head(100)
	require.NoError(t, err)
	assert.Equal(t, 4, big.Len(), "counts beyond the row count clamp")

	_, err = tbl.Head(-1)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	_, err = tbl.Tail(-1)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestSortValuesDescendingWithLimit(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"v": value.Number(30)},
		{"v": value.Number(10)},
		{"v": value.Number(50)},
		{"v": value.Number(40)},
		{"v": value.Number(20)},
	})
	two := 2
	out, err := tbl.SortValues([]string{"v"}, SortOptions{
		Ascending: []bool{false},
		Limit:     &two,
	})
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	first, _ := out.At(0, "v")
	second, _ := out.At(1, "v")
	assert.Equal(t, 50.0, first.Float())
	assert.Equal(t, 40.0, second.Float())
	assert.Equal(t, []value.Value{value.Int(2), value.Int(3)}, out.Index(),
		"sorted rows keep their original index labels")
}

func TestSortValuesErrors(t *testing.T) {
	tbl := scoresTable(t)

	_, err := tbl.SortValues(nil, SortOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = tbl.SortValues([]string{"score"}, SortOptions{Ascending: []bool{true, false}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))

	neg := -1
	_, err = tbl.SortValues([]string{"score"}, SortOptions{Limit: &neg})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = tbl.SortValues([]string{"nope"}, SortOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))
}

func TestSortDoesNotMutateSource(t *testing.T) {
	tbl := scoresTable(t)
	_, err := tbl.SortValues([]string{"score"}, SortOptions{})
	require.NoError(t, err)
	v, err := tbl.At(0, "name")
	require.NoError(t, err)
	assert.Equal(t, "ann", v.Str(), "the source table keeps its row order")
}

func TestNLargestNSmallest(t *testing.T) {
	tbl := scoresTable(t)

	top, err := tbl.NLargest(1, "score")
	require.NoError(t, err)
	v, _ := top.At(0, "name")
	assert.Equal(t, "bob", v.Str())

	bottom, err := tbl.NSmallest(1, "score")
	require.NoError(t, err)
	v, _ = bottom.At(0, "name")
	assert.Equal(t, "dee", v.Str())
}

func TestDropDuplicates(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"a": value.Text("x"), "b": value.Number(1)},
		{"a": value.Text("x"), "b": value.Number(2)},
		{"a": value.Text("x"), "b": value.Number(1)},
	})

	all, err := tbl.DropDuplicates()
	require.NoError(t, err)
	assert.Equal(t, 2, all.Len(), "full-row comparison keeps the two distinct rows")

	bySubset, err := tbl.DropDuplicates("a")
	require.NoError(t, err)
	require.Equal(t, 1, bySubset.Len())
	v, _ := bySubset.At(0, "b")
	assert.Equal(t, 1.0, v.Float(), "the first occurrence wins")

	_, err = tbl.DropDuplicates("nope")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))
}

func TestResetIndex(t *testing.T) {
	tbl, err := scoresTable(t).WithIndex([]value.Value{
		value.Text("w"), value.Text("x"), value.Text("y"), value.Text("z"),
	})
	require.NoError(t, err)

	reset, err := tbl.ResetIndex("")
	require.NoError(t, err)
	assert.Equal(t, []string{"index", "name", "score"}, reset.Columns())
	v, err := reset.At(0, "index")
	require.NoError(t, err)
	assert.Equal(t, "w", v.Str())
	assert.Equal(t, value.Int(0), reset.Index()[0])

	_, err = reset.ResetIndex("index")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicate))
}

func TestGroupByAggScenario(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"g": value.Text("A"), "v": value.Number(20)},
		{"g": value.Text("A"), "v": value.Number(10)},
		{"g": value.Text("B"), "v": value.Number(5)},
	})
	g, err := tbl.GroupBy([]string{"g"}, NewGroupByOptions())
	require.NoError(t, err)

	out, err := g.Agg(Agg{Column: "v", Op: grouping.OpMean, As: "avg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "avg"}, out.Columns())
	require.Equal(t, 2, out.Len())
	key, _ := out.At(0, "g")
	avg, _ := out.At(0, "avg")
	assert.Equal(t, "A", key.Str())
	assert.Equal(t, 15.0, avg.Float())
	key, _ = out.At(1, "g")
	avg, _ = out.At(1, "avg")
	assert.Equal(t, "B", key.Str())
	assert.Equal(t, 5.0, avg.Float())
}

func TestAggStreamsWithoutBuildingPartition(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"g": value.Text("A"), "v": value.Number(20)},
		{"g": value.Text("A"), "v": value.Number(10)},
		{"g": value.Text("B"), "v": value.Number(5)},
	})
	g, err := tbl.GroupBy([]string{"g"}, NewGroupByOptions())
	require.NoError(t, err)

	out, err := g.Agg(Agg{Column: "v", Op: grouping.OpMean})
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Zero(t, tbl.cache.Len(), "named aggregates never materialize group membership")

	// Size materializes and memoizes the partition; a later named Agg
	// picks it up and still agrees with the streamed result.
	_, err = g.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.cache.Len())

	again, err := g.Agg(Agg{Column: "v", Op: grouping.OpMean})
	require.NoError(t, err)
	for i := 0; i < out.Len(); i++ {
		a, _ := out.At(i, "v")
		b, _ := again.At(i, "v")
		assert.Zero(t, value.Compare(a, b))
	}
}

func TestGroupByAsIndex(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"g": value.Text("A"), "h": value.Text("x"), "v": value.Number(1)},
		{"g": value.Text("B"), "h": value.Text("y"), "v": value.Number(2)},
	})

	opts := NewGroupByOptions()
	opts.AsIndex = true
	g, err := tbl.GroupBy([]string{"g"}, opts)
	require.NoError(t, err)
	out, err := g.Agg(Agg{Column: "v", Op: grouping.OpSum})
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, out.Columns())
	assert.Equal(t, []value.Value{value.Text("A"), value.Text("B")}, out.Index())

	multi, err := tbl.GroupBy([]string{"g", "h"}, opts)
	require.NoError(t, err)
	_, err = multi.Agg(Agg{Column: "v", Op: grouping.OpSum})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))
}

func TestGroupByErrors(t *testing.T) {
	tbl := scoresTable(t)

	_, err := tbl.GroupBy(nil, NewGroupByOptions())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = tbl.GroupBy([]string{"nope"}, NewGroupByOptions())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))

	g, err := tbl.GroupBy([]string{"name"}, NewGroupByOptions())
	require.NoError(t, err)

	_, err = g.Agg()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = g.Agg(Agg{Column: "score", Op: grouping.OpSum, As: "name"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicate))
}

func TestGroupBySize(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"g": value.Text("A")},
		{"g": value.Text("B")},
		{"g": value.Text("A")},
	})
	g, err := tbl.GroupBy([]string{"g"}, NewGroupByOptions())
	require.NoError(t, err)
	out, err := g.Size()
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "size"}, out.Columns())
	n, _ := out.At(0, "size")
	assert.Equal(t, 2.0, n.Float())
}

func TestValueCountsScenario(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"c": value.Text("x")},
		{"c": value.Text("y")},
		{"c": value.Text("x")},
		{"c": value.Text("x")},
	})
	out, err := tbl.ValueCounts([]string{"c"}, NewValueCountsOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "count"}, out.Columns())
	require.Equal(t, 2, out.Len())
	v, _ := out.At(0, "c")
	n, _ := out.At(0, "count")
	assert.Equal(t, "x", v.Str())
	assert.Equal(t, 3.0, n.Float())
	v, _ = out.At(1, "c")
	n, _ = out.At(1, "count")
	assert.Equal(t, "y", v.Str())
	assert.Equal(t, 1.0, n.Float())
}

func TestValueCountsNormalize(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"c": value.Text("x")},
		{"c": value.Text("x")},
		{"c": value.Text("y")},
		{"c": value.Absent()},
	})
	opts := NewValueCountsOptions()
	opts.Normalize = true
	out, err := tbl.ValueCounts([]string{"c"}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "proportion"}, out.Columns())

	total := 0.0
	for i := 0; i < out.Len(); i++ {
		p, err := out.At(i, "proportion")
		require.NoError(t, err)
		total += p.Float()
	}
	assert.InDelta(t, 1.0, total, 1e-12, "proportions over considered rows sum to one")
	p, _ := out.At(0, "proportion")
	assert.InDelta(t, 2.0/3.0, p.Float(), 1e-12, "the dropped missing row is not in the denominator")
}

func TestValueCountsEmptySubsetUsesAllColumns(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"a": value.Text("x"), "b": value.Number(1)},
		{"a": value.Text("x"), "b": value.Number(1)},
	})
	out, err := tbl.ValueCounts(nil, NewValueCountsOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "count"}, out.Columns())
	assert.Equal(t, 1, out.Len())
}

func TestValueCountsReservedName(t *testing.T) {
	tbl := FromRows([]record.Row{{"count": value.Number(1)}})
	_, err := tbl.ValueCounts([]string{"count"}, NewValueCountsOptions())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicate))
}

func TestClip(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"v": value.Number(-5), "tag": value.Text("keep")},
		{"v": value.Number(50)},
		{"v": value.Absent()},
	})
	lo, hi := 0.0, 10.0
	out, err := tbl.Clip(&lo, &hi)
	require.NoError(t, err)
	v, _ := out.At(0, "v")
	assert.Equal(t, 0.0, v.Float())
	v, _ = out.At(1, "v")
	assert.Equal(t, 10.0, v.Float())
	v, _ = out.At(2, "v")
	assert.True(t, v.IsMissing())
	tag, _ := out.At(0, "tag")
	assert.Equal(t, "keep", tag.Str(), "non-numeric cells pass through")

	_, err = tbl.Clip(&hi, &lo)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestReplace(t *testing.T) {
	tbl := FromRows([]record.Row{
		{"v": value.Number(-1)},
		{"v": value.Number(3)},
		{"v": value.Text("-1")},
	})
	repl := value.Absent()
	out, err := tbl.Replace([]value.Value{value.Number(-1)}, &repl)
	require.NoError(t, err)
	v, _ := out.At(0, "v")
	assert.True(t, v.IsMissing())
	v, _ = out.At(1, "v")
	assert.Equal(t, 3.0, v.Float())
	v, _ = out.At(2, "v")
	assert.Equal(t, "-1", v.Str(), "replace matches canonical keys, not renderings")

	_, err = tbl.Replace([]value.Value{value.Number(-1)}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
