package table

import (
	"github.com/ajitpratap0/tabular/pkg/counting"
	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/pivot"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// ValueCountsOptions controls ValueCounts. Use NewValueCountsOptions
// for the defaults (dropna and count-descending sort enabled).
type ValueCountsOptions struct {
	// Normalize reports proportions of considered rows instead of raw
	// counts; the result column is named "proportion" instead of
	// "count".
	Normalize bool
	// DropNA excludes rows with any missing value among the subset
	// columns, also from the normalize denominator.
	DropNA bool
	// Sort orders by count descending (ascending when Ascending), with
	// the distinct value tuples as an ascending tie-break so output is
	// independent of input row order. False keeps first-seen order.
	Sort bool
	// Ascending flips the count comparison only.
	Ascending bool
	// Limit truncates the result via top-K selection.
	Limit *int
}

// NewValueCountsOptions returns the default counting options.
func NewValueCountsOptions() ValueCountsOptions {
	return ValueCountsOptions{DropNA: true, Sort: true}
}

// ValueCounts computes the frequency of each distinct value combination
// over the subset columns. An empty subset counts over all columns.
func (t *Table) ValueCounts(subset []string, opts ValueCountsOptions) (*Table, error) {
	if len(subset) == 0 {
		subset = t.columns
	} else if err := t.checkColumns(subset...); err != nil {
		return nil, err
	}

	resultCol := "count"
	if opts.Normalize {
		resultCol = "proportion"
	}
	for _, c := range subset {
		if c == resultCol {
			return nil, errors.Newf(errors.ErrorTypeDuplicate, "value counts would duplicate column name %q", resultCol)
		}
	}

	res, err := counting.Count(t.rows, subset, counting.Options{
		Normalize: opts.Normalize,
		DropNA:    opts.DropNA,
		Sort:      opts.Sort,
		Ascending: opts.Ascending,
		Limit:     opts.Limit,
	})
	if err != nil {
		return nil, err
	}

	columns := append(append([]string(nil), subset...), resultCol)
	rows := make([]record.Row, len(res.Entries))
	for i, e := range res.Entries {
		row := make(record.Row, len(columns))
		for j, col := range subset {
			row[col] = e.Values[j]
		}
		if opts.Normalize {
			row[resultCol] = value.Number(float64(e.Count) / float64(res.Considered))
		} else {
			row[resultCol] = value.Int(e.Count)
		}
		rows[i] = row
	}
	return newTable(columns, rows, rangeIndex(len(rows))), nil
}

// PivotTable reshapes the table into a wide layout per the pivot
// options. Build opts with pivot.DefaultOptions to get dropna, sorting
// and mean aggregation defaults.
func (t *Table) PivotTable(opts pivot.Options) (*Table, error) {
	if err := t.checkColumns(opts.Index...); err != nil {
		return nil, err
	}
	if err := t.checkColumns(opts.Values...); err != nil {
		return nil, err
	}
	if opts.Columns != "" {
		if err := t.checkColumns(opts.Columns); err != nil {
			return nil, err
		}
	}
	res, err := pivot.Compose(t.rows, opts)
	if err != nil {
		return nil, err
	}
	return newTable(res.Columns, res.Rows, rangeIndex(len(res.Rows))), nil
}
