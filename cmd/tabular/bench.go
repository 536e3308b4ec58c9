package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabular/pkg/grouping"
	"github.com/ajitpratap0/tabular/pkg/logger"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/table"
	"github.com/ajitpratap0/tabular/pkg/testutil"
)

// benchCase is one timed operation returning its result row count, so
// the work cannot be optimized away.
type benchCase struct {
	Name    string
	Dataset string
	Fn      func(t *table.Table) (int, error)
}

type benchResult struct {
	Case          string    `json:"case"`
	Dataset       string    `json:"dataset"`
	AvgMs         float64   `json:"avgMs"`
	RoundAverages []float64 `json:"roundAverages"`
}

type benchReport struct {
	GeneratedAt string        `json:"generatedAt"`
	Rows        int           `json:"rows"`
	Iterations  int           `json:"iterations"`
	Rounds      int           `json:"rounds"`
	Cases       int           `json:"cases"`
	Results     []benchResult `json:"results"`
}

func newBenchCommand() *cobra.Command {
	var rows, iters, rounds int
	var jsonOut string
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the standard benchmark case set over generated datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if v := viper.GetInt("bench_rows"); v > 0 && !cmd.Flags().Changed("rows") {
				rows = v
			}
			if v := viper.GetInt("bench_iters"); v > 0 && !cmd.Flags().Changed("iters") {
				iters = v
			}
			if v := viper.GetInt("bench_rounds"); v > 0 && !cmd.Flags().Changed("rounds") {
				rounds = v
			}
			return runBench(rows, iters, rounds, jsonOut)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 25000, "rows per generated dataset")
	cmd.Flags().IntVar(&iters, "iters", 8, "timed iterations per round")
	cmd.Flags().IntVar(&rounds, "rounds", 3, "rounds per case (median reported)")
	cmd.Flags().StringVar(&jsonOut, "json-out", "", "optional JSON report path")
	return cmd
}

func runBench(rows, iters, rounds int, jsonOut string) error {
	logger.Info("building datasets", zap.Int("rows", rows))
	datasets := map[string]*table.Table{
		"base":      testutil.BuildDataset(rows, testutil.DatasetOptions{}),
		"high_card": testutil.BuildDataset(rows, testutil.DatasetOptions{HighCardinality: true}),
		"missing":   testutil.BuildDataset(rows, testutil.DatasetOptions{IncludeMissing: true}),
	}

	results := make([]benchResult, 0, len(benchCases))
	for _, c := range benchCases {
		ds := datasets[c.Dataset]
		roundAverages := make([]float64, 0, rounds)
		for r := 0; r < rounds; r++ {
			avg, err := runCase(c, ds, iters)
			if err != nil {
				return err
			}
			roundAverages = append(roundAverages, avg)
		}
		results = append(results, benchResult{
			Case:          c.Name,
			Dataset:       c.Dataset,
			AvgMs:         median(roundAverages),
			RoundAverages: roundAverages,
		})
	}

	fmt.Println("# tabular benchmark")
	fmt.Printf("rows=%d, iterations=%d, rounds=%d, cases=%d\n\n", rows, iters, rounds, len(results))
	fmt.Println("| case | dataset | avg |")
	fmt.Println("| --- | --- | ---: |")
	for _, r := range results {
		fmt.Printf("| %s | %s | %.2fms |\n", r.Case, r.Dataset, r.AvgMs)
	}

	if jsonOut == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(jsonOut), 0o755); err != nil {
		return err
	}
	f, err := os.Create(jsonOut)
	if err != nil {
		return err
	}
	defer f.Close()
	report := benchReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Rows:        rows,
		Iterations:  iters,
		Rounds:      rounds,
		Cases:       len(results),
		Results:     results,
	}
	enc := gojson.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runCase(c benchCase, ds *table.Table, iters int) (float64, error) {
	// Warmup passes before timing.
	for i := 0; i < 3; i++ {
		if _, err := c.Fn(ds); err != nil {
			return 0, err
		}
	}
	total := 0.0
	for i := 0; i < iters; i++ {
		start := time.Now()
		if _, err := c.Fn(ds); err != nil {
			return 0, err
		}
		total += float64(time.Since(start).Microseconds()) / 1000.0
	}
	return total / float64(iters), nil
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func intPtr(n int) *int { return &n }

var benchCases = []benchCase{
	{
		Name: "groupby_mean", Dataset: "base",
		Fn: func(t *table.Table) (int, error) {
			g, err := t.GroupBy([]string{"group"}, table.GroupByOptions{DropNA: true})
			if err != nil {
				return 0, err
			}
			out, err := g.Agg(
				table.Agg{Column: "value", Op: grouping.OpMean},
				table.Agg{Column: "revenue", Op: grouping.OpSum},
			)
			if err != nil {
				return 0, err
			}
			return out.Len(), nil
		},
	},
	{
		Name: "filter_sort_top100", Dataset: "base",
		Fn: func(t *table.Table) (int, error) {
			filtered := t.Filter(func(r record.Row) bool {
				return r.Get("active").Truth() && r.Get("value").Float() > 500
			})
			out, err := filtered.NLargest(100, "value")
			if err != nil {
				return 0, err
			}
			return out.Len(), nil
		},
	},
	{
		Name: "sort_top1000", Dataset: "base",
		Fn: func(t *table.Table) (int, error) {
			out, err := t.NLargest(1000, "value")
			if err != nil {
				return 0, err
			}
			return out.Len(), nil
		},
	},
	{
		Name: "sort_multicol_top800", Dataset: "base",
		Fn: func(t *table.Table) (int, error) {
			out, err := t.SortValues([]string{"city", "value", "id"}, table.SortOptions{
				Ascending: []bool{true, false, true},
				Limit:     intPtr(800),
			})
			if err != nil {
				return 0, err
			}
			return out.Len(), nil
		},
	},
	{
		Name: "value_counts_city", Dataset: "base",
		Fn: func(t *table.Table) (int, error) {
			out, err := t.ValueCounts([]string{"city"}, table.NewValueCountsOptions())
			if err != nil {
				return 0, err
			}
			return out.Len(), nil
		},
	},
	{
		Name: "value_counts_group_city_top10", Dataset: "base",
		Fn: func(t *table.Table) (int, error) {
			opts := table.NewValueCountsOptions()
			opts.Limit = intPtr(10)
			out, err := t.ValueCounts([]string{"group", "city"}, opts)
			if err != nil {
				return 0, err
			}
			return out.Len(), nil
		},
	},
	{
		Name: "value_counts_missing_city_dropna_false", Dataset: "missing",
		Fn: func(t *table.Table) (int, error) {
			opts := table.NewValueCountsOptions()
			opts.DropNA = false
			out, err := t.ValueCounts([]string{"city"}, opts)
			if err != nil {
				return 0, err
			}
			return out.Len(), nil
		},
	},
	{
		Name: "groupby_missing_city_mean", Dataset: "missing",
		Fn: func(t *table.Table) (int, error) {
			g, err := t.GroupBy([]string{"city"}, table.GroupByOptions{DropNA: false})
			if err != nil {
				return 0, err
			}
			out, err := g.Agg(table.Agg{Column: "value", Op: grouping.OpMean})
			if err != nil {
				return 0, err
			}
			return out.Len(), nil
		},
	},
	{
		Name: "value_counts_high_card_city_top20", Dataset: "high_card",
		Fn: func(t *table.Table) (int, error) {
			opts := table.NewValueCountsOptions()
			opts.Limit = intPtr(20)
			out, err := t.ValueCounts([]string{"user_key", "city"}, opts)
			if err != nil {
				return 0, err
			}
			return out.Len(), nil
		},
	},
	{
		Name: "value_counts_high_card_user_top100", Dataset: "high_card",
		Fn: func(t *table.Table) (int, error) {
			opts := table.NewValueCountsOptions()
			opts.Limit = intPtr(100)
			out, err := t.ValueCounts([]string{"user_key"}, opts)
			if err != nil {
				return 0, err
			}
			return out.Len(), nil
		},
	},
}
