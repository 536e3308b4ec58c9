// Command tabular is the CLI around the in-memory table engine: a
// benchmark harness over generated datasets and a CSV/JSON converter.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabular/pkg/formats"
	"github.com/ajitpratap0/tabular/pkg/logger"
	"github.com/ajitpratap0/tabular/pkg/table"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "tabular",
		Short: "tabular - in-memory tabular data engine",
		Long: `tabular is an in-memory columnar table engine supporting selection,
filtering, sorting, grouping, deduplication, frequency counting and pivoting
over heterogeneous typed cell values.`,
	}

	viper.SetEnvPrefix("TABULAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	var logLevel string
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if env := viper.GetString("log_level"); env != "" && !cmd.Flags().Changed("log-level") {
			logLevel = env
		}
		return logger.Init(logger.Config{Level: logLevel, Encoding: "console"})
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tabular v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newConvertCommand())
	root.AddCommand(newBenchCommand())

	if err := root.Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func newConvertCommand() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a table between CSV and JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.Open(in)
			if err != nil {
				return err
			}
			defer src.Close()

			t, err := readAny(src, in)
			if err != nil {
				return err
			}
			logger.Info("loaded table", zap.Int("rows", t.Len()), zap.Int("columns", t.Width()))

			dst, err := os.Create(out)
			if err != nil {
				return err
			}
			defer dst.Close()
			if strings.HasSuffix(out, ".json") {
				return formats.WriteJSON(dst, t)
			}
			return formats.WriteCSV(dst, t, formats.CSVOptions{})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input file (.csv or .json)")
	cmd.Flags().StringVar(&out, "out", "", "output file (.csv or .json)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func readAny(f *os.File, name string) (*table.Table, error) {
	if strings.HasSuffix(name, ".json") {
		return formats.ReadJSON(f)
	}
	return formats.ReadCSV(f, formats.CSVOptions{})
}
