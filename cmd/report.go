// ABOUTME: Report command group building summary tables from sweep artifacts
// ABOUTME: mean writes per-model averages, sensitivity writes a metric per multiplier

package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/opfbench/internal/cases"
	"github.com/markalston/opfbench/internal/report"
	"github.com/markalston/opfbench/internal/tui/dashboard"
)

var (
	meanMetrics       []string
	sensitivityMetric string
	sensitivityPct    bool
	sensitivityVector bool
	sensitivityNorm   float64
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build summary tables from sweep artifacts",
}

var reportMeanCmd = &cobra.Command{
	Use:   "mean <case>",
	Short: "Average each metric over the sweep for every model",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runReportMean(ctx, args[0], os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

var reportSensitivityCmd = &cobra.Command{
	Use:   "sensitivity <case>",
	Short: "Tabulate one metric per demand multiplier for every model",
	Long: `Tabulate one metric per demand multiplier for every enabled model.

By default values are nominal. --pct gives the percent difference from acopf and
--vector gives the --norm distance of a vector metric from acopf.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runReportSensitivity(ctx, args[0], os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportMeanCmd, reportSensitivityCmd)

	reportMeanCmd.Flags().StringSliceVar(&meanMetrics, "metrics", nil, "Scalar metrics to average (default: num_buses,num_constraints,sum_infeas,solve_time)")

	reportSensitivityCmd.Flags().StringVar(&sensitivityMetric, "metric", "sum_infeas", "Metric to tabulate")
	reportSensitivityCmd.Flags().BoolVar(&sensitivityPct, "pct", false, "Percent difference from acopf")
	reportSensitivityCmd.Flags().BoolVar(&sensitivityVector, "vector", false, "Norm of the element-wise difference from acopf")
	reportSensitivityCmd.Flags().Float64Var(&sensitivityNorm, "norm", 2, "Vector norm order, +Inf for the max norm")
	reportSensitivityCmd.MarkFlagsMutuallyExclusive("pct", "vector")
}

// tableOutput is a summary table as printed in JSON mode
type tableOutput struct {
	Case string                         `json:"case"`
	File string                         `json:"file"`
	Rows map[string]map[string]*float64 `json:"rows"`
}

func runReportMean(ctx context.Context, arg string, w io.Writer) int {
	s, err := newSession()
	if err != nil {
		return errorf(w, err)
	}
	name, err := cases.Lookup(arg)
	if err != nil {
		return errorf(w, err)
	}
	r := s.reporter()
	if _, _, err := r.MeanData(ctx, name, meanMetrics); err != nil {
		return errorf(w, err)
	}
	t, err := r.GetData(report.MeanDataFile(name), s.set)
	if err != nil {
		return errorf(w, err)
	}
	if err := printTable(w, name, report.MeanDataFile(name), "model", t); err != nil {
		return errorf(w, err)
	}
	return exitOK
}

func sensitivityMode() report.Mode {
	switch {
	case sensitivityPct:
		return report.ModePct
	case sensitivityVector:
		return report.ModeVector
	}
	return report.ModeNominal
}

func runReportSensitivity(ctx context.Context, arg string, w io.Writer) int {
	s, err := newSession()
	if err != nil {
		return errorf(w, err)
	}
	name, err := cases.Lookup(arg)
	if err != nil {
		return errorf(w, err)
	}
	t, _, err := s.reporter().SensitivityData(ctx, name, s.set, sensitivityMetric, sensitivityMode(), sensitivityNorm)
	if err != nil {
		return errorf(w, err)
	}
	if err := printTable(w, name, report.SensitivityDataFile(name, sensitivityMetric), "mult", t); err != nil {
		return errorf(w, err)
	}
	return exitOK
}

func printTable(w io.Writer, caseName, file, index string, t *report.Table) error {
	if IsJSONOutput() {
		out := tableOutput{Case: caseName, File: file, Rows: map[string]map[string]*float64{}}
		for _, row := range t.Rows() {
			vals := map[string]*float64{}
			for _, col := range t.Cols() {
				vals[col] = jsonSafe(t.Get(row, col))
			}
			out.Rows[row] = vals
		}
		return writeJSON(w, out)
	}

	headers := append([]string{index}, t.Cols()...)
	rows := make([][]string, 0, len(t.Rows()))
	for _, row := range t.Rows() {
		cells := []string{row}
		for _, col := range t.Cols() {
			cells = append(cells, dashboard.FormatValue(t.Get(row, col)))
		}
		rows = append(rows, cells)
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", file, renderTable(headers, rows))
	return err
}

// jsonSafe maps NaN and infinities to null
func jsonSafe(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
