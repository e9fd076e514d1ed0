// ABOUTME: Plot command group rendering figures from summary tables
// ABOUTME: pareto and sensitivity plot one case, casesize plots every case with mean data

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/opfbench/internal/cases"
	"github.com/markalston/opfbench/internal/report"
)

var (
	paretoX, paretoY                   string
	plotMetric                         string
	caseSizeX, caseSizeY, caseSizeSize string
	annotate                           bool
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render figures from summary tables",
	Long: `Render figures from the summary tables written by ` + "`opfbench report`" + `.
Figures are written as PNG files to the figures directory under OPFBENCH_SUMMARY_DIR.`,
}

var plotParetoCmd = &cobra.Command{
	Use:   "pareto <case>",
	Short: "Scatter one mean column against another, one point per model",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if code := runPlotPareto(args[0], os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

var plotSensitivityCmd = &cobra.Command{
	Use:   "sensitivity <case>",
	Short: "Plot a sensitivity table against the demand multiplier",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if code := runPlotSensitivity(args[0], os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

var plotCaseSizeCmd = &cobra.Command{
	Use:   "casesize",
	Short: "Plot a mean column against case size across every case with mean data",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runPlotCaseSize(os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.AddCommand(plotParetoCmd, plotSensitivityCmd, plotCaseSizeCmd)
	plotCmd.PersistentFlags().BoolVar(&annotate, "annotate", false, "Label points with model or case names")

	plotParetoCmd.Flags().StringVar(&paretoX, "x", "solve_time_avg", "Mean column for the x axis")
	plotParetoCmd.Flags().StringVar(&paretoY, "y", "sum_infeas", "Mean column for the y axis")

	plotSensitivityCmd.Flags().StringVar(&plotMetric, "metric", "sum_infeas", "Sensitivity table metric")

	plotCaseSizeCmd.Flags().StringVar(&caseSizeX, "x", "num_buses", "Mean column for the x axis")
	plotCaseSizeCmd.Flags().StringVar(&caseSizeY, "y", "solve_time_geomean", "Mean column for the y axis")
	plotCaseSizeCmd.Flags().StringVar(&caseSizeSize, "size", "num_constraints", "Mean column scaling the marker area, empty for fixed size")
}

// figureOutput names a written figure
type figureOutput struct {
	Case   string `json:"case,omitempty"`
	Figure string `json:"figure"`
}

func runPlotPareto(arg string, w io.Writer) int {
	s, err := newSession()
	if err != nil {
		return errorf(w, err)
	}
	name, err := cases.Lookup(arg)
	if err != nil {
		return errorf(w, err)
	}
	r := s.reporter()
	mean, err := r.GetData(report.MeanDataFile(name), s.set.WithoutVariants().WithLazy())
	if err != nil {
		return errorf(w, fmt.Errorf("mean data for %s: %w", name, err))
	}
	rd, err := s.renderer(r)
	if err != nil {
		return errorf(w, err)
	}
	rd.Annotate = annotate
	path, err := rd.Pareto(name, mean, paretoX, paretoY)
	if err != nil {
		return errorf(w, err)
	}
	if err := printFigure(w, name, path); err != nil {
		return errorf(w, err)
	}
	return exitOK
}

func runPlotSensitivity(arg string, w io.Writer) int {
	s, err := newSession()
	if err != nil {
		return errorf(w, err)
	}
	name, err := cases.Lookup(arg)
	if err != nil {
		return errorf(w, err)
	}
	r := s.reporter()
	sens, err := r.GetData(report.SensitivityDataFile(name, plotMetric), s.set.WithoutVariants())
	if err != nil {
		return errorf(w, fmt.Errorf("sensitivity data for %s: %w", name, err))
	}
	rd, err := s.renderer(r)
	if err != nil {
		return errorf(w, err)
	}
	rd.Annotate = annotate
	path, err := rd.Sensitivity(name, sens, plotMetric)
	if err != nil {
		return errorf(w, err)
	}
	if err := printFigure(w, name, path); err != nil {
		return errorf(w, err)
	}
	return exitOK
}

func runPlotCaseSize(w io.Writer) int {
	s, err := newSession()
	if err != nil {
		return errorf(w, err)
	}
	r := s.reporter()
	path, err := plotCaseSize(s, r)
	if err != nil {
		return errorf(w, err)
	}
	if err := printFigure(w, "", path); err != nil {
		return errorf(w, err)
	}
	return exitOK
}

func plotCaseSize(s *session, r *report.Reporter) (string, error) {
	series, err := r.CaseSize(s.set.WithoutVariants(), r.CasesWithMeanData(cases.Names), caseSizeX, caseSizeY, caseSizeSize)
	if err != nil {
		return "", err
	}
	rd, err := s.renderer(r)
	if err != nil {
		return "", err
	}
	rd.Annotate = annotate
	return rd.CaseSize(series, caseSizeX, caseSizeY)
}

func printFigure(w io.Writer, caseName, path string) error {
	if IsJSONOutput() {
		return writeJSON(w, figureOutput{Case: caseName, Figure: path})
	}
	_, err := fmt.Fprintf(w, "Wrote %s\n", path)
	return err
}
