// ABOUTME: Run command executing the whole benchmark for one case or a batch
// ABOUTME: Sweeps, summarises and plots each case, then plots case size across all cases

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/opfbench/internal/cases"
	"github.com/markalston/opfbench/internal/plot"
	"github.com/markalston/opfbench/internal/report"
)

var skipSolve bool

var runCmd = &cobra.Command{
	Use:   "run [A|B|C|D|E|<index>|<case-name>]",
	Short: "Sweep, summarise and plot one case or a batch",
	Long: `Run the full benchmark. For each case: sweep every enabled model across the
demand range, write the mean and sum_infeas sensitivity tables, and render the
sensitivity and pareto figures. Finally render the case-size figure over every
case with mean data. Defaults to ` + cases.Default + `.

Exit codes:
  0 - Every case completed
  1 - One or more cases failed
  2 - Error (configuration, lookup, solver bridge)`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runRun(ctx, firstArg(args), os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&skipSolve, "skip-solve", false, "Summarise and plot existing artifacts without solving")
}

// caseRun is the outcome of the pipeline for one case
type caseRun struct {
	Case     string        `json:"case"`
	Sweep    *sweepSummary `json:"sweep,omitempty"`
	Mean     string        `json:"mean,omitempty"`
	Figures  []string      `json:"figures,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// runOutput is the run command result
type runOutput struct {
	Cases    []caseRun `json:"cases"`
	CaseSize string    `json:"casesize,omitempty"`
}

func runRun(ctx context.Context, arg string, w io.Writer) int {
	s, err := newSession()
	if err != nil {
		return errorf(w, err)
	}
	names, err := cases.Resolve(arg)
	if err != nil {
		return errorf(w, err)
	}

	var sweeps []sweepSummary
	if !skipSolve {
		client, err := newClient(s.cfg)
		if err != nil {
			return errorf(w, err)
		}
		sweeps = sweepCases(ctx, s, client, arg, names)
	}

	r := s.reporter()
	rd, err := s.renderer(r)
	if err != nil {
		return errorf(w, err)
	}
	rd.Annotate = annotate

	var out runOutput
	for i, name := range names {
		if ctx.Err() != nil {
			break
		}
		cr := caseRun{Case: name}
		if i < len(sweeps) {
			cr.Sweep = &sweeps[i]
			if sweeps[i].Error != "" {
				cr.Error = sweeps[i].Error
				out.Cases = append(out.Cases, cr)
				continue
			}
		}
		summarise(ctx, s, r, rd, &cr)
		out.Cases = append(out.Cases, cr)
	}

	if ctx.Err() == nil {
		path, err := plotCaseSize(s, r)
		switch {
		case errors.Is(err, plot.ErrNoData):
			slog.Warn("Nothing to plot for case size", "error", err)
		case err != nil:
			slog.Error("Case size plot failed", "error", err)
		default:
			out.CaseSize = path
		}
	}

	if IsJSONOutput() {
		if err := writeJSON(w, out); err != nil {
			return errorf(w, err)
		}
	} else {
		fmt.Fprintln(w, formatRunHuman(out))
	}
	return runExitCode(out)
}

// summarise writes the summary tables and figures of one swept case
func summarise(ctx context.Context, s *session, r *report.Reporter, rd *plot.Renderer, cr *caseRun) {
	_, path, err := r.MeanData(ctx, cr.Case, report.DefaultMeanMetrics)
	if err != nil {
		cr.Error = fmt.Sprintf("mean data: %v", err)
		return
	}
	cr.Mean = path
	if _, _, err := r.SensitivityData(ctx, cr.Case, s.set, "sum_infeas", report.ModeNominal, 2); err != nil {
		cr.Error = fmt.Sprintf("sensitivity data: %v", err)
		return
	}

	figure := func(path string, err error) {
		switch {
		case errors.Is(err, plot.ErrNoData):
			slog.Warn("Nothing to plot", "case", cr.Case, "error", err)
			cr.Warnings = append(cr.Warnings, err.Error())
		case err != nil:
			cr.Error = err.Error()
		default:
			cr.Figures = append(cr.Figures, path)
		}
	}

	sens, err := r.GetData(report.SensitivityDataFile(cr.Case, "sum_infeas"), s.set.WithoutVariants())
	if err != nil {
		cr.Error = err.Error()
		return
	}
	figure(rd.Sensitivity(cr.Case, sens, "sum_infeas"))

	mean, err := r.GetData(report.MeanDataFile(cr.Case), s.set.WithoutVariants().WithLazy())
	if err != nil {
		cr.Error = err.Error()
		return
	}
	figure(rd.Pareto(cr.Case, mean, "solve_time_avg", "sum_infeas"))
}

func formatRunHuman(out runOutput) string {
	rows := make([][]string, 0, len(out.Cases))
	for _, c := range out.Cases {
		solved, failed := "-", "-"
		if c.Sweep != nil {
			solved = fmt.Sprint(c.Sweep.Solved)
			failed = fmt.Sprint(c.Sweep.Failed)
		}
		status := "ok"
		switch {
		case c.Error != "":
			status = c.Error
		case len(c.Warnings) > 0:
			status = fmt.Sprintf("ok, %d warning(s)", len(c.Warnings))
		}
		rows = append(rows, []string{c.Case, solved, failed, fmt.Sprint(len(c.Figures)), status})
	}
	text := renderTable([]string{"case", "solved", "failed", "figures", "status"}, rows)
	if out.CaseSize != "" {
		text += "\nWrote " + out.CaseSize
	}
	return text
}

func runExitCode(out runOutput) int {
	for _, c := range out.Cases {
		if c.Error != "" {
			return exitPartial
		}
	}
	return exitOK
}
