// ABOUTME: Solve command running the demand sweep for one case or a batch
// ABOUTME: Writes one artifact per model and multiplier plus a run manifest per case

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/opfbench/internal/bench"
	"github.com/markalston/opfbench/internal/cases"
	"github.com/markalston/opfbench/internal/solver"
)

var solveCmd = &cobra.Command{
	Use:   "solve [A|B|C|D|E|<index>|<case-name>]",
	Short: "Solve every enabled model across the demand sweep",
	Long: `Find the feasible demand range of each case, then solve every enabled model at
each multiplier and record the results. Defaults to ` + cases.Default + `.

Exit codes:
  0 - Every case swept (individual model failures are recorded, not fatal)
  1 - One or more cases could not be swept
  2 - Error (configuration, lookup, solver bridge)`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runSolve(ctx, firstArg(args), os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
}

// sweepSummary is the outcome of sweeping one case
type sweepSummary struct {
	Case     string  `json:"case"`
	RunID    string  `json:"run_id,omitempty"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Solved   int     `json:"solved"`
	Failed   int     `json:"failed"`
	Manifest string  `json:"manifest,omitempty"`
	Error    string  `json:"error,omitempty"`
}

func runSolve(ctx context.Context, arg string, w io.Writer) int {
	s, err := newSession()
	if err != nil {
		return errorf(w, err)
	}
	names, err := cases.Resolve(arg)
	if err != nil {
		return errorf(w, err)
	}
	client, err := newClient(s.cfg)
	if err != nil {
		return errorf(w, err)
	}

	summaries := sweepCases(ctx, s, client, arg, names)
	if IsJSONOutput() {
		if err := writeJSON(w, summaries); err != nil {
			return errorf(w, err)
		}
	} else {
		fmt.Fprintln(w, formatSweepHuman(summaries))
	}
	return sweepExitCode(summaries)
}

// sweepCases sweeps each case in turn. A case that cannot be swept is logged
// and the remaining cases still run.
func sweepCases(ctx context.Context, s *session, client solver.Client, arg string, names []string) []sweepSummary {
	sweeper := s.sweeper(client)
	var out []sweepSummary
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		path := s.casePath(arg, name)
		slog.Info("Sweeping case", "case", name, "file", path)

		sum := sweepSummary{Case: name}
		m, err := sweeper.Run(ctx, name, path, s.set)
		if m != nil {
			sum.RunID = m.RunID
			sum.Min, sum.Max = m.Min.Mult, m.Max.Mult
			sum.Failed = m.Failures()
			sum.Solved = len(m.Outcomes) - sum.Failed
			sum.Manifest = bench.ManifestPath(filepath.Join(s.cfg.SolutionDir, name), name)
		}
		if err != nil {
			slog.Error("Sweep failed", "case", name, "error", err)
			sum.Error = err.Error()
		}
		out = append(out, sum)
	}
	return out
}

func formatSweepHuman(summaries []sweepSummary) string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		status := "ok"
		if s.Error != "" {
			status = s.Error
		}
		rows = append(rows, []string{
			s.Case,
			fmt.Sprintf("%v .. %v", s.Min, s.Max),
			strconv.Itoa(s.Solved),
			strconv.Itoa(s.Failed),
			status,
		})
	}
	return renderTable([]string{"case", "multipliers", "solved", "failed", "status"}, rows)
}

func sweepExitCode(summaries []sweepSummary) int {
	for _, s := range summaries {
		if s.Error != "" {
			return exitPartial
		}
	}
	return exitOK
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
