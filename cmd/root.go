// ABOUTME: Root command for the opfbench CLI
// ABOUTME: Handles global flags, configuration loading and shared output helpers

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/markalston/opfbench/internal/approx"
	"github.com/markalston/opfbench/internal/bench"
	"github.com/markalston/opfbench/internal/cache"
	"github.com/markalston/opfbench/internal/cases"
	"github.com/markalston/opfbench/internal/config"
	"github.com/markalston/opfbench/internal/logger"
	"github.com/markalston/opfbench/internal/plot"
	"github.com/markalston/opfbench/internal/report"
	"github.com/markalston/opfbench/internal/solver"
)

var (
	jsonOutput bool
	envFile    string
	modelIDs   []string
)

// Exit codes
const (
	exitOK      = 0
	exitPartial = 1 // finished, but some cases or models failed
	exitError   = 2
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "opfbench",
	Short: "Benchmark OPF approximations against the AC OPF reference",
	Long: `opfbench solves PGLib-OPF test cases with a catalog of optimal power flow
approximations across a sweep of demand multipliers, then summarises and plots
how each approximation compares with the full AC OPF.

Solves run through an external solver bridge executable.

Environment Variables:
  OPFBENCH_SOLVER_CMD        Solver bridge executable (required for run, solve, search)
  OPFBENCH_SOLVER_ARGS       Extra bridge arguments, whitespace separated
  OPFBENCH_CASE_DIR          PGLib-OPF case directory
  OPFBENCH_SOLUTION_DIR      Result artifact directory
  OPFBENCH_SUMMARY_DIR       Summary CSV and figure directory
  LOG_LEVEL, LOG_FORMAT      Logging (debug|info|warn|error, text|json)`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init()
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file (default: ./.env when present)")
	rootCmd.PersistentFlags().StringSliceVar(&modelIDs, "models", nil, "Comma separated model ids to enable (default: all)")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// newClient builds the solver bridge; tests replace it with a fake
var newClient = func(cfg *config.Config) (solver.Client, error) {
	if !cfg.SolverConfigured() {
		return nil, fmt.Errorf("OPFBENCH_SOLVER_CMD is not set")
	}
	return solver.NewExec(solver.ExecConfig{
		Command: cfg.SolverCmd,
		Args:    cfg.SolverArgs,
		Timeout: cfg.SolveTimeout,
	})
}

// session is the configuration every command starts from
type session struct {
	cfg *config.Config
	set approx.Set
}

func newSession() (*session, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	set, err := approx.Parse(modelIDs)
	if err != nil {
		return nil, err
	}
	// acopf is the reference every comparison needs
	return &session{cfg: cfg, set: set.With(approx.Reference)}, nil
}

func (s *session) solvers() approx.Solvers {
	return approx.Solvers{NLP: s.cfg.ACSolver, LP: s.cfg.LPSolver, Persistent: s.cfg.PersistentSolver}
}

func (s *session) library() cases.Library {
	return cases.Library{Dir: s.cfg.CaseDir}
}

func (s *session) sweeper(client solver.Client) *bench.Sweeper {
	return &bench.Sweeper{
		Client:  client,
		Solvers: s.solvers(),
		Options: bench.Options{
			InitMin:     s.cfg.InitMin,
			InitMax:     s.cfg.InitMax,
			SearchSteps: s.cfg.SearchSteps,
			SweepSteps:  s.cfg.SweepSteps,
		},
		SolutionDir: s.cfg.SolutionDir,
	}
}

func (s *session) reporter() *report.Reporter {
	return &report.Reporter{
		Loader:      report.NewLoader(cache.New(), s.cfg.ReadConcurrency),
		SolutionDir: s.cfg.SolutionDir,
		SummaryDir:  s.cfg.SummaryDir,
	}
}

func (s *session) renderer(r *report.Reporter) (*plot.Renderer, error) {
	dir, err := r.FigureDir()
	if err != nil {
		return nil, err
	}
	return plot.NewRenderer(dir), nil
}

// casePath resolves a case name against the library, falling back to the
// argument itself when it names an existing file
func (s *session) casePath(arg, name string) string {
	if filepath.Ext(arg) != "" {
		if _, err := os.Stat(arg); err == nil {
			return arg
		}
	}
	return s.library().Path(name)
}

// writeJSON prints v indented
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// renderTable formats rows for the terminal
func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// errorf prints an error line and returns the error exit code
func errorf(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitError
}
