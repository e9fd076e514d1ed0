// ABOUTME: Search command running the demand feasibility search on one case
// ABOUTME: Reports the first multiplier at which the AC OPF reference solves

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/opfbench/internal/bench"
	"github.com/markalston/opfbench/internal/cases"
)

var (
	searchInit  float64
	searchSteps int
)

var searchCmd = &cobra.Command{
	Use:   "search <case>",
	Short: "Find a feasible demand multiplier",
	Long: `Scale the case loads from --init toward 1 in --steps candidates and report the
first multiplier at which the AC OPF reference solves.

Exit codes:
  0 - Feasible multiplier found
  1 - No candidate solved, multiplier fell back to 1
  2 - Error (configuration, lookup, solver bridge)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runSearch(ctx, args[0], os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().Float64Var(&searchInit, "init", 0.9, "Starting multiplier, below or above 1")
	searchCmd.Flags().IntVar(&searchSteps, "steps", 0, "Number of candidates (default: OPFBENCH_SEARCH_STEPS)")
}

// searchOutput is the search result as printed
type searchOutput struct {
	Case  string  `json:"case"`
	Init  float64 `json:"init"`
	Steps int     `json:"steps"`
	Mult  float64 `json:"mult"`
	Found bool    `json:"found"`
}

func runSearch(ctx context.Context, arg string, w io.Writer) int {
	s, err := newSession()
	if err != nil {
		return errorf(w, err)
	}
	name, err := cases.Lookup(arg)
	if err != nil {
		return errorf(w, err)
	}
	client, err := newClient(s.cfg)
	if err != nil {
		return errorf(w, err)
	}
	steps := searchSteps
	if steps == 0 {
		steps = s.cfg.SearchSteps
	}

	md, err := bench.LoadCase(ctx, client, s.casePath(arg, name))
	if err != nil {
		return errorf(w, err)
	}
	res, err := bench.FeasibleMultiplier(ctx, client, s.cfg.ACSolver, md, searchInit, steps)
	if err != nil {
		return errorf(w, err)
	}

	out := searchOutput{Case: name, Init: searchInit, Steps: steps, Mult: res.Mult, Found: res.Found}
	switch {
	case IsJSONOutput():
		if err := writeJSON(w, out); err != nil {
			return errorf(w, err)
		}
	case res.Found:
		fmt.Fprintf(w, "%s: feasible at mult=%v (init %v, %d steps)\n", name, res.Mult, searchInit, steps)
	default:
		fmt.Fprintf(w, "%s: no feasible candidate from %v in %d steps, using mult=%v\n", name, searchInit, steps, res.Mult)
	}
	if !res.Found {
		return exitPartial
	}
	return exitOK
}
