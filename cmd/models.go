// ABOUTME: Models command listing the approximation catalog
// ABOUTME: Shows formulation, solver and base snapshot of every model id

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/opfbench/internal/approx"
	"github.com/markalston/opfbench/internal/solver"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List approximation models",
	Long: `List every model configuration in benchmark order.

Use --models with a comma separated list of ids to restrict other commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runModels(os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

// modelInfo is one catalog entry
type modelInfo struct {
	ID          string `json:"id"`
	Formulation string `json:"formulation"`
	Solver      string `json:"solver"`
	Source      string `json:"source"`
	Enabled     bool   `json:"enabled"`
}

func runModels(w io.Writer) int {
	s, err := newSession()
	if err != nil {
		return errorf(w, err)
	}
	infos := listModels(s.set, s.solvers())

	if IsJSONOutput() {
		if err := writeJSON(w, infos); err != nil {
			return errorf(w, err)
		}
		return exitOK
	}

	rows := make([][]string, 0, len(infos))
	for _, m := range infos {
		rows = append(rows, []string{m.ID, m.Formulation, m.Solver, m.Source, yesNo(m.Enabled)})
	}
	fmt.Fprintln(w, renderTable([]string{"id", "formulation", "solver", "base", "enabled"}, rows))
	return exitOK
}

func listModels(set approx.Set, solvers approx.Solvers) []modelInfo {
	cat := approx.Catalog()
	out := make([]modelInfo, len(cat))
	for i, c := range cat {
		out[i] = modelInfo{
			ID:          c.ID,
			Formulation: solver.Describe(c.Formulation),
			Solver:      solvers.Name(c.Role),
			Source:      c.Source.String(),
			Enabled:     set.Enabled(c.ID),
		}
	}
	return out
}
