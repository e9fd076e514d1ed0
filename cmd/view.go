// ABOUTME: View command opening the interactive result viewer
// ABOUTME: Picks a case with mean data when none is given and logs to a file while the UI runs

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/markalston/opfbench/internal/cases"
	"github.com/markalston/opfbench/internal/logger"
	"github.com/markalston/opfbench/internal/tui"
	"github.com/markalston/opfbench/internal/tui/menu"
)

var viewCmd = &cobra.Command{
	Use:   "view [case]",
	Short: "Browse summary tables in the terminal",
	Long: `Open the interactive viewer on the mean and sensitivity tables of a case.
Without an argument, choose from the cases that already have mean data.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if code := runView(firstArg(args), os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

// pickCase chooses a case interactively; tests replace it
var pickCase = func(choices []string) (string, error) {
	return menu.New(choices).Run()
}

// runViewer starts the UI; tests replace it
var runViewer = tui.Run

func runView(arg string, w io.Writer) int {
	s, err := newSession()
	if err != nil {
		return errorf(w, err)
	}
	r := s.reporter()

	var name string
	if arg == "" {
		name, err = pickCase(r.CasesWithMeanData(cases.Names))
		if errors.Is(err, huh.ErrUserAborted) {
			return exitOK
		}
	} else {
		name, err = cases.Lookup(arg)
	}
	if err != nil {
		return errorf(w, err)
	}

	data, err := tui.Load(r, name, s.set)
	if err != nil {
		return errorf(w, err)
	}

	closeLog, err := logger.InitFile(s.cfg.SummaryDir)
	if err != nil {
		return errorf(w, fmt.Errorf("open log file: %w", err))
	}
	defer closeLog()

	if err := runViewer(data); err != nil {
		return errorf(w, err)
	}
	return exitOK
}
