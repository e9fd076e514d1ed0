// ABOUTME: Cases command listing the PGLib-OPF test case library
// ABOUTME: Shows index, batch letter and whether each case file is present

package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/markalston/opfbench/internal/cases"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List test cases and batches",
	Long: `List the test case library by index with the batch each case belongs to.

Batches A to E group cases by bus count and can be passed to run and solve.`,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runCases(os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(casesCmd)
}

// caseInfo is one library entry
type caseInfo struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Batch     string `json:"batch,omitempty"`
	Available bool   `json:"available"`
	Default   bool   `json:"default,omitempty"`
}

func runCases(w io.Writer) int {
	s, err := newSession()
	if err != nil {
		return errorf(w, err)
	}
	infos := listCases(s.library())

	if IsJSONOutput() {
		if err := writeJSON(w, infos); err != nil {
			return errorf(w, err)
		}
		return exitOK
	}

	rows := make([][]string, 0, len(infos))
	for _, c := range infos {
		name := c.Name
		if c.Default {
			name += " (default)"
		}
		rows = append(rows, []string{strconv.Itoa(c.Index), name, c.Batch, yesNo(c.Available)})
	}
	fmt.Fprintln(w, renderTable([]string{"#", "case", "batch", "on disk"}, rows))
	for _, b := range cases.Batches() {
		fmt.Fprintln(w, b.Describe())
	}
	return exitOK
}

func listCases(lib cases.Library) []caseInfo {
	batchOf := map[int]string{}
	for _, b := range cases.Batches() {
		for i := b.Start; i < b.End; i++ {
			batchOf[i] = b.Letter
		}
	}
	avail := map[string]bool{}
	for _, n := range lib.Available() {
		avail[n] = true
	}

	out := make([]caseInfo, len(cases.Names))
	for i, n := range cases.Names {
		out[i] = caseInfo{Index: i, Name: n, Batch: batchOf[i], Available: avail[n], Default: n == cases.Default}
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
