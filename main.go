// ABOUTME: Entry point for opfbench CLI
// ABOUTME: Benchmarks OPF approximations against the AC OPF reference on PGLib-OPF cases

package main

import (
	"fmt"
	"os"

	"github.com/markalston/opfbench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
