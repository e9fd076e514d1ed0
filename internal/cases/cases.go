// ABOUTME: PGLib-OPF case library with batch letters and lookup by index or name
// ABOUTME: Resolves case names to files under the configured case directory

package cases

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Default is the case used when no argument is given
const Default = "pglib_opf_case3_lmbd"

// Names lists the benchmark cases in increasing size
var Names = []string{
	"pglib_opf_case3_lmbd",
	"pglib_opf_case5_pjm",
	"pglib_opf_case14_ieee",
	"pglib_opf_case24_ieee_rts",
	"pglib_opf_case30_as",
	"pglib_opf_case30_fsr",
	"pglib_opf_case30_ieee",
	"pglib_opf_case39_epri",
	"pglib_opf_case57_ieee",
	"pglib_opf_case73_ieee_rts",
	"pglib_opf_case89_pegase", // infeasible at mult = 1.01
	"pglib_opf_case118_ieee",
	"pglib_opf_case162_ieee_dtc",
	"pglib_opf_case179_goc",
	"pglib_opf_case200_tamu",
	"pglib_opf_case240_pserc",
	"pglib_opf_case300_ieee",
	"pglib_opf_case500_tamu",
	"pglib_opf_case588_sdet",
	"pglib_opf_case1354_pegase",
	"pglib_opf_case1888_rte",
	"pglib_opf_case1951_rte",
	"pglib_opf_case2000_tamu",
	"pglib_opf_case2316_sdet",
	"pglib_opf_case2383wp_k",
	"pglib_opf_case2736sp_k",
	"pglib_opf_case2737sop_k",
	"pglib_opf_case2746wop_k",
	"pglib_opf_case2746wp_k",
	"pglib_opf_case2848_rte",
	"pglib_opf_case2853_sdet",
	"pglib_opf_case2868_rte",
	"pglib_opf_case2869_pegase",
	"pglib_opf_case3012wp_k",
	"pglib_opf_case3120sp_k",
	"pglib_opf_case3375wp_k",
	"pglib_opf_case4661_sdet",
	"pglib_opf_case6468_rte",
	"pglib_opf_case6470_rte",
	"pglib_opf_case6495_rte",
	"pglib_opf_case6515_rte",
	"pglib_opf_case9241_pegase",
	"pglib_opf_case10000_tamu",
	"pglib_opf_case13659_pegase",
}

// ErrLookup is returned when an argument names no case or batch
var ErrLookup = errors.New("case lookup failed")

type lookupError struct {
	msg string
}

func (e *lookupError) Error() string { return e.msg }
func (e *lookupError) Is(target error) bool {
	return target == ErrLookup
}

var (
	errIndexRange = &lookupError{"Index out of range of test_cases."}
	errBadArg     = &lookupError{"Expecting argument of either A, B, C, D, E, or an index or case name from the test_cases list."}
)

// Batch is a half-open index range [Start, End) into Names
type Batch struct {
	Letter string
	Start  int
	End    int
}

// Cases returns the case names in the batch
func (b Batch) Cases() []string {
	return append([]string(nil), Names[b.Start:b.End]...)
}

// Batches groups cases by bus count; A skips the small cases
func Batches() []Batch {
	a := Index("pglib_opf_case1354_pegase")  // < 1000 buses
	b := Index("pglib_opf_case2383wp_k")     // 1354 - 2316 buses
	c := Index("pglib_opf_case6468_rte")     // 2383 - 4661 buses
	d := Index("pglib_opf_case13659_pegase") // 6468 - 10000 buses
	return []Batch{
		{"A", 9, a},
		{"B", a, b},
		{"C", b, c},
		{"D", c, d},
		{"E", d, d + 1},
	}
}

// Index returns the position of name in Names, or -1
func Index(name string) int {
	for i, n := range Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Resolve maps a CLI argument to case names: a batch letter, an index or a case name.
// An empty argument resolves to Default.
func Resolve(arg string) ([]string, error) {
	if arg == "" {
		return []string{Default}, nil
	}
	for _, b := range Batches() {
		if arg == b.Letter {
			return b.Cases(), nil
		}
	}
	name, err := Lookup(arg)
	if err != nil {
		return nil, err
	}
	return []string{name}, nil
}

// Lookup maps an index or case name to a single case name
func Lookup(arg string) (string, error) {
	if idx, err := strconv.Atoi(arg); err == nil {
		if idx < 0 || idx >= len(Names) {
			return "", errIndexRange
		}
		return Names[idx], nil
	}
	name := strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
	if Index(name) < 0 {
		return "", errBadArg
	}
	return name, nil
}

// Library resolves case names to files on disk
type Library struct {
	Dir string
}

// Path returns the case file for name, preferring a parsed .json next to the .m
func (l Library) Path(name string) string {
	jsonPath := filepath.Join(l.Dir, name+".json")
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath
	}
	return filepath.Join(l.Dir, name+".m")
}

// Available returns the library case names present in Dir
func (l Library) Available() []string {
	var out []string
	for _, name := range Names {
		if _, err := os.Stat(l.Path(name)); err == nil {
			out = append(out, name)
		}
	}
	return out
}

// Describe formats a batch for listings
func (b Batch) Describe() string {
	return fmt.Sprintf("%s: %s .. %s (%d cases)", b.Letter, Names[b.Start], Names[b.End-1], b.End-b.Start)
}
