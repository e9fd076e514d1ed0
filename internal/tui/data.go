// ABOUTME: Loads the summary tables of one case for the viewer
// ABOUTME: Mean data is required; every sensitivity table found for the case is optional

package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/markalston/opfbench/internal/approx"
	"github.com/markalston/opfbench/internal/report"
)

// Data holds the tables shown by the viewer
type Data struct {
	Case        string
	Mean        *report.Table
	Metrics     []string
	Sensitivity map[string]*report.Table
}

// Load reads the mean table and all sensitivity tables of caseName, dropping
// models disabled in set
func Load(r *report.Reporter, caseName string, set approx.Set) (*Data, error) {
	mean, err := r.GetData(report.MeanDataFile(caseName), set)
	if err != nil {
		return nil, fmt.Errorf("mean data for %s: %w", caseName, err)
	}

	d := &Data{Case: caseName, Mean: mean, Sensitivity: map[string]*report.Table{}}
	prefix := strings.TrimSuffix(report.SensitivityDataFile(caseName, ""), ".csv")
	matches, err := filepath.Glob(filepath.Join(r.SummaryDir, "data", prefix+"*.csv"))
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		name := filepath.Base(m)
		metric := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".csv")
		if _, err := report.LookupMetric(metric); err != nil {
			continue
		}
		t, err := r.GetData(name, set)
		if err != nil {
			return nil, err
		}
		d.Sensitivity[metric] = t
		d.Metrics = append(d.Metrics, metric)
	}
	sort.Strings(d.Metrics)
	return d, nil
}
