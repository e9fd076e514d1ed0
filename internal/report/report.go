// ABOUTME: Summary tables over result artifacts: per-model means and per-multiplier comparisons
// ABOUTME: Tables are written as CSV under the summary data directory

package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/markalston/opfbench/internal/approx"
)

// DefaultMeanMetrics are summarised when no metric list is given
var DefaultMeanMetrics = []string{"num_buses", "num_constraints", "sum_infeas", "solve_time"}

// Mode selects how approximations are compared with the reference
type Mode string

const (
	ModeNominal Mode = "nominal" // raw values
	ModePct     Mode = "pct"     // percent difference from acopf
	ModeVector  Mode = "vector"  // norm of the element-wise difference from acopf
)

// Reporter builds summary tables from artifacts under SolutionDir
type Reporter struct {
	Loader      *Loader
	SolutionDir string
	SummaryDir  string
}

// CaseDir returns the artifact directory of a case
func (r *Reporter) CaseDir(caseName string) string {
	return filepath.Join(r.SolutionDir, caseName)
}

// DataDir returns the summary data directory, creating it when missing
func (r *Reporter) DataDir() (string, error) {
	return ensureDir(filepath.Join(r.SummaryDir, "data"))
}

// FigureDir returns the summary figure directory, creating it when missing
func (r *Reporter) FigureDir() (string, error) {
	return ensureDir(filepath.Join(r.SummaryDir, "figures"))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// MeanDataFile is the mean table name for a case
func MeanDataFile(caseName string) string {
	return "mean_data_" + caseName + ".csv"
}

// SensitivityDataFile is the sensitivity table name for a case and metric
func SensitivityDataFile(caseName, metric string) string {
	return "sensitivity_data_" + caseName + "_" + metric + ".csv"
}

// MeanData averages each scalar metric over multipliers for every model in the
// catalog; disabled models are filtered later by GetData. solve_time also gets
// solve_time_geomean and solve_time_max columns, and its mean column is solve_time_avg.
func (r *Reporter) MeanData(ctx context.Context, caseName string, metricNames []string) (*Table, string, error) {
	if len(metricNames) == 0 {
		metricNames = DefaultMeanMetrics
	}

	models := approx.IDs()
	t := NewTable(models, nil)
	for _, name := range metricNames {
		m, err := LookupMetric(name)
		if err != nil {
			return nil, "", err
		}
		if m.IsVector {
			return nil, "", fmt.Errorf("mean data needs a scalar metric, %s is a vector", name)
		}

		col := name
		if name == "solve_time" {
			t.AddCol(name + "_geomean")
			t.AddCol(name + "_max")
			col = name + "_avg"
		}
		t.AddCol(col)

		for _, model := range models {
			s, err := r.Loader.Series(ctx, r.CaseDir(caseName), caseName, model, m)
			if err != nil {
				return nil, "", err
			}
			vals := finite(s.Scalars())
			if len(vals) == 0 {
				continue
			}
			if name == "solve_time" {
				t.Set(model, name+"_geomean", geometricMean(vals))
				t.Set(model, name+"_max", floats.Max(vals))
			}
			t.Set(model, col, stat.Mean(vals, nil))
		}
	}

	path, err := r.write(t, MeanDataFile(caseName))
	return t, path, err
}

// SensitivityData tabulates metric per multiplier (rows) for each enabled model
// (columns). acopf is always included as the reference.
func (r *Reporter) SensitivityData(ctx context.Context, caseName string, set approx.Set, metricName string, mode Mode, norm float64) (*Table, string, error) {
	m, err := LookupMetric(metricName)
	if err != nil {
		return nil, "", err
	}
	switch mode {
	case ModeNominal, ModePct:
		if m.IsVector {
			return nil, "", fmt.Errorf("%s is a vector metric, use vector mode", metricName)
		}
	case ModeVector:
		if !m.IsVector {
			return nil, "", fmt.Errorf("%s is a scalar metric, vector mode needs a vector metric", metricName)
		}
		if norm <= 0 {
			return nil, "", fmt.Errorf("norm must be positive, got %v", norm)
		}
	default:
		return nil, "", fmt.Errorf("unknown mode %q", mode)
	}

	caseDir := r.CaseDir(caseName)
	ref, err := r.Loader.Series(ctx, caseDir, caseName, approx.Reference, m)
	if err != nil {
		return nil, "", err
	}
	slog.Info("Reference data", "case", caseName, "metric", metricName, "mode", mode, "points", len(ref.Points))

	set = set.With(approx.Reference)
	models := set.EnabledIDs()
	t := NewTable(nil, models)
	var mults []float64
	seen := map[float64]bool{}
	series := make(map[string]Series, len(models))

	for _, model := range models {
		s := ref
		if model != approx.Reference {
			s, err = r.Loader.Series(ctx, caseDir, caseName, model, m)
			if err != nil {
				return nil, "", err
			}
		}
		series[model] = s
		for _, p := range s.Points {
			if !seen[p.Mult] {
				seen[p.Mult] = true
				mults = append(mults, p.Mult)
			}
		}
	}
	sort.Float64s(mults)
	for _, mult := range mults {
		t.AddRow(FormatMult(mult))
	}

	for _, model := range models {
		for _, p := range series[model].Points {
			ac, hasRef := ref.At(p.Mult)
			v := math.NaN()
			switch mode {
			case ModeNominal:
				v = p.Value.Scalar
			case ModePct:
				if hasRef {
					v = (p.Value.Scalar - ac.Scalar) / ac.Scalar * 100
				}
			case ModeVector:
				if hasRef {
					v = vectorDistance(p.Value.Vector, ac.Vector, norm)
				}
			}
			if !math.IsNaN(v) {
				t.Set(FormatMult(p.Mult), model, v)
			}
		}
	}

	path, err := r.write(t, SensitivityDataFile(caseName, metricName))
	return t, path, err
}

// GetData reads a summary table and drops disabled models. Tables keyed by
// model (mean data) lose rows; tables keyed by multiplier lose columns.
func (r *Reporter) GetData(file string, set approx.Set) (*Table, error) {
	t, err := ReadTable(filepath.Join(r.SummaryDir, "data", file))
	if err != nil {
		return nil, err
	}
	disabled := set.DisabledIDs()
	if keyedByModel(t) {
		t.DropRows(disabled...)
	} else {
		t.DropCols(disabled...)
	}
	return t, nil
}

func keyedByModel(t *Table) bool {
	for _, row := range t.Rows() {
		if _, ok := approx.Lookup(row); ok {
			return true
		}
	}
	return false
}

// SizePoint is one case on a case-size plot
type SizePoint struct {
	Case string
	X    float64
	Y    float64
	Size float64
}

// SizeSeries holds the case-size points of one model
type SizeSeries struct {
	Model  string
	Points []SizePoint
}

// CaseSize collects x, y and size columns from the mean data of each case.
// Cases without mean data or without the columns are skipped. sizeCol may be empty.
func (r *Reporter) CaseSize(set approx.Set, caseNames []string, xCol, yCol, sizeCol string) ([]SizeSeries, error) {
	byModel := map[string][]SizePoint{}
	for _, c := range caseNames {
		t, err := r.GetData(MeanDataFile(c), set)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !t.HasCol(xCol) || !t.HasCol(yCol) {
			slog.Warn("Mean data lacks plot columns, skipping case", "case", c, "x", xCol, "y", yCol)
			continue
		}
		for _, model := range t.Rows() {
			p := SizePoint{Case: c, X: t.Get(model, xCol), Y: t.Get(model, yCol), Size: math.NaN()}
			if sizeCol != "" {
				p.Size = t.Get(model, sizeCol)
			}
			if math.IsNaN(p.X) || math.IsNaN(p.Y) {
				continue
			}
			byModel[model] = append(byModel[model], p)
		}
	}

	var out []SizeSeries
	for _, id := range approx.IDs() {
		if pts, ok := byModel[id]; ok {
			out = append(out, SizeSeries{Model: id, Points: pts})
		}
	}
	return out, nil
}

// CasesWithMeanData returns the cases in caseNames that have a mean table
func (r *Reporter) CasesWithMeanData(caseNames []string) []string {
	var out []string
	for _, c := range caseNames {
		if _, err := os.Stat(filepath.Join(r.SummaryDir, "data", MeanDataFile(c))); err == nil {
			out = append(out, c)
		}
	}
	return out
}

func (r *Reporter) write(t *Table, name string) (string, error) {
	dir, err := r.DataDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := t.WriteFile(path); err != nil {
		return "", err
	}
	slog.Info("Wrote summary", "file", path, "rows", len(t.Rows()), "cols", len(t.Cols()))
	return path, nil
}

func finite(v []float64) []float64 {
	out := make([]float64, 0, len(v))
	for _, x := range v {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// geometricMean is exp(mean(log v)). A zero reading makes it zero and a
// negative reading, which has no logarithm, makes it NaN.
func geometricMean(v []float64) float64 {
	zero := false
	for _, x := range v {
		switch {
		case x < 0:
			return math.NaN()
		case x == 0:
			zero = true
		}
	}
	if zero {
		return 0
	}
	return stat.GeometricMean(v, nil)
}

// vectorDistance is the L-norm of a-b over ids present in both
func vectorDistance(a, b map[string]float64, norm float64) float64 {
	ids := make([]string, 0, len(a))
	for id := range a {
		if _, ok := b[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return math.NaN()
	}
	sort.Strings(ids)
	x := make([]float64, len(ids))
	y := make([]float64, len(ids))
	for i, id := range ids {
		x[i], y[i] = a[id], b[id]
	}
	return floats.Distance(x, y, norm)
}
