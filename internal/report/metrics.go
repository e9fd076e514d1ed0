// ABOUTME: Registry of metrics extracted from result artifacts
// ABOUTME: Scalar metrics yield one number per artifact, vector metrics one number per element id

package report

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/markalston/opfbench/internal/grid"
)

// Value is one metric reading. Vector is nil for scalar metrics.
type Value struct {
	Scalar float64
	Vector map[string]float64
}

// Metric extracts a Value from a solved snapshot
type Metric struct {
	Name     string
	Unit     string
	IsVector bool
	extract  func(md *grid.ModelData) (Value, error)
}

// Extract reads the metric from md. Missing attributes read as NaN.
func (m Metric) Extract(md *grid.ModelData) (Value, error) {
	return m.extract(md)
}

var metrics = map[string]Metric{}

func register(name, unit string, fn func(md *grid.ModelData) (float64, error)) {
	metrics[name] = Metric{Name: name, Unit: unit, extract: func(md *grid.ModelData) (Value, error) {
		v, err := fn(md)
		return Value{Scalar: v}, err
	}}
}

func registerVector(name, unit, kind, attr string) {
	metrics[name] = Metric{Name: name, Unit: unit, IsVector: true, extract: func(md *grid.ModelData) (Value, error) {
		out := make(map[string]float64, md.Count(kind))
		for id, el := range elements(md, kind) {
			if v, ok := el.Float(attr); ok {
				out[id] = v
			}
		}
		return Value{Vector: out}, nil
	}}
}

func init() {
	register("num_buses", "", func(md *grid.ModelData) (float64, error) {
		return float64(md.Count(grid.KindBus)), nil
	})
	register("num_branches", "", func(md *grid.ModelData) (float64, error) {
		return float64(md.Count(grid.KindBranch)), nil
	})
	register("solve_time", "s", resultsField("time"))
	register("num_constraints", "", resultsField("#_cons"))
	register("num_variables", "", resultsField("#_vars"))
	register("num_nonzeros", "", resultsField("#_nz"))
	register("model_sparsity", "", func(md *grid.ModelData) (float64, error) {
		nz, err := resultsField("#_nz")(md)
		if err != nil {
			return 0, err
		}
		cons, _ := resultsField("#_cons")(md)
		vars, _ := resultsField("#_vars")(md)
		return nz / (cons * vars), nil
	})
	register("total_cost", "$", systemField("total_cost"))
	register("ploss", "MW", systemField("ploss"))
	register("qloss", "MVAr", systemField("qloss"))

	registerVector("pgen", "MW", grid.KindGenerator, "pg")
	registerVector("qgen", "MVAr", grid.KindGenerator, "qg")
	registerVector("pflow", "MW", grid.KindBranch, "pf")
	registerVector("qflow", "MVAr", grid.KindBranch, "qf")
	registerVector("vmag", "p.u.", grid.KindBus, "vm")

	for _, inf := range []struct {
		name string
		fn   func(md *grid.ModelData) []float64
	}{
		{"kcl_p_infeas", balanceViolations("p_balance_violation")},
		{"kcl_q_infeas", balanceViolations("q_balance_violation")},
		{"thermal_infeas", thermalViolations},
	} {
		fn := inf.fn
		register(inf.name, "p.u.", func(md *grid.ModelData) (float64, error) {
			return floats.Sum(fn(md)), nil
		})
		register("avg_"+inf.name, "p.u.", func(md *grid.ModelData) (float64, error) {
			v := fn(md)
			if len(v) == 0 {
				return 0, nil
			}
			return stat.Mean(v, nil), nil
		})
		register("max_"+inf.name, "p.u.", func(md *grid.ModelData) (float64, error) {
			v := fn(md)
			if len(v) == 0 {
				return 0, nil
			}
			return floats.Max(v), nil
		})
	}

	register("sum_infeas", "p.u.", func(md *grid.ModelData) (float64, error) {
		return floats.Sum(balanceViolations("p_balance_violation")(md)) +
			floats.Sum(balanceViolations("q_balance_violation")(md)) +
			floats.Sum(thermalViolations(md)), nil
	})
}

// LookupMetric returns the registered metric
func LookupMetric(name string) (Metric, error) {
	m, ok := metrics[name]
	if !ok {
		return Metric{}, fmt.Errorf("unknown metric %q", name)
	}
	return m, nil
}

// MetricNames returns every registered metric name, sorted
func MetricNames() []string {
	names := make([]string, 0, len(metrics))
	for n := range metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func resultsField(key string) func(md *grid.ModelData) (float64, error) {
	return func(md *grid.ModelData) (float64, error) {
		results, err := md.Section("results")
		if err != nil {
			return 0, err
		}
		v, ok := grid.Element(results).Float(key)
		if !ok {
			return math.NaN(), nil
		}
		return v, nil
	}
}

func systemField(key string) func(md *grid.ModelData) (float64, error) {
	return func(md *grid.ModelData) (float64, error) {
		v, ok := md.SystemFloat(key)
		if !ok {
			return math.NaN(), nil
		}
		return v, nil
	}
}

// balanceViolations returns |attr| per bus in id order
func balanceViolations(attr string) func(md *grid.ModelData) []float64 {
	return func(md *grid.ModelData) []float64 {
		var out []float64
		for _, id := range sortedIDs(md, grid.KindBus) {
			if v, ok := md.Elements(grid.KindBus)[id].Float(attr); ok {
				out = append(out, math.Abs(v))
			}
		}
		return out
	}
}

// thermalViolations returns the apparent power in excess of the long term
// rating per rated branch, at the worse end. Missing reactive flows count as zero.
func thermalViolations(md *grid.ModelData) []float64 {
	var out []float64
	for _, id := range sortedIDs(md, grid.KindBranch) {
		br := md.Elements(grid.KindBranch)[id]
		rating, ok := br.Float("rating_long_term")
		if !ok {
			continue
		}
		pf, okf := br.Float("pf")
		if !okf {
			continue
		}
		qf, _ := br.Float("qf")
		pt, okt := br.Float("pt")
		if !okt {
			pt = -pf
		}
		qt, _ := br.Float("qt")
		s := math.Max(math.Hypot(pf, qf), math.Hypot(pt, qt))
		out = append(out, math.Max(0, s-rating))
	}
	return out
}

// elements reads without creating the kind, so cached snapshots stay unmodified
func elements(md *grid.ModelData, kind string) map[string]grid.Element {
	if md.Count(kind) == 0 {
		return nil
	}
	return md.Elements(kind)
}

func sortedIDs(md *grid.ModelData, kind string) []string {
	els := elements(md, kind)
	ids := make([]string, 0, len(els))
	for id := range els {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
