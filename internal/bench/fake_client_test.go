package bench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markalston/opfbench/internal/grid"
	"github.com/markalston/opfbench/internal/solver"
)

// solveCall records one Solve invocation
type solveCall struct {
	family solver.Family
	solver string
	mult   float64
	source string
}

// fakeClient implements solver.Client for testing
type fakeClient struct {
	SolveFn         func(ctx context.Context, md *grid.ModelData, req solver.Request) (*solver.Result, error)
	SensitivitiesFn func(ctx context.Context, md *grid.ModelData, kind string) (*grid.ModelData, error)
	ParseFn         func(ctx context.Context, caseFile string) (*grid.ModelData, error)

	solves []solveCall
	sens   []string
}

func (f *fakeClient) Solve(ctx context.Context, md *grid.ModelData, req solver.Request) (*solver.Result, error) {
	f.solves = append(f.solves, solveCall{
		family: req.Formulation.Family(),
		solver: req.Solver,
		mult:   loadMult(md),
		source: md.SystemString("snapshot"),
	})
	if f.SolveFn != nil {
		return f.SolveFn(ctx, md, req)
	}
	_ = md.SetSection("results", map[string]any{"time": 0.5, "#_cons": 12})
	return &solver.Result{ModelData: md, Status: solver.StatusOptimal}, nil
}

func (f *fakeClient) Sensitivities(ctx context.Context, md *grid.ModelData, kind string) (*grid.ModelData, error) {
	f.sens = append(f.sens, kind+"@"+md.SystemString("snapshot"))
	if f.SensitivitiesFn != nil {
		return f.SensitivitiesFn(ctx, md, kind)
	}
	out := md.Clone()
	out.SetSystem(kind+"_c", 1.0)
	return out, nil
}

func (f *fakeClient) Parse(ctx context.Context, caseFile string) (*grid.ModelData, error) {
	if f.ParseFn != nil {
		return f.ParseFn(ctx, caseFile)
	}
	return caseModel(), nil
}

// caseModel is a two-load case whose L1 p_load is 100, so scaled p_load/100 is the multiplier
func caseModel() *grid.ModelData {
	md := grid.New()
	md.SetSystem("model_name", "pglib_opf_case3_lmbd")
	md.SetSystem("snapshot", "flat")
	md.Elements(grid.KindLoad)["L1"] = grid.Element{"p_load": 100.0, "q_load": 50.0}
	md.Elements(grid.KindLoad)["L2"] = grid.Element{"p_load": 20.0, "q_load": 10.0}
	md.Elements(grid.KindBus)["1"] = grid.Element{"vm": 1.0}
	return md
}

func basepointModel() *grid.ModelData {
	md := caseModel()
	md.SetSystem("snapshot", "basepoint")
	return md
}

func loadMult(md *grid.ModelData) float64 {
	l1, ok := md.Elements(grid.KindLoad)["L1"]
	if !ok {
		return 0
	}
	p, _ := l1.Float("p_load")
	return grid.RoundMultiplier(p / 100)
}

func (f *fakeClient) mults() []float64 {
	out := make([]float64, len(f.solves))
	for i, c := range f.solves {
		out[i] = c.mult
	}
	return out
}

func requireFile(t *testing.T, path string) {
	t.Helper()
	_, err := grid.ReadFile(path)
	require.NoError(t, err, "expected artifact %s", path)
}
