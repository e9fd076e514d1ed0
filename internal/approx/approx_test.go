package approx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/opfbench/internal/solver"
)

func TestCatalog_OrderAndSize(t *testing.T) {
	want := []string{
		"acopf", "slopf",
		"dlopf_default", "dlopf_lazy", "dlopf_e4", "dlopf_e3", "dlopf_e2",
		"clopf_default", "clopf_lazy", "clopf_e4", "clopf_e3", "clopf_e2",
		"clopf_p_default", "clopf_p_lazy", "clopf_p_e4", "clopf_p_e3", "clopf_p_e2",
		"qcopf_btheta",
		"dcopf_ptdf_default", "dcopf_ptdf_lazy", "dcopf_ptdf_e4", "dcopf_ptdf_e3", "dcopf_ptdf_e2",
		"dcopf_btheta",
	}
	assert.Equal(t, want, IDs())
}

func TestCatalog_Parameters(t *testing.T) {
	tests := []struct {
		id     string
		family solver.Family
		solver string
		source Source
		method bool
	}{
		{"acopf", solver.FamilyACOPF, "ipopt", SourceFlat, false},
		{"slopf", solver.FamilyLCCM, "gurobi", SourceBasepoint, false},
		{"dlopf_default", solver.FamilyFDF, "gurobi", SourceBasepoint, false},
		{"dlopf_e3", solver.FamilyFDF, "gurobi_persistent", SourceBasepoint, true},
		{"clopf_lazy", solver.FamilyFDFSimplified, "gurobi_persistent", SourceBasepoint, true},
		{"clopf_p_default", solver.FamilyDCOPFLosses, "gurobi", SourceBasepoint, false},
		{"qcopf_btheta", solver.FamilyDCOPFLosses, "gurobi", SourceFlat, false},
		{"dcopf_ptdf_e2", solver.FamilyDCOPF, "gurobi_persistent", SourceFlat, true},
		{"dcopf_btheta", solver.FamilyDCOPF, "gurobi", SourceFlat, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			cfg, ok := Lookup(tt.id)
			require.True(t, ok)
			req := cfg.Request(DefaultSolvers)

			assert.Equal(t, tt.family, cfg.Formulation.Family())
			assert.Equal(t, tt.solver, req.Solver)
			assert.Equal(t, tt.source, cfg.Source)
			_, hasMethod := req.Options["method"]
			assert.Equal(t, tt.method, hasMethod)
		})
	}
}

func TestCatalog_ToleranceTiers(t *testing.T) {
	cfg, _ := Lookup("dlopf_e4")
	fdf, ok := cfg.Formulation.(solver.FDF)
	require.True(t, ok)
	assert.True(t, fdf.PTDF.Lazy)
	require.NotNil(t, fdf.PTDF.LazyVoltage)
	assert.True(t, *fdf.PTDF.LazyVoltage)
	assert.Equal(t, 1e-4, fdf.PTDF.AbsPTDFTol)
	assert.Equal(t, 5e-4, fdf.PTDF.AbsQTDFTol)
	assert.Equal(t, 10e-4, fdf.PTDF.RelVDFTol)

	cfg, _ = Lookup("dcopf_ptdf_e3")
	dc, ok := cfg.Formulation.(solver.DCOPF)
	require.True(t, ok)
	assert.Equal(t, solver.GeneratorPTDF, dc.Generator)
	require.NotNil(t, dc.PTDF)
	assert.Equal(t, 1e-3, dc.PTDF.AbsPTDFTol)
	assert.Zero(t, dc.PTDF.AbsQTDFTol)
	assert.Nil(t, dc.PTDF.LazyVoltage)

	cfg, _ = Lookup("clopf_default")
	fs := cfg.Formulation.(solver.FDFSimplified)
	assert.False(t, fs.PTDF.Lazy)
	require.NotNil(t, fs.PTDF.LazyVoltage)
	assert.False(t, *fs.PTDF.LazyVoltage)
}

func TestRequest_CopiesOptions(t *testing.T) {
	cfg, _ := Lookup("dlopf_lazy")
	req := cfg.Request(Solvers{NLP: "ipopt", LP: "cbc", Persistent: "cbc"})
	req.Options["method"] = 2

	again := cfg.Request(DefaultSolvers)
	assert.Equal(t, 1, again.Options["method"])
	assert.Equal(t, "cbc", req.Solver)
}

func TestSet_DerivedSetsAreCopies(t *testing.T) {
	base := None()
	with := base.With("slopf", "dlopf_lazy")

	assert.False(t, base.Enabled("slopf"))
	assert.True(t, with.Enabled("slopf"))
	assert.Equal(t, []string{"slopf", "dlopf_lazy"}, with.EnabledIDs())

	without := with.Without("slopf")
	assert.True(t, with.Enabled("slopf"))
	assert.False(t, without.Enabled("slopf"))
}

func TestSet_UnknownIDsIgnored(t *testing.T) {
	s := None().With("not_a_model")
	assert.True(t, s.Empty())
	assert.False(t, s.Enabled("not_a_model"))
}

func TestSet_WithoutVariantsThenWithLazy(t *testing.T) {
	plain := All().WithoutVariants()
	assert.Equal(t, []string{
		"acopf", "slopf", "dlopf_default", "clopf_default", "clopf_p_default",
		"qcopf_btheta", "dcopf_ptdf_default", "dcopf_btheta",
	}, plain.EnabledIDs())

	pareto := plain.WithLazy()
	assert.True(t, pareto.Enabled("dlopf_lazy"))
	assert.True(t, pareto.Enabled("dcopf_ptdf_lazy"))
	assert.False(t, pareto.Enabled("dlopf_e4"))
}

func TestSet_Only(t *testing.T) {
	s := All().Without("slopf").Only("acopf", "slopf")
	assert.Equal(t, []string{"acopf"}, s.EnabledIDs())
	assert.Len(t, s.DisabledIDs(), 23)
}

func TestSet_Configs(t *testing.T) {
	cfgs := None().With("dcopf_btheta", "acopf").Configs()
	require.Len(t, cfgs, 2)
	assert.Equal(t, "acopf", cfgs[0].ID)
	assert.Equal(t, "dcopf_btheta", cfgs[1].ID)
}

func TestParse(t *testing.T) {
	s, err := Parse(nil)
	require.NoError(t, err)
	assert.Len(t, s.EnabledIDs(), 24)

	s, err = Parse([]string{"acopf", "slopf"})
	require.NoError(t, err)
	assert.Equal(t, []string{"acopf", "slopf"}, s.EnabledIDs())

	_, err = Parse([]string{"bogus"})
	assert.ErrorContains(t, err, "bogus")
}

func TestZeroSetIsEmpty(t *testing.T) {
	var s Set
	assert.True(t, s.Empty())
	assert.True(t, s.With("acopf").Enabled("acopf"))
}
