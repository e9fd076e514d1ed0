package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/opfbench/internal/grid"
)

// helperBridge returns a client that re-executes the test binary as the bridge
func helperBridge(t *testing.T, mode string) *Exec {
	t.Helper()
	b, err := NewExec(ExecConfig{
		Command: os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess", "--"},
		Env:     []string{"GO_WANT_HELPER_PROCESS=1", "BRIDGE_MODE=" + mode},
		Timeout: 30 * time.Second,
	})
	require.NoError(t, err)
	return b
}

// TestHelperProcess is the fake bridge; it does nothing under a normal test run
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) != 4 {
		fmt.Fprintf(os.Stderr, "usage: <op> <request> <response>, got %v\n", args)
		os.Exit(2)
	}
	op, reqPath, respPath := args[1], args[2], args[3]

	var req wireRequest
	data, err := os.ReadFile(reqPath)
	if err == nil {
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	resp := wireResponse{TerminationCondition: "optimal"}
	switch os.Getenv("BRIDGE_MODE") {
	case "crash":
		fmt.Fprintln(os.Stderr, "ipopt: segmentation fault")
		os.Exit(3)
	case "silent":
		os.Exit(0)
	case "error":
		resp.Error = "model is infeasible"
	case "infeasible":
		resp.TerminationCondition = "infeasible"
		resp.ModelData = req.ModelData
	default:
		switch op {
		case opParse:
			md := grid.New()
			md.SetSystem("model_name", filepath.Base(req.CaseFile))
			md.Elements(grid.KindBus)["1"] = grid.Element{"vm": 1.0}
			resp.ModelData = md
		case opSensitivities:
			md := req.ModelData
			md.SetSystem(req.Sensitivity+"_c", 0.5)
			resp.ModelData = md
		default:
			md := req.ModelData
			md.SetSystem("echo_op", req.Op)
			md.SetSystem("echo_family", string(req.Family))
			md.SetSystem("echo_generator", req.ModelGenerator)
			md.SetSystem("echo_solver", req.Solver)
			if req.PTDFOptions != nil {
				md.SetSystem("echo_lazy", req.PTDFOptions.Lazy)
				md.SetSystem("echo_abs_ptdf_tol", req.PTDFOptions.AbsPTDFTol)
			}
			if v, ok := req.Options["method"]; ok {
				md.SetSystem("echo_method", v)
			}
			_ = md.SetSection("results", map[string]any{"time": 0.125})
			resp.ModelData = md
		}
	}

	out, _ := json.Marshal(resp)
	if err := os.WriteFile(respPath, out, 0600); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	os.Exit(0)
}

func sampleModel() *grid.ModelData {
	md := grid.New()
	md.SetSystem("model_name", "pglib_opf_case3_lmbd")
	md.Elements(grid.KindLoad)["1"] = grid.Element{"p_load": 110.0, "q_load": 40.0}
	return md
}

func TestNewExec_RequiresCommand(t *testing.T) {
	_, err := NewExec(ExecConfig{})
	assert.Error(t, err)
}

func TestExec_SolvePassesFormulation(t *testing.T) {
	b := helperBridge(t, "echo")

	res, err := b.Solve(context.Background(), sampleModel(), Request{
		Formulation: FDF{PTDF: PTDFOptions{Lazy: true, AbsPTDFTol: 1e-3}},
		Solver:      "gurobi_persistent",
		Options:     map[string]any{"method": 1},
	})
	require.NoError(t, err)

	assert.True(t, res.Status.Optimal())
	md := res.ModelData
	assert.Equal(t, "solve", md.SystemString("echo_op"))
	assert.Equal(t, "fdf", md.SystemString("echo_family"))
	assert.Equal(t, "gurobi_persistent", md.SystemString("echo_solver"))
	assert.Equal(t, true, md.System()["echo_lazy"])
	tol, _ := md.SystemFloat("echo_abs_ptdf_tol")
	assert.Equal(t, 1e-3, tol)
	method, _ := md.SystemFloat("echo_method")
	assert.Equal(t, 1.0, method)

	results, err := md.Section("results")
	require.NoError(t, err)
	assert.Equal(t, 0.125, results["time"])
}

func TestExec_SolveSendsGenerator(t *testing.T) {
	b := helperBridge(t, "echo")

	res, err := b.Solve(context.Background(), sampleModel(), Request{
		Formulation: ACOPF{Generator: GeneratorPSV},
		Solver:      "ipopt",
	})
	require.NoError(t, err)
	assert.Equal(t, "acopf", res.ModelData.SystemString("echo_family"))
	assert.Equal(t, "psv", res.ModelData.SystemString("echo_generator"))
}

func TestExec_SolveRequiresFormulation(t *testing.T) {
	b := helperBridge(t, "echo")
	_, err := b.Solve(context.Background(), sampleModel(), Request{Solver: "ipopt"})
	assert.Error(t, err)
}

func TestExec_NonOptimalStatusIsSurfaced(t *testing.T) {
	b := helperBridge(t, "infeasible")

	res, err := b.Solve(context.Background(), sampleModel(), Request{Formulation: ACOPF{Generator: GeneratorPSV}})
	require.NoError(t, err)
	assert.False(t, res.Status.Optimal())
	assert.Equal(t, Status("infeasible"), res.Status)
}

func TestExec_Failures(t *testing.T) {
	tests := []struct {
		mode    string
		contain string
	}{
		{"error", "model is infeasible"},
		{"crash", "segmentation fault"},
		{"silent", "no response"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			b := helperBridge(t, tt.mode)
			_, err := b.Solve(context.Background(), sampleModel(), Request{Formulation: LCCM{}, Solver: "gurobi"})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBridge)
			assert.Contains(t, err.Error(), tt.contain)
		})
	}
}

func TestExec_Sensitivities(t *testing.T) {
	b := helperBridge(t, "echo")

	md, err := b.Sensitivities(context.Background(), sampleModel(), grid.SensitivityPTDF)
	require.NoError(t, err)
	assert.True(t, grid.HasSensitivities(md))
}

func TestExec_Parse(t *testing.T) {
	b := helperBridge(t, "echo")

	md, err := b.Parse(context.Background(), "pglib_opf_case5_pjm.m")
	require.NoError(t, err)
	assert.Equal(t, "pglib_opf_case5_pjm.m", md.ModelName())
	assert.Equal(t, 1, md.Count(grid.KindBus))
}

func TestExec_CancelledContext(t *testing.T) {
	b := helperBridge(t, "echo")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Solve(ctx, sampleModel(), Request{Formulation: LCCM{}})
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		f    Formulation
		want string
	}{
		{ACOPF{Generator: GeneratorPSV}, "acopf/psv"},
		{LCCM{}, "lccm"},
		{FDF{PTDF: PTDFOptions{Lazy: true}}, "fdf(lazy)"},
		{FDFSimplified{}, "fdf_simplified"},
		{DCOPF{Generator: GeneratorBTheta}, "dcopf/btheta"},
		{DCOPFLosses{Generator: GeneratorPTDF, PTDF: &PTDFOptions{Lazy: true}}, "dcopf_losses/ptdf(lazy)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(tt.f))
	}
}

func TestSolveError_Unwrap(t *testing.T) {
	err := fmt.Errorf("orchestrate: %w", &SolveError{ConfigID: "dlopf_lazy", Mult: 0.95, Err: ErrBridge})

	var se *SolveError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "dlopf_lazy", se.ConfigID)
	assert.ErrorIs(t, err, ErrBridge)
	assert.Contains(t, err.Error(), "dlopf_lazy at mult=0.95")
}
