// ABOUTME: Client implementation that runs the solver bridge executable per operation
// ABOUTME: Exchanges request and response JSON files in a private temp directory

package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/markalston/opfbench/internal/grid"
)

// Bridge operations
const (
	opSolve         = "solve"
	opSensitivities = "sensitivities"
	opParse         = "parse"
)

const stderrTail = 2048

// ExecConfig configures the bridge executable
type ExecConfig struct {
	Command string
	Args    []string
	Env     []string      // extra KEY=VALUE pairs
	Timeout time.Duration // per operation; zero means none
}

// Exec runs the bridge as a child process
type Exec struct {
	cfg ExecConfig
}

type wireRequest struct {
	Op             string          `json:"op"`
	Family         Family          `json:"family,omitempty"`
	ModelGenerator string          `json:"model_generator,omitempty"`
	Solver         string          `json:"solver,omitempty"`
	Options        map[string]any  `json:"options,omitempty"`
	PTDFOptions    *PTDFOptions    `json:"ptdf_options,omitempty"`
	SolverTee      bool            `json:"solver_tee"`
	Sensitivity    string          `json:"sensitivity,omitempty"`
	CaseFile       string          `json:"case_file,omitempty"`
	ModelData      *grid.ModelData `json:"model_data,omitempty"`
}

type wireResponse struct {
	ModelData            *grid.ModelData `json:"model_data"`
	TerminationCondition string          `json:"termination_condition"`
	Error                string          `json:"error"`
}

// NewExec validates cfg and returns a bridge client
func NewExec(cfg ExecConfig) (*Exec, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("solver bridge command is required")
	}
	return &Exec{cfg: cfg}, nil
}

// Solve implements Client
func (b *Exec) Solve(ctx context.Context, md *grid.ModelData, req Request) (*Result, error) {
	if req.Formulation == nil {
		return nil, fmt.Errorf("solve: formulation is required")
	}
	p := req.Formulation.params()
	resp, err := b.call(ctx, wireRequest{
		Op:             opSolve,
		Family:         req.Formulation.Family(),
		ModelGenerator: p.generator,
		Solver:         req.Solver,
		Options:        req.Options,
		PTDFOptions:    p.ptdf,
		SolverTee:      req.Tee,
		ModelData:      md,
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		ModelData: resp.ModelData,
		Status:    Status(resp.TerminationCondition),
	}, nil
}

// Sensitivities implements Client
func (b *Exec) Sensitivities(ctx context.Context, md *grid.ModelData, kind string) (*grid.ModelData, error) {
	resp, err := b.call(ctx, wireRequest{
		Op:          opSensitivities,
		Sensitivity: kind,
		ModelData:   md,
	})
	if err != nil {
		return nil, err
	}
	return resp.ModelData, nil
}

// Parse implements Client
func (b *Exec) Parse(ctx context.Context, caseFile string) (*grid.ModelData, error) {
	abs, err := filepath.Abs(caseFile)
	if err != nil {
		return nil, err
	}
	resp, err := b.call(ctx, wireRequest{
		Op:       opParse,
		CaseFile: abs,
	})
	if err != nil {
		return nil, err
	}
	return resp.ModelData, nil
}

func (b *Exec) call(ctx context.Context, req wireRequest) (*wireResponse, error) {
	dir, err := os.MkdirTemp("", "opfbench-bridge-*")
	if err != nil {
		return nil, fmt.Errorf("%s: create work dir: %w", req.Op, err)
	}
	defer os.RemoveAll(dir)

	reqPath := filepath.Join(dir, "request.json")
	respPath := filepath.Join(dir, "response.json")

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", req.Op, err)
	}
	if err := os.WriteFile(reqPath, payload, 0600); err != nil {
		return nil, fmt.Errorf("%s: write request: %w", req.Op, err)
	}

	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, b.cfg.Args...), req.Op, reqPath, respPath)
	cmd := exec.CommandContext(ctx, b.cfg.Command, args...)
	cmd.Env = append(os.Environ(), b.cfg.Env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if req.SolverTee {
		cmd.Stdout = os.Stderr
	}

	start := time.Now()
	runErr := cmd.Run()
	slog.Debug("Bridge call finished", "op", req.Op, "family", req.Family, "solver", req.Solver, "elapsed", time.Since(start))
	if runErr != nil {
		return nil, fmt.Errorf("%s: %w: %v%s", req.Op, ErrBridge, runErr, tail(stderr.Bytes()))
	}

	data, err := os.ReadFile(respPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: no response: %v%s", req.Op, ErrBridge, err, tail(stderr.Bytes()))
	}
	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", req.Op, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s: %w: %s", req.Op, ErrBridge, resp.Error)
	}
	if resp.ModelData == nil {
		return nil, fmt.Errorf("%s: %w: response has no model_data", req.Op, ErrBridge)
	}
	return &resp, nil
}

func tail(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	if len(b) > stderrTail {
		b = b[len(b)-stderrTail:]
	}
	return ": " + string(b)
}
