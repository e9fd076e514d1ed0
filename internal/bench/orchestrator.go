// ABOUTME: Runs every enabled model configuration at one demand multiplier
// ABOUTME: A failing configuration becomes an outcome and never stops its siblings

package bench

import (
	"context"
	"log/slog"
	"time"

	"github.com/markalston/opfbench/internal/approx"
	"github.com/markalston/opfbench/internal/grid"
	"github.com/markalston/opfbench/internal/solver"
)

// Outcome is the result of one configuration at one multiplier
type Outcome struct {
	ConfigID string        `json:"config_id"`
	Mult     float64       `json:"mult"`
	File     string        `json:"file,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Err      error         `json:"-"`
}

// OK reports whether an artifact was written
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Orchestrator solves catalog configurations through the bridge and records successes
type Orchestrator struct {
	client   solver.Client
	solvers  approx.Solvers
	recorder *Recorder
}

func NewOrchestrator(client solver.Client, solvers approx.Solvers, recorder *Recorder) *Orchestrator {
	return &Orchestrator{client: client, solvers: solvers, recorder: recorder}
}

// RunMultiplier attempts every configuration enabled in set, in catalog order.
// Basepoint-sourced configurations scale basepoint, the rest scale flat.
// It stops early only when ctx is cancelled.
func (o *Orchestrator) RunMultiplier(ctx context.Context, basepoint, flat *grid.ModelData, mult float64, set approx.Set) []Outcome {
	var outcomes []Outcome
	for _, cfg := range set.Configs() {
		if ctx.Err() != nil {
			return outcomes
		}
		outcomes = append(outcomes, o.runOne(ctx, cfg, basepoint, flat, mult))
	}
	return outcomes
}

func (o *Orchestrator) runOne(ctx context.Context, cfg approx.Config, basepoint, flat *grid.ModelData, mult float64) Outcome {
	start := time.Now()
	out := Outcome{ConfigID: cfg.ID, Mult: mult}
	fail := func(err error) Outcome {
		out.Elapsed = time.Since(start)
		out.Err = &solver.SolveError{ConfigID: cfg.ID, Mult: mult, Err: err}
		slog.Warn("Model solve failed", "config", cfg.ID, "mult", mult, "error", err)
		return out
	}

	base := flat
	if cfg.Source == approx.SourceBasepoint {
		base = basepoint
	}
	md, err := grid.ScaleLoads(base, mult)
	if err != nil {
		return fail(err)
	}

	res, err := o.client.Solve(ctx, md, cfg.Request(o.solvers))
	if err != nil {
		return fail(err)
	}

	name, err := o.recorder.Record(cfg.ID, mult, res.ModelData)
	if err != nil {
		return fail(err)
	}

	out.File = name
	out.Elapsed = time.Since(start)
	slog.Debug("Model solved", "config", cfg.ID, "mult", mult, "status", res.Status, "elapsed", out.Elapsed)
	return out
}
