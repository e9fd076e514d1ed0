// ABOUTME: Sweep driver: base point setup, sensitivity precompute and the demand multiplier loop
// ABOUTME: Produces one artifact per successful configuration and multiplier plus a run manifest

package bench

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/markalston/opfbench/internal/approx"
	"github.com/markalston/opfbench/internal/grid"
	"github.com/markalston/opfbench/internal/solver"
)

// Options tune the demand sweep
type Options struct {
	InitMin     float64
	InitMax     float64
	SearchSteps int
	SweepSteps  int
}

// DefaultOptions sweeps 0.9..1.1 in 20 steps after a 10 step feasibility search
func DefaultOptions() Options {
	return Options{InitMin: 0.9, InitMax: 1.1, SearchSteps: 10, SweepSteps: 20}
}

// Sweeper runs the solve stage for cases
type Sweeper struct {
	Client      solver.Client
	Solvers     approx.Solvers
	Options     Options
	SolutionDir string // artifacts go to SolutionDir/<case>
}

// LoadCase reads a case file: parsed .json directly, anything else through the bridge
func LoadCase(ctx context.Context, client solver.Client, path string) (*grid.ModelData, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return grid.ReadFile(path)
	}
	md, err := client.Parse(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return md, nil
}

// Multipliers returns the steps+1 sweep points from lo to hi, rounded to 4 places
func Multipliers(lo, hi float64, steps int) []float64 {
	if steps < 1 {
		return []float64{grid.RoundMultiplier(lo)}
	}
	inc := (hi - lo) / float64(steps)
	out := make([]float64, 0, steps+1)
	for step := 0; step <= steps; step++ {
		out = append(out, grid.RoundMultiplier(lo+float64(step)*inc))
	}
	return out
}

// Run sweeps one case. The reference acopf is always enabled.
// Errors before the multiplier loop are fatal; per-model failures land in the manifest.
func (s *Sweeper) Run(ctx context.Context, caseName, casePath string, set approx.Set) (*Manifest, error) {
	manifest := NewManifest(caseName)
	log := slog.With("case", caseName, "run_id", manifest.RunID)

	flat, err := LoadCase(ctx, s.Client, casePath)
	if err != nil {
		return nil, err
	}
	if flat.ModelName() == "" {
		flat.SetSystem("model_name", caseName)
	}

	bp, err := SetBasepoint(ctx, s.Client, s.Solvers.NLP, flat, s.Options.InitMin, s.Options.InitMax, s.Options.SearchSteps)
	if err != nil {
		return nil, err
	}
	log.Info("Demand range found", "min", bp.Min.Mult, "max", bp.Max.Mult)

	set = set.With(approx.Reference)

	basepoint, err := s.Client.Sensitivities(ctx, bp.Snapshot, grid.SensitivityFDFSimplified)
	if err != nil {
		return nil, fmt.Errorf("basepoint sensitivities: %w", err)
	}
	flatSens, err := s.Client.Sensitivities(ctx, flat, grid.SensitivityPTDF)
	if err != nil {
		return nil, fmt.Errorf("flat sensitivities: %w", err)
	}

	dir := filepath.Join(s.SolutionDir, caseName)
	recorder, err := NewRecorder(dir, caseName)
	if err != nil {
		return nil, err
	}
	orch := NewOrchestrator(s.Client, s.Solvers, recorder)

	manifest.Min, manifest.Max = bp.Min, bp.Max
	manifest.Steps = s.Options.SweepSteps
	manifest.Models = set.EnabledIDs()

	for _, mult := range Multipliers(bp.Min.Mult, bp.Max.Mult, s.Options.SweepSteps) {
		start := time.Now()
		outcomes := orch.RunMultiplier(ctx, basepoint, flatSens, mult, set)
		manifest.Add(outcomes...)
		log.Info("Multiplier done", "mult", mult, "models", len(outcomes), "elapsed", time.Since(start).Round(time.Millisecond))
		if ctx.Err() != nil {
			break
		}
	}

	manifest.Finished = time.Now().UTC()
	path, werr := manifest.Write(dir)
	if werr != nil {
		return manifest, werr
	}
	log.Info("Sweep finished", "manifest", path, "outcomes", len(manifest.Outcomes), "failures", manifest.Failures())
	return manifest, ctx.Err()
}
