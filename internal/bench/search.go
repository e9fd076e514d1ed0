// ABOUTME: Feasibility search for extremal demand multipliers with an AC OPF solution
// ABOUTME: Walks candidates from init toward 1 and returns the first that solves

package bench

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/markalston/opfbench/internal/grid"
	"github.com/markalston/opfbench/internal/solver"
)

// ErrDegenerateInterval is returned when init is 1 or steps is not positive
var ErrDegenerateInterval = errors.New("degenerate search interval")

// SearchResult is the outcome of a feasibility search. Found is false when
// every candidate failed and Mult fell back to 1.
type SearchResult struct {
	Mult  float64 `json:"mult"`
	Found bool    `json:"found"`
}

// FeasibleMultiplier tries steps candidates spaced |1-init|/steps apart,
// starting at init, solving the reference AC OPF on base scaled by each.
// The first candidate whose solve succeeds is returned.
//
// Candidates are init - step*inc for both init < 1 and init > 1, so a lower
// bound search moves away from 1.
func FeasibleMultiplier(ctx context.Context, client solver.Client, acSolver string, base *grid.ModelData, init float64, steps int) (SearchResult, error) {
	if init == 1 || steps < 1 {
		return SearchResult{}, ErrDegenerateInterval
	}

	inc := math.Abs(1-init) / float64(steps)
	req := solver.Request{
		Formulation: solver.ACOPF{Generator: solver.GeneratorPSV},
		Solver:      acSolver,
	}

	var mult float64
	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return SearchResult{}, err
		}
		mult = grid.RoundMultiplier(init - float64(step)*inc)

		md, err := grid.ScaleLoads(base, mult)
		if err != nil {
			return SearchResult{}, err
		}

		if _, err := client.Solve(ctx, md, req); err != nil {
			if ctx.Err() != nil {
				return SearchResult{}, ctx.Err()
			}
			slog.Info("Multiplier raises an error, continuing search", "mult", mult, "error", err)
			continue
		}
		slog.Info("Multiplier has an acceptable solution", "mult", mult)
		return SearchResult{Mult: mult, Found: true}, nil
	}

	slog.Warn("Found no acceptable solutions with mult != 1", "init", init, "last_tried", mult)
	return SearchResult{Mult: 1, Found: false}, nil
}
