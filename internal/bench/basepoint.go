// ABOUTME: Base point setup: reference AC OPF on the unscaled case plus the feasible demand range
// ABOUTME: A base case that does not solve to optimality aborts the run

package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/markalston/opfbench/internal/grid"
	"github.com/markalston/opfbench/internal/solver"
)

// ErrBaseCaseInfeasible is returned when the base AC OPF is not optimal
var ErrBaseCaseInfeasible = errors.New("base case acopf did not return optimal solution")

// Basepoint is the solved base case and the demand range to sweep
type Basepoint struct {
	Snapshot *grid.ModelData
	Min      SearchResult
	Max      SearchResult
}

// SetBasepoint solves the reference AC OPF on the in-service base case, then
// searches the lowest and highest feasible multipliers from initMin and initMax.
func SetBasepoint(ctx context.Context, client solver.Client, acSolver string, flat *grid.ModelData, initMin, initMax float64, steps int) (*Basepoint, error) {
	md := flat.CloneInService()

	res, err := client.Solve(ctx, md, solver.Request{
		Formulation: solver.ACOPF{Generator: solver.GeneratorPSV},
		Solver:      acSolver,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBaseCaseInfeasible, err)
	}
	if !res.Status.Optimal() {
		return nil, fmt.Errorf("%w: termination condition %q", ErrBaseCaseInfeasible, res.Status)
	}
	slog.Info("Base case solved", "case", flat.ModelName(), "status", res.Status)

	lo, err := searchBound(ctx, client, acSolver, md, initMin, steps)
	if err != nil {
		return nil, fmt.Errorf("search minimum multiplier: %w", err)
	}
	hi, err := searchBound(ctx, client, acSolver, md, initMax, steps)
	if err != nil {
		return nil, fmt.Errorf("search maximum multiplier: %w", err)
	}

	return &Basepoint{Snapshot: res.ModelData, Min: lo, Max: hi}, nil
}

// searchBound runs the feasibility search from init. A bound of 1 is the
// already solved base case, so it is returned without searching.
func searchBound(ctx context.Context, client solver.Client, acSolver string, md *grid.ModelData, init float64, steps int) (SearchResult, error) {
	if init == 1 {
		slog.Info("Search bound is the base case, not searching", "init", init)
		return SearchResult{Mult: 1}, nil
	}
	return FeasibleMultiplier(ctx, client, acSolver, md, init, steps)
}
