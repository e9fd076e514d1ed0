// ABOUTME: Solver bridge contract: requests, results, termination status and errors
// ABOUTME: Every OPF build and solve is delegated to an external bridge behind Client

package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/markalston/opfbench/internal/grid"
)

// Status is the solver termination condition reported by the bridge
type Status string

// StatusOptimal is the only status accepted for the base case
const StatusOptimal Status = "optimal"

// Optimal reports whether the solve terminated optimally
func (s Status) Optimal() bool {
	return s == StatusOptimal
}

// ErrBridge marks a failure reported by the bridge itself
var ErrBridge = errors.New("solver bridge failure")

// Request describes one solve
type Request struct {
	Formulation Formulation
	Solver      string
	Options     map[string]any
	Tee         bool
}

// Result is a solved snapshot and its termination status
type Result struct {
	ModelData *grid.ModelData
	Status    Status
}

// Client is implemented by the solver bridge
type Client interface {
	// Solve builds and solves the requested formulation on md.
	// It fails when the solver does not reach a usable solution.
	Solve(ctx context.Context, md *grid.ModelData, req Request) (*Result, error)
	// Sensitivities returns md with the given sensitivity caches attached
	Sensitivities(ctx context.Context, md *grid.ModelData, kind string) (*grid.ModelData, error)
	// Parse converts a raw case file into model data
	Parse(ctx context.Context, caseFile string) (*grid.ModelData, error)
}

// SolveError is a failed solve of one model configuration at one multiplier
type SolveError struct {
	ConfigID string
	Mult     float64
	Err      error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("%s at mult=%v: %v", e.ConfigID, e.Mult, e.Err)
}

func (e *SolveError) Unwrap() error {
	return e.Err
}
