// ABOUTME: Catalog of the named model configurations benchmarked against the AC OPF
// ABOUTME: Each entry binds a formulation variant, a solver role, options and a base snapshot

package approx

import (
	"github.com/markalston/opfbench/internal/solver"
)

// Reference is the configuration every other one is compared against
const Reference = "acopf"

// Source selects the base snapshot a configuration scales from
type Source int

const (
	// SourceFlat is the case as parsed
	SourceFlat Source = iota
	// SourceBasepoint is the solved AC OPF base point carrying sensitivities
	SourceBasepoint
)

func (s Source) String() string {
	if s == SourceBasepoint {
		return "basepoint"
	}
	return "flat"
}

// Role names the kind of solver a configuration needs; concrete names come from Solvers
type Role int

const (
	RoleNLP Role = iota
	RoleLP
	RolePersistent
)

// Solvers maps roles to solver names understood by the bridge
type Solvers struct {
	NLP        string
	LP         string
	Persistent string
}

// DefaultSolvers are ipopt for the AC reference and gurobi for the linear models
var DefaultSolvers = Solvers{NLP: "ipopt", LP: "gurobi", Persistent: "gurobi_persistent"}

// Name returns the solver configured for role
func (s Solvers) Name(r Role) string {
	switch r {
	case RoleLP:
		return s.LP
	case RolePersistent:
		return s.Persistent
	default:
		return s.NLP
	}
}

// Config is one benchmarked model configuration
type Config struct {
	ID          string
	Formulation solver.Formulation
	Role        Role
	Options     map[string]any
	Source      Source
}

// Request builds the bridge request for this configuration
func (c Config) Request(s Solvers) solver.Request {
	var opts map[string]any
	if len(c.Options) > 0 {
		opts = make(map[string]any, len(c.Options))
		for k, v := range c.Options {
			opts[k] = v
		}
	}
	return solver.Request{
		Formulation: c.Formulation,
		Solver:      s.Name(c.Role),
		Options:     opts,
	}
}

// tolerance tiers for the truncated sensitivity variants
type tier struct {
	suffix string
	ptdf   float64
	qtdf   float64
	vdf    float64
}

var tiers = []tier{
	{"e4", 1e-4, 5e-4, 10e-4},
	{"e3", 1e-3, 5e-3, 10e-3},
	{"e2", 1e-2, 5e-2, 10e-2},
}

var catalog = buildCatalog()

func buildCatalog() []Config {
	persistentOpts := func() map[string]any { return map[string]any{"method": 1} }
	no := false
	yes := true

	cfgs := []Config{
		{ID: "acopf", Formulation: solver.ACOPF{}, Role: RoleNLP, Source: SourceFlat},
		{ID: "slopf", Formulation: solver.LCCM{}, Role: RoleLP, Source: SourceBasepoint},
	}

	// full and simplified distribution factor models share one option pattern
	for _, fam := range []struct {
		prefix string
		build  func(solver.PTDFOptions) solver.Formulation
	}{
		{"dlopf", func(o solver.PTDFOptions) solver.Formulation { return solver.FDF{PTDF: o} }},
		{"clopf", func(o solver.PTDFOptions) solver.Formulation { return solver.FDFSimplified{PTDF: o} }},
	} {
		cfgs = append(cfgs,
			Config{ID: fam.prefix + "_default", Formulation: fam.build(solver.PTDFOptions{LazyVoltage: &no}),
				Role: RoleLP, Source: SourceBasepoint},
			Config{ID: fam.prefix + "_lazy", Formulation: fam.build(solver.PTDFOptions{Lazy: true, LazyVoltage: &yes}),
				Role: RolePersistent, Options: persistentOpts(), Source: SourceBasepoint},
		)
		for _, t := range tiers {
			cfgs = append(cfgs, Config{
				ID: fam.prefix + "_" + t.suffix,
				Formulation: fam.build(solver.PTDFOptions{
					Lazy: true, LazyVoltage: &yes,
					AbsPTDFTol: t.ptdf, AbsQTDFTol: t.qtdf, RelVDFTol: t.vdf,
				}),
				Role: RolePersistent, Options: persistentOpts(), Source: SourceBasepoint,
			})
		}
	}

	// PTDF-based DC models only carry the active power tolerance
	ptdfVariants := func(prefix string, source Source, build func(*solver.PTDFOptions) solver.Formulation) []Config {
		out := []Config{
			{ID: prefix + "_default", Formulation: build(&solver.PTDFOptions{}), Role: RoleLP, Source: source},
			{ID: prefix + "_lazy", Formulation: build(&solver.PTDFOptions{Lazy: true}),
				Role: RolePersistent, Options: persistentOpts(), Source: source},
		}
		for _, t := range tiers {
			out = append(out, Config{
				ID:          prefix + "_" + t.suffix,
				Formulation: build(&solver.PTDFOptions{Lazy: true, AbsPTDFTol: t.ptdf}),
				Role:        RolePersistent, Options: persistentOpts(), Source: source,
			})
		}
		return out
	}

	cfgs = append(cfgs, ptdfVariants("clopf_p", SourceBasepoint, func(o *solver.PTDFOptions) solver.Formulation {
		return solver.DCOPFLosses{Generator: solver.GeneratorPTDF, PTDF: o}
	})...)
	cfgs = append(cfgs, Config{ID: "qcopf_btheta",
		Formulation: solver.DCOPFLosses{Generator: solver.GeneratorBTheta}, Role: RoleLP, Source: SourceFlat})
	cfgs = append(cfgs, ptdfVariants("dcopf_ptdf", SourceFlat, func(o *solver.PTDFOptions) solver.Formulation {
		return solver.DCOPF{Generator: solver.GeneratorPTDF, PTDF: o}
	})...)
	cfgs = append(cfgs, Config{ID: "dcopf_btheta",
		Formulation: solver.DCOPF{Generator: solver.GeneratorBTheta}, Role: RoleLP, Source: SourceFlat})

	return cfgs
}

// Catalog returns every configuration in benchmark order
func Catalog() []Config {
	out := make([]Config, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the configuration with the given id
func Lookup(id string) (Config, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Config{}, false
}

// IDs returns every configuration id in benchmark order
func IDs() []string {
	ids := make([]string, len(catalog))
	for i, c := range catalog {
		ids[i] = c.ID
	}
	return ids
}
