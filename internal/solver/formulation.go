// ABOUTME: Formulation families the solver bridge can build and solve
// ABOUTME: One variant type per family carries only the parameters that family accepts

package solver

// Family names a formulation family understood by the bridge
type Family string

const (
	FamilyACOPF         Family = "acopf"
	FamilyLCCM          Family = "lccm"
	FamilyFDF           Family = "fdf"
	FamilyFDFSimplified Family = "fdf_simplified"
	FamilyDCOPFLosses   Family = "dcopf_losses"
	FamilyDCOPF         Family = "dcopf"
)

// Model generators select a variant within a family
const (
	GeneratorPSV    = "psv"
	GeneratorPTDF   = "ptdf"
	GeneratorBTheta = "btheta"
)

// PTDFOptions tune sensitivity-based linearizations. Zero tolerances are
// omitted so the bridge applies its own defaults.
type PTDFOptions struct {
	Lazy        bool    `json:"lazy"`
	LazyVoltage *bool   `json:"lazy_voltage,omitempty"`
	AbsPTDFTol  float64 `json:"abs_ptdf_tol,omitempty"`
	AbsQTDFTol  float64 `json:"abs_qtdf_tol,omitempty"`
	RelVDFTol   float64 `json:"rel_vdf_tol,omitempty"`
}

// Formulation is implemented by ACOPF, LCCM, FDF, FDFSimplified, DCOPFLosses and DCOPF
type Formulation interface {
	Family() Family
	params() formulationParams
}

type formulationParams struct {
	generator string
	ptdf      *PTDFOptions
}

// ACOPF is the reference nonlinear AC formulation
type ACOPF struct {
	Generator string
}

func (ACOPF) Family() Family { return FamilyACOPF }

func (f ACOPF) params() formulationParams {
	return formulationParams{generator: f.Generator}
}

// LCCM is the linear convex combination model (slopf)
type LCCM struct{}

func (LCCM) Family() Family { return FamilyLCCM }

func (LCCM) params() formulationParams { return formulationParams{} }

// FDF is the full distribution factor model (dlopf)
type FDF struct {
	PTDF PTDFOptions
}

func (FDF) Family() Family { return FamilyFDF }

func (f FDF) params() formulationParams {
	opts := f.PTDF
	return formulationParams{ptdf: &opts}
}

// FDFSimplified is the simplified distribution factor model (clopf)
type FDFSimplified struct {
	PTDF PTDFOptions
}

func (FDFSimplified) Family() Family { return FamilyFDFSimplified }

func (f FDFSimplified) params() formulationParams {
	opts := f.PTDF
	return formulationParams{ptdf: &opts}
}

// DCOPFLosses is the DC approximation with losses (clopf_p, qcopf_btheta)
type DCOPFLosses struct {
	Generator string
	PTDF      *PTDFOptions
}

func (DCOPFLosses) Family() Family { return FamilyDCOPFLosses }

func (f DCOPFLosses) params() formulationParams {
	return formulationParams{generator: f.Generator, ptdf: f.PTDF}
}

// DCOPF is the lossless DC approximation (dcopf_ptdf, dcopf_btheta)
type DCOPF struct {
	Generator string
	PTDF      *PTDFOptions
}

func (DCOPF) Family() Family { return FamilyDCOPF }

func (f DCOPF) params() formulationParams {
	return formulationParams{generator: f.Generator, ptdf: f.PTDF}
}

// Describe returns a short human label such as "fdf(lazy)"
func Describe(f Formulation) string {
	p := f.params()
	label := string(f.Family())
	if p.generator != "" {
		label += "/" + p.generator
	}
	if p.ptdf != nil && p.ptdf.Lazy {
		label += "(lazy)"
	}
	return label
}
