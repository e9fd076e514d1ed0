// ABOUTME: Names of sensitivity factor caches the solver bridge stores in model data
// ABOUTME: Caches are large derived data and are stripped before artifacts are written

package grid

// Sensitivity kinds the bridge can precompute
const (
	SensitivityPTDF          = "ptdf"
	SensitivityFDF           = "fdf"
	SensitivityFDFSimplified = "fdf_simplified"
)

// SensitivityKeys are the system keys and element attributes holding
// precomputed distribution factors
var SensitivityKeys = []string{
	"ptdf", "ptdf_c",
	"qtdf", "qtdf_c",
	"pldf", "pldf_c",
	"qldf", "qldf_c",
	"vdf", "vdf_c",
	"Ft", "ft_c",
	"Fv", "fv_c",
	"Lt", "lt_c",
	"Lv", "lv_c",
}

// StripSensitivities removes sensitivity caches from md in place
func StripSensitivities(md *ModelData) {
	for _, key := range SensitivityKeys {
		delete(md.system, key)
	}
	for _, byID := range md.elements {
		for _, el := range byID {
			for _, key := range SensitivityKeys {
				delete(el, key)
			}
		}
	}
}

// HasSensitivities reports whether md carries any sensitivity cache
func HasSensitivities(md *ModelData) bool {
	for _, key := range SensitivityKeys {
		if _, ok := md.system[key]; ok {
			return true
		}
	}
	for _, byID := range md.elements {
		for _, el := range byID {
			for _, key := range SensitivityKeys {
				if _, ok := el[key]; ok {
					return true
				}
			}
		}
	}
	return false
}
