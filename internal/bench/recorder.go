// ABOUTME: Writes solved snapshots as result artifacts named by case, model and multiplier
// ABOUTME: Sensitivity caches are stripped before writing

package bench

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/markalston/opfbench/internal/grid"
)

// ArtifactName returns the artifact base name, e.g. pglib_opf_case3_lmbd_acopf_0950
func ArtifactName(caseName, configID string, mult float64) string {
	return fmt.Sprintf("%s_%s_%04.0f", caseName, configID, mult*1000)
}

// Recorder writes artifacts for one case into Dir
type Recorder struct {
	Dir  string
	Case string
}

// NewRecorder creates dir when missing
func NewRecorder(dir, caseName string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create solution dir: %w", err)
	}
	return &Recorder{Dir: dir, Case: caseName}, nil
}

// Record writes a copy of md stamped with mult and its filename, returning the
// file name without extension. md is not modified.
func (r *Recorder) Record(configID string, mult float64, md *grid.ModelData) (string, error) {
	out := md.Clone()
	grid.StripSensitivities(out)

	caseName := out.ModelName()
	if caseName == "" {
		caseName = r.Case
	}
	name := ArtifactName(caseName, configID, mult)
	out.SetSystem("mult", mult)
	out.SetSystem("filename", name)

	if _, err := out.WriteFile(filepath.Join(r.Dir, name)); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	slog.Info("...out", "file", name)
	return name, nil
}
