// ABOUTME: Per-sweep run manifest listing every configuration outcome
// ABOUTME: Written next to the artifacts as run_<case>.json for diagnosis

package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ManifestEntry is one outcome as stored in the manifest
type ManifestEntry struct {
	ConfigID string  `json:"config_id"`
	Mult     float64 `json:"mult"`
	File     string  `json:"file,omitempty"`
	Error    string  `json:"error,omitempty"`
	Seconds  float64 `json:"seconds"`
}

// Manifest describes one sweep of one case
type Manifest struct {
	RunID    string          `json:"run_id"`
	Case     string          `json:"case"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
	Min      SearchResult    `json:"min"`
	Max      SearchResult    `json:"max"`
	Steps    int             `json:"steps"`
	Models   []string        `json:"models"`
	Outcomes []ManifestEntry `json:"outcomes"`
}

// NewManifest starts a manifest with a fresh run id
func NewManifest(caseName string) *Manifest {
	return &Manifest{
		RunID:   uuid.NewString(),
		Case:    caseName,
		Started: time.Now().UTC(),
	}
}

// Add appends outcomes
func (m *Manifest) Add(outcomes ...Outcome) {
	for _, o := range outcomes {
		e := ManifestEntry{
			ConfigID: o.ConfigID,
			Mult:     o.Mult,
			File:     o.File,
			Seconds:  o.Elapsed.Seconds(),
		}
		if o.Err != nil {
			e.Error = o.Err.Error()
		}
		m.Outcomes = append(m.Outcomes, e)
	}
}

// Failures counts failed outcomes
func (m *Manifest) Failures() int {
	n := 0
	for _, e := range m.Outcomes {
		if e.Error != "" {
			n++
		}
	}
	return n
}

// ManifestPath returns the manifest location for a case
func ManifestPath(dir, caseName string) string {
	return filepath.Join(dir, "run_"+caseName+".json")
}

// Write stores the manifest in dir and returns its path
func (m *Manifest) Write(dir string) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	path := ManifestPath(dir, m.Case)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by Write
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}
