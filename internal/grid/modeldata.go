// ABOUTME: JSON-backed grid model data with clone and element queries
// ABOUTME: Mirrors the elements/system document layout exchanged with the solver bridge

package grid

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Element kinds used by the harness
const (
	KindBus       = "bus"
	KindLoad      = "load"
	KindGenerator = "generator"
	KindBranch    = "branch"
)

// Element is a single grid element record, e.g. a load with p_load and q_load
type Element map[string]any

// Float returns the numeric attribute key
func (e Element) Float(key string) (float64, bool) {
	switch v := e[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Set assigns attribute key
func (e Element) Set(key string, value any) {
	e[key] = value
}

// ModelData is one power network state: elements grouped by kind and id,
// plus the system metadata block. Unknown top-level keys are kept verbatim.
type ModelData struct {
	elements map[string]map[string]Element
	system   map[string]any
	extra    map[string]json.RawMessage
}

// New returns empty model data
func New() *ModelData {
	return &ModelData{
		elements: make(map[string]map[string]Element),
		system:   make(map[string]any),
		extra:    make(map[string]json.RawMessage),
	}
}

// Decode builds model data from a JSON document
func Decode(data []byte) (*ModelData, error) {
	md := New()
	if err := json.Unmarshal(data, md); err != nil {
		return nil, err
	}
	return md, nil
}

// ReadFile decodes model data from a JSON file
func ReadFile(path string) (*ModelData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	md, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return md, nil
}

// WriteFile writes the model data as JSON, appending .json when missing
func (md *ModelData) WriteFile(path string) (string, error) {
	if !strings.HasSuffix(path, ".json") {
		path += ".json"
	}
	data, err := json.Marshal(md)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// MarshalJSON implements json.Marshaler
func (md *ModelData) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(md.extra)+2)
	for k, v := range md.extra {
		doc[k] = v
	}
	doc["elements"] = md.elements
	doc["system"] = md.system
	return json.Marshal(doc)
}

// UnmarshalJSON implements json.Unmarshaler
func (md *ModelData) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	elements := make(map[string]map[string]Element)
	if raw, ok := doc["elements"]; ok {
		if err := json.Unmarshal(raw, &elements); err != nil {
			return fmt.Errorf("elements: %w", err)
		}
	}
	system := make(map[string]any)
	if raw, ok := doc["system"]; ok {
		if err := json.Unmarshal(raw, &system); err != nil {
			return fmt.Errorf("system: %w", err)
		}
	}
	delete(doc, "elements")
	delete(doc, "system")

	for kind, byID := range elements {
		if byID == nil {
			elements[kind] = make(map[string]Element)
		}
	}
	if system == nil {
		system = make(map[string]any)
	}

	md.elements = elements
	md.system = system
	md.extra = doc
	return nil
}

// Clone returns an independent deep copy
func (md *ModelData) Clone() *ModelData {
	return md.clone(false)
}

// CloneInService returns a deep copy keeping only elements that are in service
func (md *ModelData) CloneInService() *ModelData {
	return md.clone(true)
}

func (md *ModelData) clone(inServiceOnly bool) *ModelData {
	out := New()
	for kind, byID := range md.elements {
		copied := make(map[string]Element, len(byID))
		for id, el := range byID {
			if inServiceOnly && !inService(el) {
				continue
			}
			copied[id] = Element(copyMap(el))
		}
		out.elements[kind] = copied
	}
	out.system = copyMap(md.system)
	for k, v := range md.extra {
		out.extra[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func inService(el Element) bool {
	v, ok := el["in_service"].(bool)
	return !ok || v
}

// Elements returns the live elements of the given kind keyed by id.
// Mutating a returned element mutates this model data.
func (md *ModelData) Elements(kind string) map[string]Element {
	byID, ok := md.elements[kind]
	if !ok {
		byID = make(map[string]Element)
		md.elements[kind] = byID
	}
	return byID
}

// Count returns the number of elements of the given kind
func (md *ModelData) Count(kind string) int {
	return len(md.elements[kind])
}

// Kinds returns the element kinds present
func (md *ModelData) Kinds() []string {
	kinds := make([]string, 0, len(md.elements))
	for k := range md.elements {
		kinds = append(kinds, k)
	}
	return kinds
}

// System returns the live system metadata block
func (md *ModelData) System() map[string]any {
	return md.system
}

// SetSystem assigns a system metadata key
func (md *ModelData) SetSystem(key string, value any) {
	md.system[key] = value
}

// SystemFloat returns a numeric system metadata value
func (md *ModelData) SystemFloat(key string) (float64, bool) {
	return Element(md.system).Float(key)
}

// SystemString returns a string system metadata value
func (md *ModelData) SystemString(key string) string {
	s, _ := md.system[key].(string)
	return s
}

// ModelName returns system.model_name, the case the data was parsed from
func (md *ModelData) ModelName() string {
	return md.SystemString("model_name")
}

// Section returns a top-level block other than elements and system, such as
// the results block written by the solver bridge
func (md *ModelData) Section(name string) (map[string]any, error) {
	raw, ok := md.extra[name]
	if !ok {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("section %s: %w", name, err)
	}
	return out, nil
}

// SetSection replaces a top-level block other than elements and system
func (md *ModelData) SetSection(name string, value any) error {
	if name == "elements" || name == "system" {
		return fmt.Errorf("section %s is reserved", name)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	md.extra[name] = raw
	return nil
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case Element:
		return Element(copyMap(t))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	case []float64:
		return append([]float64(nil), t...)
	default:
		return v
	}
}
