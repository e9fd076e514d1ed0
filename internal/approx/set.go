// ABOUTME: Immutable enable flags over the configuration catalog
// ABOUTME: Derived sets are copies; a Set is never modified after construction

package approx

import (
	"fmt"
	"strings"
)

// Set holds an enable flag for every catalog configuration
type Set struct {
	enabled map[string]bool
}

// All returns a set with every configuration enabled
func All() Set {
	return fill(true)
}

// None returns a set with every configuration disabled
func None() Set {
	return fill(false)
}

func fill(v bool) Set {
	m := make(map[string]bool, len(catalog))
	for _, c := range catalog {
		m[c.ID] = v
	}
	return Set{enabled: m}
}

// Parse enables exactly the listed ids; an empty list enables everything
func Parse(ids []string) (Set, error) {
	if len(ids) == 0 {
		return All(), nil
	}
	for _, id := range ids {
		if _, ok := Lookup(id); !ok {
			return Set{}, fmt.Errorf("unknown model %q (known: %s)", id, strings.Join(IDs(), ", "))
		}
	}
	return None().With(ids...), nil
}

// Enabled reports whether id is enabled
func (s Set) Enabled(id string) bool {
	return s.enabled[id]
}

// With returns a copy with ids enabled
func (s Set) With(ids ...string) Set {
	return s.set(true, ids)
}

// Without returns a copy with ids disabled
func (s Set) Without(ids ...string) Set {
	return s.set(false, ids)
}

func (s Set) set(v bool, ids []string) Set {
	out := s.copy()
	for _, id := range ids {
		if _, ok := out.enabled[id]; ok {
			out.enabled[id] = v
		}
	}
	return out
}

// Only returns a copy restricted to ids that are also enabled here
func (s Set) Only(ids ...string) Set {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	out := s.copy()
	for id := range out.enabled {
		out.enabled[id] = out.enabled[id] && keep[id]
	}
	return out
}

// WithoutVariants disables lazy and tolerance variants, keeping one entry per family
func (s Set) WithoutVariants() Set {
	out := s.copy()
	for id := range out.enabled {
		if IsLazy(id) || IsTolerance(id) {
			out.enabled[id] = false
		}
	}
	return out
}

// WithLazy re-enables every lazy variant
func (s Set) WithLazy() Set {
	out := s.copy()
	for id := range out.enabled {
		if IsLazy(id) {
			out.enabled[id] = true
		}
	}
	return out
}

// IsLazy reports whether id names a lazy constraint variant
func IsLazy(id string) bool {
	return strings.Contains(id, "lazy")
}

// IsTolerance reports whether id names a truncated tolerance variant
func IsTolerance(id string) bool {
	return strings.Contains(id, "_e")
}

// EnabledIDs returns enabled ids in catalog order
func (s Set) EnabledIDs() []string {
	var ids []string
	for _, c := range catalog {
		if s.enabled[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// DisabledIDs returns disabled ids in catalog order
func (s Set) DisabledIDs() []string {
	var ids []string
	for _, c := range catalog {
		if !s.enabled[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Configs returns the enabled configurations in catalog order
func (s Set) Configs() []Config {
	var out []Config
	for _, c := range catalog {
		if s.enabled[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// Empty reports whether nothing is enabled
func (s Set) Empty() bool {
	for _, v := range s.enabled {
		if v {
			return false
		}
	}
	return true
}

func (s Set) copy() Set {
	m := make(map[string]bool, len(catalog))
	for _, c := range catalog {
		m[c.ID] = s.enabled[c.ID]
	}
	return Set{enabled: m}
}
