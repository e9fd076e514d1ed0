// ABOUTME: Uniform demand scaling of every load in a grid snapshot
// ABOUTME: Always works on an in-service clone so the base snapshot stays untouched

package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonNumericLoad is returned when a load's p_load or q_load is not a scalar
var ErrNonNumericLoad = errors.New("load value is not numeric")

// ScaleLoads returns an in-service clone of base whose loads are multiplied by mult
func ScaleLoads(base *ModelData, mult float64) (*ModelData, error) {
	md := base.CloneInService()

	for id, load := range md.Elements(KindLoad) {
		for _, key := range []string{"p_load", "q_load"} {
			if _, present := load[key]; !present {
				continue
			}
			v, ok := load.Float(key)
			if !ok {
				return nil, fmt.Errorf("load %s %s: %w", id, key, ErrNonNumericLoad)
			}
			load.Set(key, v*mult)
		}
	}

	return md, nil
}

// RoundMultiplier rounds a demand multiplier to four decimal places
func RoundMultiplier(m float64) float64 {
	return math.Round(m*1e4) / 1e4
}
