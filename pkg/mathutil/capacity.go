// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/capacity-forecast/pkg/constants"
)

// Clamp bounds val to [min, max]. NaN is mapped to min so that stale or
// uninitialized inputs never propagate into a projection.
func Clamp(val, min, max float64) float64 {
	if math.IsNaN(val) || val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Round rounds a value to the given number of decimals.
func Round(val float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(val*p) / p
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// ToPercent converts a 0-1 ratio to a percentage.
func ToPercent(ratio float64) float64 {
	return ratio * constants.PercentageMultiplier
}
