// Package model holds the constants that govern the capacity decay model.
// Default returns a copy; retuning the model means changing the constants
// below.
package model

// Stability is the coarse categorical profile applied as a decay multiplier.
type Stability string

// Known stability profiles.
const (
	Resilient Stability = "RESILIENT"
	Degraded  Stability = "DEGRADED"
	Unstable  Stability = "UNSTABLE"
)

// Stabilities lists the known profiles in increasing order of severity.
var Stabilities = []Stability{Resilient, Degraded, Unstable}

// Valid reports whether s is one of the known stability profiles.
func (s Stability) Valid() bool {
	switch s {
	case Resilient, Degraded, Unstable:
		return true
	}
	return false
}

const (
	baseDecay                 = 0.02
	maxImpact                 = 0.05
	saturationThreshold       = 0.35
	monthsToProject           = 24
	remediatedDecayMultiplier = 0.7
	metricScaleMax            = 100.0
	refusalWeeksPerMonth      = 4.0
	maxRefusalWeeks           = 12.0

	resilientMultiplier = 0.85
	degradedMultiplier  = 1.0
	unstableMultiplier  = 1.2
)

// Config is a read-only snapshot of the decay model constants.
type Config struct {
	BaseDecay                 float64
	MaxImpact                 float64
	SaturationThreshold       float64
	MonthsToProject           int
	RemediatedDecayMultiplier float64
	MetricScaleMax            float64
	RefusalWeeksPerMonth      float64
	MaxRefusalWeeks           float64

	resilient float64
	degraded  float64
	unstable  float64
}

// Default returns the decay model.
func Default() Config {
	return Config{
		BaseDecay:                 baseDecay,
		MaxImpact:                 maxImpact,
		SaturationThreshold:       saturationThreshold,
		MonthsToProject:           monthsToProject,
		RemediatedDecayMultiplier: remediatedDecayMultiplier,
		MetricScaleMax:            metricScaleMax,
		RefusalWeeksPerMonth:      refusalWeeksPerMonth,
		MaxRefusalWeeks:           maxRefusalWeeks,
		resilient:                 resilientMultiplier,
		degraded:                  degradedMultiplier,
		unstable:                  unstableMultiplier,
	}
}

// StabilityMultiplier returns the decay multiplier for s. Unknown profiles
// fall back to the DEGRADED multiplier.
func (c Config) StabilityMultiplier(s Stability) float64 {
	switch s {
	case Resilient:
		return c.resilient
	case Unstable:
		return c.unstable
	default:
		return c.degraded
	}
}
