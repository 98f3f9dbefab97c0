// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/capacity-forecast/pkg/constants"
	"github.com/iwvelando/capacity-forecast/pkg/datetime"
	"github.com/iwvelando/capacity-forecast/pkg/mathutil"
)

// Input bounds. Values outside these are clamped by the engine, so they only
// ever produce warnings.
const (
	MetricMin       = 0.0
	MetricMax       = 100.0
	RefusalWeeksMin = 0.0
	RefusalWeeksMax = 12.0
)

var knownStabilities = []string{"RESILIENT", "DEGRADED", "UNSTABLE"}

// ValidateRange returns a warning if value lies outside [min, max].
func ValidateRange(field string, value, min, max float64) string {
	if !mathutil.IsFinite(value) {
		if math.IsNaN(value) {
			return fmt.Sprintf("%s is not a number and will be treated as %g", field, min)
		}
		return fmt.Sprintf("%s is infinite and will be clamped to %g", field, mathutil.Clamp(value, min, max))
	}
	if value < min || value > max {
		return fmt.Sprintf("%s %g is outside [%g, %g] and will be clamped", field, value, min, max)
	}
	return ""
}

// ValidateStability returns a warning if stability is not a known profile.
// Matching is case insensitive.
func ValidateStability(field, stability string) string {
	upper := strings.ToUpper(strings.TrimSpace(stability))
	for _, known := range knownStabilities {
		if upper == known {
			return ""
		}
	}
	return fmt.Sprintf("%s %q is not one of %s and will be treated as DEGRADED",
		field, stability, strings.Join(knownStabilities, ", "))
}

// ValidateStartDate returns an error if the start date is set but malformed.
func ValidateStartDate(startDate string) error {
	if startDate == "" {
		return nil
	}
	if _, err := datetime.ParseMonth(startDate); err != nil {
		return fmt.Errorf("start date must use the %s layout: %w", constants.DateTimeLayout, err)
	}
	return nil
}

// ConfigValidator holds the values of a configuration that need checking.
type ConfigValidator struct {
	ViewMode  string
	StartDate string
	Scenarios []ScenarioConfig
}

// ScenarioConfig holds the checkable values of one scenario. Missing is set
// when the slot was not configured at all.
type ScenarioConfig struct {
	Slot             string
	Name             string
	Missing          bool
	VelocityIndex    float64
	InterruptionRate float64
	Stability        string
	RefusalWeeks     float64
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if err := ValidateViewMode(cv.ViewMode); err != nil {
		warnings = append(warnings, err.Error())
	}
	if err := ValidateStartDate(cv.StartDate); err != nil {
		warnings = append(warnings, err.Error())
	}

	compare := cv.ViewMode == constants.ViewModeCompare
	for _, s := range cv.Scenarios {
		label := fmt.Sprintf("Scenario %s", s.Slot)
		if s.Name != "" {
			label = fmt.Sprintf("Scenario %s '%s'", s.Slot, s.Name)
		}

		if s.Missing {
			if compare {
				warnings = append(warnings, fmt.Sprintf("%s is not configured but view mode is %s", label, constants.ViewModeCompare))
			}
			continue
		}

		checks := []string{
			ValidateRange(label+" velocityIndex", s.VelocityIndex, MetricMin, MetricMax),
			ValidateRange(label+" interruptionRate", s.InterruptionRate, MetricMin, MetricMax),
			ValidateRange(label+" refusalWeeks", s.RefusalWeeks, RefusalWeeksMin, RefusalWeeksMax),
			ValidateStability(label+" stability", s.Stability),
		}
		for _, w := range checks {
			if w != "" {
				warnings = append(warnings, w)
			}
		}
	}

	return warnings
}
