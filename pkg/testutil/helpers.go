// Package testutil provides common utility functions for testing.
package testutil

import (
	"time"

	"github.com/iwvelando/capacity-forecast/internal/forecast"
	"github.com/iwvelando/capacity-forecast/internal/model"
	"github.com/iwvelando/capacity-forecast/internal/scenario"
	"github.com/iwvelando/capacity-forecast/pkg/datetime"
)

// ReferenceStart is the start month used by the reference scenarios.
var ReferenceStart = datetime.Month{Year: 2024, Month: time.January}

// ModerateScenario is a moderately loaded team with a four-week refusal
// runway. It never saturates within the horizon.
func ModerateScenario() scenario.ScenarioInputs {
	return scenario.ScenarioInputs{
		Name:    "moderate",
		Metrics: forecast.OperationalMetrics{VelocityIndex: 40, InterruptionRate: 35, Stability: model.Degraded},
		Params:  forecast.SimulationParams{RefusalWeeks: 4},
	}
}

// SevereScenario is a fully loaded, unstable team with no runway. It
// saturates at month index 9 (Oct 2024 from ReferenceStart).
func SevereScenario() scenario.ScenarioInputs {
	return scenario.ScenarioInputs{
		Name:    "severe",
		Metrics: forecast.OperationalMetrics{VelocityIndex: 100, InterruptionRate: 100, Stability: model.Unstable},
		Params:  forecast.SimulationParams{RefusalWeeks: 0},
	}
}

// FindScenario finds a scenario by name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindScenario(results []scenario.NamedForecast, name string) *scenario.NamedForecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}
