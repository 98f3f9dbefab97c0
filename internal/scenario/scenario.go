// Package scenario runs the projection engine for one or two independently
// configured scenarios and compares their outcomes.
package scenario

import (
	"errors"
	"fmt"

	"github.com/iwvelando/capacity-forecast/internal/forecast"
	"github.com/iwvelando/capacity-forecast/pkg/constants"
	"github.com/iwvelando/capacity-forecast/pkg/datetime"
)

// ErrEmptySeries is returned when a comparison is requested for a forecast
// with no points.
var ErrEmptySeries = errors.New("cannot compare empty capacity series")

// ViewMode selects between single-scenario and A/B comparison output.
type ViewMode string

// Supported view modes.
const (
	Single  ViewMode = constants.ViewModeSingle
	Compare ViewMode = constants.ViewModeCompare
)

// Valid reports whether v is a supported view mode.
func (v ViewMode) Valid() bool {
	return v == Single || v == Compare
}

// ScenarioInputs are the inputs of one scenario.
type ScenarioInputs struct {
	Name    string                      `json:"name,omitempty" yaml:"name,omitempty"`
	Metrics forecast.OperationalMetrics `json:"metrics" yaml:"metrics"`
	Params  forecast.SimulationParams   `json:"params" yaml:"params"`
}

// Inputs holds both scenario slots and the view mode that decides whether B
// is used at all.
type Inputs struct {
	ViewMode ViewMode       `json:"viewMode"`
	A        ScenarioInputs `json:"a"`
	B        ScenarioInputs `json:"b"`
}

// Delta is the signed horizon-end difference B minus A.
type Delta struct {
	Baseline   float64 `json:"baseline"`
	Remediated float64 `json:"remediated"`
}

// Comparison holds two independently projected forecasts and their delta.
type Comparison struct {
	A     forecast.Forecast `json:"a"`
	B     forecast.Forecast `json:"b"`
	Delta Delta             `json:"delta"`
}

// Outcome is the result of running Inputs: Comparison is only set in compare
// mode.
type Outcome struct {
	ViewMode   ViewMode          `json:"viewMode"`
	A          forecast.Forecast `json:"a"`
	Comparison *Comparison       `json:"comparison,omitempty"`
}

// Projector is the subset of the forecast engine used here.
type Projector interface {
	Project(metrics forecast.OperationalMetrics, params forecast.SimulationParams, start datetime.Month) forecast.Forecast
}

// CompareForecasts computes the horizon-end delta between two forecasts.
func CompareForecasts(a, b forecast.Forecast) (Comparison, error) {
	lastA, okA := a.Last()
	lastB, okB := b.Last()
	if !okA || !okB {
		return Comparison{}, ErrEmptySeries
	}
	return Comparison{
		A: a,
		B: b,
		Delta: Delta{
			Baseline:   lastB.Baseline - lastA.Baseline,
			Remediated: lastB.Remediated - lastA.Remediated,
		},
	}, nil
}

// CompareScenarios projects a and b independently and compares them.
func CompareScenarios(p Projector, a, b ScenarioInputs, start datetime.Month) (Comparison, error) {
	start = start.OrCurrent()
	forecastA := p.Project(a.Metrics, a.Params, start)
	forecastB := p.Project(b.Metrics, b.Params, start)
	return CompareForecasts(forecastA, forecastB)
}

// Run projects the inputs according to their view mode. An empty view mode is
// treated as single.
func Run(p Projector, in Inputs, start datetime.Month) (Outcome, error) {
	mode := in.ViewMode
	if mode == "" {
		mode = Single
	}

	switch mode {
	case Single:
		return Outcome{ViewMode: Single, A: p.Project(in.A.Metrics, in.A.Params, start)}, nil
	case Compare:
		comparison, err := CompareScenarios(p, in.A, in.B, start)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{ViewMode: Compare, A: comparison.A, Comparison: &comparison}, nil
	default:
		return Outcome{}, fmt.Errorf("unsupported view mode %q, expected %s or %s", in.ViewMode, Single, Compare)
	}
}
