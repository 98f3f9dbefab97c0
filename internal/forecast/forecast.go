// Package forecast defines the data structures related to a capacity forecast
// and includes the month-by-month projection engine.
package forecast

import (
	"github.com/iwvelando/capacity-forecast/internal/model"
	"github.com/iwvelando/capacity-forecast/pkg/datetime"
	"github.com/iwvelando/capacity-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// OperationalMetrics describes how stretched and how fragile a team is.
type OperationalMetrics struct {
	VelocityIndex    float64         `json:"velocityIndex" yaml:"velocityIndex"`       // 0-100
	InterruptionRate float64         `json:"interruptionRate" yaml:"interruptionRate"` // 0-100
	Stability        model.Stability `json:"stability" yaml:"stability"`
}

// SimulationParams holds the remediation levers of a scenario.
type SimulationParams struct {
	RefusalWeeks float64 `json:"refusalWeeks" yaml:"refusalWeeks"` // 0-12
}

// CapacityPoint is one projected month.
type CapacityPoint struct {
	MonthIndex  int     `json:"monthIndex"`
	DateLabel   string  `json:"dateLabel"`
	Baseline    float64 `json:"baseline"`
	Remediated  float64 `json:"remediated"`
	IsSaturated bool    `json:"isSaturated"`
}

// Forecast holds the projected capacity series of one scenario.
type Forecast struct {
	Points          []CapacityPoint `json:"points"`
	SaturationIndex int             `json:"saturationIndex"`
	SaturationDate  *string         `json:"saturationDate"`
}

// Saturated reports whether the remediated curve ever crossed the threshold.
func (f Forecast) Saturated() bool {
	return f.SaturationIndex >= 0
}

// Last returns the final projected point.
func (f Forecast) Last() (CapacityPoint, bool) {
	if len(f.Points) == 0 {
		return CapacityPoint{}, false
	}
	return f.Points[len(f.Points)-1], true
}

// Engine projects capacity series using a fixed decay model.
type Engine struct {
	logger *zap.Logger
	model  model.Config
}

// NewEngine returns an Engine for the given model.
func NewEngine(logger *zap.Logger, m model.Config) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, model: m}
}

// Model returns the decay model used by the engine.
func (e *Engine) Model() model.Config {
	return e.model
}

// Project runs the compounding decay simulation for one scenario starting at
// start. It is total over its inputs: every numeric value is clamped into its
// domain before use and unknown stability profiles use the DEGRADED multiplier.
// A zero start means the current UTC month.
func (e *Engine) Project(metrics OperationalMetrics, params SimulationParams, start datetime.Month) Forecast {
	start = start.OrCurrent()
	if !metrics.Stability.Valid() {
		e.logger.Warn("unknown stability profile, falling back to DEGRADED",
			zap.String("op", "forecast.Project"),
			zap.String("stability", string(metrics.Stability)),
		)
	}

	m := e.model
	totalDecay := TotalDecay(m, metrics)
	refusalMonths := RefusalMonths(m, params)

	baselineCapacity := 1.0
	remediatedCapacity := 1.0
	result := Forecast{
		Points:          make([]CapacityPoint, 0, m.MonthsToProject),
		SaturationIndex: -1,
	}

	for monthIndex := 0; monthIndex < m.MonthsToProject; monthIndex++ {
		baselineCapacity *= 1 - totalDecay

		// The refusal runway shields the remediated curve entirely. The
		// boundary is compared against the fractional month count, so a
		// 6-week runway shields months 0 and 1.
		if float64(monthIndex) >= refusalMonths {
			remediatedCapacity *= 1 - totalDecay*m.RemediatedDecayMultiplier
		}

		baselineCapacity = mathutil.Clamp(baselineCapacity, 0, 1)
		remediatedCapacity = mathutil.Clamp(remediatedCapacity, 0, 1)

		label := datetime.MonthLabel(start, monthIndex)
		isSaturated := remediatedCapacity <= m.SaturationThreshold
		if isSaturated && result.SaturationIndex == -1 {
			result.SaturationIndex = monthIndex
			saturationDate := label
			result.SaturationDate = &saturationDate
		}

		result.Points = append(result.Points, CapacityPoint{
			MonthIndex:  monthIndex,
			DateLabel:   label,
			Baseline:    baselineCapacity,
			Remediated:  remediatedCapacity,
			IsSaturated: isSaturated,
		})
	}

	e.logger.Debug("projected capacity",
		zap.String("op", "forecast.Project"),
		zap.Float64("totalDecay", totalDecay),
		zap.Float64("refusalMonths", refusalMonths),
		zap.Int("saturationIndex", result.SaturationIndex),
	)

	return result
}

var defaultEngine = NewEngine(nil, model.Default())

// Project runs the projection with the default decay model.
func Project(metrics OperationalMetrics, params SimulationParams, start datetime.Month) Forecast {
	return defaultEngine.Project(metrics, params, start)
}
