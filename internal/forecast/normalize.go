package forecast

import (
	"github.com/iwvelando/capacity-forecast/internal/model"
	"github.com/iwvelando/capacity-forecast/pkg/mathutil"
)

// NormalizeToDecay scales a raw 0-100 indicator into a monthly decay
// contribution in [0, m.MaxImpact]. Out-of-range input is clamped.
func NormalizeToDecay(m model.Config, rawValue float64) float64 {
	return mathutil.Clamp(rawValue, 0, m.MetricScaleMax) / m.MetricScaleMax * m.MaxImpact
}

// TotalDecay returns the monthly baseline decay rate for metrics.
func TotalDecay(m model.Config, metrics OperationalMetrics) float64 {
	velocityImpact := NormalizeToDecay(m, metrics.VelocityIndex)
	interruptImpact := NormalizeToDecay(m, metrics.InterruptionRate)
	return (m.BaseDecay + velocityImpact + interruptImpact) * m.StabilityMultiplier(metrics.Stability)
}

// RefusalMonths converts the refusal runway into (possibly fractional) months.
func RefusalMonths(m model.Config, params SimulationParams) float64 {
	return mathutil.Clamp(params.RefusalWeeks, 0, m.MaxRefusalWeeks) / m.RefusalWeeksPerMonth
}
