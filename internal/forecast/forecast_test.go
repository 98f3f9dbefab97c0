package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/iwvelando/capacity-forecast/internal/model"
	"github.com/iwvelando/capacity-forecast/pkg/constants"
	"github.com/iwvelando/capacity-forecast/pkg/datetime"
	"go.uber.org/zap"
)

var january2024 = datetime.Month{Year: 2024, Month: time.January}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return NewEngine(logger, model.Default())
}

func assertClose(t *testing.T, what string, got, expected float64) {
	t.Helper()
	if math.Abs(got-expected) > constants.CapacityTolerance {
		t.Errorf("%s = %.6f, expected %.4f", what, got, expected)
	}
}

func TestProjectReferenceScenario(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Project(
		OperationalMetrics{VelocityIndex: 40, InterruptionRate: 35, Stability: model.Degraded},
		SimulationParams{RefusalWeeks: 4},
		january2024,
	)

	if len(result.Points) != 24 {
		t.Fatalf("expected 24 points, got %d", len(result.Points))
	}

	expected := []struct {
		baseline   float64
		remediated float64
	}{
		{0.9425, 1.0},
		{0.8883, 0.9598},
		{0.8372, 0.9211},
	}
	for i, e := range expected {
		assertClose(t, "baseline["+result.Points[i].DateLabel+"]", result.Points[i].Baseline, e.baseline)
		assertClose(t, "remediated["+result.Points[i].DateLabel+"]", result.Points[i].Remediated, e.remediated)
	}

	if result.Points[0].DateLabel != "Jan 2024" || result.Points[23].DateLabel != "Dec 2025" {
		t.Errorf("unexpected labels: first %s, last %s", result.Points[0].DateLabel, result.Points[23].DateLabel)
	}
	for i, p := range result.Points {
		if p.MonthIndex != i {
			t.Errorf("point %d has MonthIndex %d", i, p.MonthIndex)
		}
	}
}

func TestProjectSaturationFirstCrossing(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Project(
		OperationalMetrics{VelocityIndex: 100, InterruptionRate: 100, Stability: model.Unstable},
		SimulationParams{RefusalWeeks: 0},
		january2024,
	)

	if result.SaturationIndex != 9 {
		t.Fatalf("SaturationIndex = %d, expected 9", result.SaturationIndex)
	}
	if result.SaturationDate == nil || *result.SaturationDate != "Oct 2024" {
		t.Fatalf("SaturationDate = %v, expected Oct 2024", result.SaturationDate)
	}
	if result.Points[8].IsSaturated {
		t.Error("point 8 should not be saturated")
	}
	if !result.Points[9].IsSaturated {
		t.Error("point 9 should be saturated")
	}
	for i := 0; i < result.SaturationIndex; i++ {
		if result.Points[i].IsSaturated {
			t.Errorf("point %d saturated before first crossing", i)
		}
		if result.Points[i].Remediated <= model.Default().SaturationThreshold {
			t.Errorf("point %d at or below threshold before first crossing", i)
		}
	}
	for i := result.SaturationIndex; i < len(result.Points); i++ {
		if !result.Points[i].IsSaturated {
			t.Errorf("point %d recovered from saturation", i)
		}
	}
	if !result.Saturated() {
		t.Error("Saturated() should be true")
	}
}

func TestProjectNoSaturation(t *testing.T) {
	result := Project(
		OperationalMetrics{VelocityIndex: 0, InterruptionRate: 0, Stability: model.Resilient},
		SimulationParams{RefusalWeeks: 12},
		january2024,
	)

	if result.SaturationIndex != -1 {
		t.Errorf("SaturationIndex = %d, expected -1", result.SaturationIndex)
	}
	if result.SaturationDate != nil {
		t.Errorf("SaturationDate = %q, expected nil", *result.SaturationDate)
	}
	if result.Saturated() {
		t.Error("Saturated() should be false")
	}
	for _, p := range result.Points {
		if p.IsSaturated {
			t.Errorf("point %d unexpectedly saturated", p.MonthIndex)
		}
	}
}

func TestProjectMonotonicAndBounded(t *testing.T) {
	engine := newTestEngine(t)

	var inputs []OperationalMetrics
	for _, v := range []float64{-20, 0, 35, 70, 100, 180} {
		for _, s := range append(model.Stabilities, model.Stability("UNKNOWN")) {
			inputs = append(inputs, OperationalMetrics{VelocityIndex: v, InterruptionRate: 100 - v, Stability: s})
		}
	}

	for _, metrics := range inputs {
		for _, weeks := range []float64{-3, 0, 1, 4, 6, 12, 40} {
			result := engine.Project(metrics, SimulationParams{RefusalWeeks: weeks}, january2024)
			prev := CapacityPoint{Baseline: 1, Remediated: 1}
			for _, p := range result.Points {
				if p.Baseline > prev.Baseline || p.Remediated > prev.Remediated {
					t.Fatalf("%+v weeks=%v: capacity increased at month %d", metrics, weeks, p.MonthIndex)
				}
				if p.Baseline < 0 || p.Baseline > 1 || p.Remediated < 0 || p.Remediated > 1 {
					t.Fatalf("%+v weeks=%v: capacity out of [0,1] at month %d", metrics, weeks, p.MonthIndex)
				}
				prev = p
			}
		}
	}
}

func TestProjectRemediationDominance(t *testing.T) {
	engine := newTestEngine(t)
	metrics := OperationalMetrics{VelocityIndex: 80, InterruptionRate: 60, Stability: model.Unstable}

	for _, weeks := range []float64{0, 1, 2, 4, 6, 8, 12} {
		result := engine.Project(metrics, SimulationParams{RefusalWeeks: weeks}, january2024)
		for _, p := range result.Points {
			if p.Remediated < p.Baseline {
				t.Errorf("weeks=%v month %d: remediated %.4f below baseline %.4f", weeks, p.MonthIndex, p.Remediated, p.Baseline)
			}
		}
	}
}

func TestProjectRefusalRunwayBoundary(t *testing.T) {
	engine := newTestEngine(t)
	metrics := OperationalMetrics{VelocityIndex: 50, InterruptionRate: 50, Stability: model.Degraded}

	tests := []struct {
		name     string
		weeks    float64
		shielded int
	}{
		{"No runway", 0, 0},
		{"One week shields month 0", 1, 1},
		{"Four weeks shields month 0", 4, 1},
		{"Six weeks shields months 0 and 1", 6, 2},
		{"Eight weeks", 8, 2},
		{"Twelve weeks", 12, 3},
		{"Clamped to twelve weeks", 20, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Project(metrics, SimulationParams{RefusalWeeks: tt.weeks}, january2024)
			for i := 0; i < tt.shielded; i++ {
				if result.Points[i].Remediated != 1.0 {
					t.Errorf("month %d should be shielded, got %.4f", i, result.Points[i].Remediated)
				}
			}
			if result.Points[tt.shielded].Remediated >= 1.0 {
				t.Errorf("month %d should decay after the runway", tt.shielded)
			}
		})
	}
}

func TestProjectDeterministic(t *testing.T) {
	engine := newTestEngine(t)
	metrics := OperationalMetrics{VelocityIndex: 63, InterruptionRate: 27, Stability: model.Resilient}
	params := SimulationParams{RefusalWeeks: 6}

	first := engine.Project(metrics, params, january2024)
	second := engine.Project(metrics, params, january2024)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated projections differ (-first +second):\n%s", diff)
	}
}

func TestProjectZeroStartUsesCurrentMonth(t *testing.T) {
	engine := newTestEngine(t)
	metrics := OperationalMetrics{VelocityIndex: 40, InterruptionRate: 35, Stability: model.Degraded}

	before := datetime.CurrentMonth()
	result := engine.Project(metrics, SimulationParams{}, datetime.Month{})
	after := datetime.CurrentMonth()

	first := result.Points[0].DateLabel
	if first != before.Label() && first != after.Label() {
		t.Fatalf("first label = %s, expected %s", first, after.Label())
	}
	if last := result.Points[len(result.Points)-1].DateLabel; last != after.AddMonths(len(result.Points)-1).Label() &&
		last != before.AddMonths(len(result.Points)-1).Label() {
		t.Errorf("last label = %s, expected 23 months after %s", last, first)
	}
	for _, point := range result.Points {
		if point.DateLabel == "" || point.DateLabel[0] == ' ' {
			t.Fatalf("malformed label %q", point.DateLabel)
		}
	}
}

func TestProjectIndependentOfLocalZone(t *testing.T) {
	original := time.Local
	t.Cleanup(func() { time.Local = original })

	engine := newTestEngine(t)
	metrics := OperationalMetrics{VelocityIndex: 40, InterruptionRate: 35, Stability: model.Degraded}
	params := SimulationParams{RefusalWeeks: 4}
	start := datetime.MonthOf(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))

	time.Local = time.UTC
	reference := engine.Project(metrics, params, start)

	for _, offset := range []int{-11, -5, 5, 9, 14} {
		time.Local = time.FixedZone("test", offset*60*60)
		result := engine.Project(metrics, params, start)
		if diff := cmp.Diff(reference, result); diff != "" {
			t.Fatalf("projection differs at UTC%+d (-want +got):\n%s", offset, diff)
		}
	}
}

func TestNormalizeToDecay(t *testing.T) {
	m := model.Default()

	tests := []struct {
		name     string
		raw      float64
		expected float64
	}{
		{"Zero", 0, 0},
		{"Mid scale", 50, 0.025},
		{"Full scale", 100, 0.05},
		{"Below range", -10, 0},
		{"Above range", 250, 0.05},
		{"NaN", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeToDecay(m, tt.raw)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("NormalizeToDecay(%v) = %v, expected %v", tt.raw, got, tt.expected)
			}
			if got < 0 || got > m.MaxImpact {
				t.Errorf("NormalizeToDecay(%v) = %v outside [0, %v]", tt.raw, got, m.MaxImpact)
			}
		})
	}
}

func TestTotalDecay(t *testing.T) {
	m := model.Default()

	got := TotalDecay(m, OperationalMetrics{VelocityIndex: 100, InterruptionRate: 100, Stability: model.Unstable})
	assertClose(t, "TotalDecay(max)", got, 0.144)

	got = TotalDecay(m, OperationalMetrics{VelocityIndex: 0, InterruptionRate: 0, Stability: model.Resilient})
	assertClose(t, "TotalDecay(min)", got, 0.017)
}

func TestForecastLast(t *testing.T) {
	if _, ok := (Forecast{}).Last(); ok {
		t.Error("expected no last point for empty forecast")
	}

	result := Project(OperationalMetrics{Stability: model.Degraded}, SimulationParams{}, january2024)
	last, ok := result.Last()
	if !ok || last.MonthIndex != 23 {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}
