// Package format provides human-readable formatting for capacity values.
package format

import (
	"math"

	"github.com/iwvelando/capacity-forecast/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders capacity values using the number conventions of one
// locale, e.g. "94.25%" in English and "94,25%" in German.
type Formatter struct {
	p *message.Printer
}

// New returns a Formatter for tag.
func New(tag language.Tag) Formatter {
	return Formatter{p: message.NewPrinter(tag)}
}

// Printer returns the locale-aware printer backing f.
func (f Formatter) Printer() *message.Printer {
	return f.p
}

// Percent returns a 0-1 ratio as a percentage with two decimals.
func (f Formatter) Percent(ratio float64) string {
	return f.p.Sprintf("%.2f%%", mathutil.ToPercent(ratio))
}

// PercentagePoints returns a signed ratio difference in percentage points
// (e.g. "+3.10 pp", "-21.83 pp"). Differences that round to zero are shown
// without a sign.
func (f Formatter) PercentagePoints(delta float64) string {
	points := mathutil.Round(mathutil.ToPercent(delta), 2)
	if points == 0 || math.IsNaN(points) {
		return f.p.Sprintf("%.2f pp", 0.0)
	}
	sign := "+"
	if points < 0 {
		sign = "-"
	}
	return sign + f.p.Sprintf("%.2f pp", math.Abs(points))
}
