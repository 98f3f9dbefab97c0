// Package chart maps capacity series onto renderer-agnostic plot geometry:
// coordinates, polyline and area paths, tick sets, saturation markers and the
// style resources (gradients, clip path) each chart instance declares.
package chart

import (
	"strconv"
	"strings"

	"github.com/iwvelando/capacity-forecast/internal/forecast"
	"github.com/iwvelando/capacity-forecast/internal/model"
	"github.com/iwvelando/capacity-forecast/internal/scenario"
	"github.com/iwvelando/capacity-forecast/pkg/mathutil"
)

// Curve kinds.
const (
	KindBaseline   = "baseline"
	KindRemediated = "remediated"
)

// Margin is the space reserved around the plot area.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Canvas is the logical drawing surface.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
}

// InnerWidth returns the plot width inside the margins.
func (c Canvas) InnerWidth() float64 {
	return c.Width - c.Margin.Left - c.Margin.Right
}

// InnerHeight returns the plot height inside the margins.
func (c Canvas) InnerHeight() float64 {
	return c.Height - c.Margin.Top - c.Margin.Bottom
}

// DefaultCanvas is the canvas used unless WithCanvas is given.
var DefaultCanvas = Canvas{
	Width:  800,
	Height: 320,
	Margin: Margin{Top: 20, Right: 24, Bottom: 40, Left: 48},
}

// Series is one scenario's capacity series and saturation marker. A negative
// SaturationIndex means the index is unknown and SaturationDate is matched
// against the point labels instead.
type Series struct {
	Name            string
	Points          []forecast.CapacityPoint
	SaturationIndex int
	SaturationDate  *string
}

// SeriesOf adapts a forecast into a chart series.
func SeriesOf(name string, f forecast.Forecast) Series {
	return Series{
		Name:            name,
		Points:          f.Points,
		SaturationIndex: f.SaturationIndex,
		SaturationDate:  f.SaturationDate,
	}
}

// Tick is an axis tick at Position on its axis.
type Tick struct {
	Value    float64 `json:"value"`
	Position float64 `json:"position"`
	Label    string  `json:"label"`
}

// Curve is the line and area of one capacity series.
type Curve struct {
	Scenario string `json:"scenario"`
	Kind     string `json:"kind"`
	Line     string `json:"line"`
	Area     string `json:"area"`
	Stroke   string `json:"stroke"`
	Fill     string `json:"fill"`
	Dashed   bool   `json:"dashed"`
}

// Marker is a vertical saturation marker.
type Marker struct {
	Scenario   string  `json:"scenario"`
	MonthIndex int     `json:"monthIndex"`
	Label      string  `json:"label"`
	X          float64 `json:"x"`
	Y1         float64 `json:"y1"`
	Y2         float64 `json:"y2"`
}

// Geometry is the full description of one chart instance. Empty geometry has
// no axes, curves or resources and only carries Placeholder text.
type Geometry struct {
	Empty       bool                  `json:"empty"`
	Placeholder string                `json:"placeholder,omitempty"`
	Mode        scenario.ViewMode     `json:"mode"`
	Canvas      Canvas                `json:"canvas"`
	X           func(int) float64     `json:"-"`
	Y           func(float64) float64 `json:"-"`
	XTicks      []Tick                `json:"xTicks,omitempty"`
	YTicks      []Tick                `json:"yTicks,omitempty"`
	ThresholdY  float64               `json:"thresholdY,omitempty"`
	Curves      []Curve               `json:"curves,omitempty"`
	Markers     []Marker              `json:"markers,omitempty"`
	Resources   Resources             `json:"resources"`
}

// FillReferences returns the resource identifiers referenced by the curves'
// fills, in curve order.
func (g Geometry) FillReferences() []string {
	refs := make([]string, 0, len(g.Curves))
	for _, c := range g.Curves {
		if id, ok := referencedID(c.Fill); ok {
			refs = append(refs, id)
		}
	}
	return refs
}

// PlaceholderText is shown instead of a chart when there is no data.
const PlaceholderText = "No data"

var yTickValues = []float64{0, 0.25, 0.5, 0.75, 1}

const xTickStep = 3

type palette struct {
	baseline   string
	remediated string
}

var palettes = map[string]palette{
	"a": {baseline: "#d1495b", remediated: "#2a9d8f"},
	"b": {baseline: "#edae49", remediated: "#00798c"},
}

// Builder produces Geometry. A Builder holds no per-chart state: every Build
// call allocates a fresh seed, so one Builder may serve many charts at once.
type Builder struct {
	canvas    Canvas
	threshold float64
	newSeed   func() string
}

// Option configures a Builder.
type Option func(*Builder)

// WithCanvas overrides the logical canvas.
func WithCanvas(c Canvas) Option {
	return func(b *Builder) {
		b.canvas = c
	}
}

// WithSeedSource overrides how per-instance seeds are generated.
func WithSeedSource(fn func() string) Option {
	return func(b *Builder) {
		if fn != nil {
			b.newSeed = fn
		}
	}
}

// WithModel sets the saturation threshold line from m.
func WithModel(m model.Config) Option {
	return func(b *Builder) {
		b.threshold = m.SaturationThreshold
	}
}

// NewBuilder returns a Builder using DefaultCanvas and random seeds.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		canvas:    DefaultCanvas,
		threshold: model.Default().SaturationThreshold,
		newSeed:   randomSeed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build maps the series onto geometry. Single mode plots the first series;
// compare mode needs two non-empty series. Anything else yields the
// placeholder geometry.
func (b *Builder) Build(mode scenario.ViewMode, series ...Series) Geometry {
	if mode == "" {
		mode = scenario.Single
	}

	var plotted []Series
	switch mode {
	case scenario.Single:
		if len(series) > 0 {
			plotted = series[:1]
		}
	case scenario.Compare:
		if len(series) >= 2 {
			plotted = series[:2]
		}
	}
	if len(plotted) == 0 {
		return placeholder(mode, b.canvas)
	}
	for _, s := range plotted {
		if len(s.Points) == 0 {
			return placeholder(mode, b.canvas)
		}
	}

	n := 0
	longest := plotted[0]
	for _, s := range plotted {
		if len(s.Points) > n {
			n = len(s.Points)
			longest = s
		}
	}

	canvas := b.canvas
	x := xScale(canvas, n)
	y := yScale(canvas)

	ids := newAllocator(b.newSeed())
	g := Geometry{
		Mode:       mode,
		Canvas:     canvas,
		X:          x,
		Y:          y,
		XTicks:     xTicks(longest.Points, x),
		YTicks:     yTicks(y),
		ThresholdY: y(b.threshold),
	}

	for i, s := range plotted {
		slot := "a"
		if i == 1 {
			slot = "b"
		}
		colors := palettes[slot]
		name := s.Name
		if name == "" {
			name = strings.ToUpper(slot)
		}

		for _, kind := range []string{KindBaseline, KindRemediated} {
			value := baselineOf
			stroke := colors.baseline
			if kind == KindRemediated {
				value = remediatedOf
				stroke = colors.remediated
			}

			line := linePath(s.Points, x, y, value)
			gradientID := ids.gradient(slot+"-"+kind, stroke)
			g.Curves = append(g.Curves, Curve{
				Scenario: name,
				Kind:     kind,
				Line:     line,
				Area:     areaPath(line, s.Points, x, y),
				Stroke:   stroke,
				Fill:     fillURL(gradientID),
				Dashed:   slot == "b",
			})
		}

		if m, ok := saturationMarker(name, s, canvas, x); ok {
			g.Markers = append(g.Markers, m)
		}
	}

	g.Resources = ids.resources()
	return g
}

func placeholder(mode scenario.ViewMode, canvas Canvas) Geometry {
	return Geometry{
		Empty:       true,
		Placeholder: PlaceholderText,
		Mode:        mode,
		Canvas:      canvas,
	}
}

func baselineOf(p forecast.CapacityPoint) float64   { return p.Baseline }
func remediatedOf(p forecast.CapacityPoint) float64 { return p.Remediated }

func xScale(c Canvas, n int) func(int) float64 {
	left := c.Margin.Left
	width := c.InnerWidth()
	if n <= 1 {
		return func(int) float64 { return left + width/2 }
	}
	step := width / float64(n-1)
	return func(i int) float64 {
		return left + float64(i)*step
	}
}

func yScale(c Canvas) func(float64) float64 {
	top := c.Margin.Top
	height := c.InnerHeight()
	return func(v float64) float64 {
		return top + (1-mathutil.Clamp(v, 0, 1))*height
	}
}

func xTicks(points []forecast.CapacityPoint, x func(int) float64) []Tick {
	last := len(points) - 1
	var ticks []Tick
	for i := 0; i <= last; i += xTickStep {
		ticks = append(ticks, Tick{Value: float64(i), Position: x(i), Label: points[i].DateLabel})
	}
	if last%xTickStep != 0 {
		ticks = append(ticks, Tick{Value: float64(last), Position: x(last), Label: points[last].DateLabel})
	}
	return ticks
}

func yTicks(y func(float64) float64) []Tick {
	ticks := make([]Tick, 0, len(yTickValues))
	for _, v := range yTickValues {
		ticks = append(ticks, Tick{
			Value:    v,
			Position: y(v),
			Label:    strconv.Itoa(int(mathutil.ToPercent(v))) + "%",
		})
	}
	return ticks
}

func linePath(points []forecast.CapacityPoint, x func(int) float64, y func(float64) float64, value func(forecast.CapacityPoint) float64) string {
	var sb strings.Builder
	for i, p := range points {
		if i == 0 {
			sb.WriteString("M")
		} else {
			sb.WriteString(" L")
		}
		writePoint(&sb, x(i), y(value(p)))
	}
	return sb.String()
}

// areaPath closes line down to capacity zero at the last and first x.
func areaPath(line string, points []forecast.CapacityPoint, x func(int) float64, y func(float64) float64) string {
	var sb strings.Builder
	sb.WriteString(line)
	sb.WriteString(" L")
	writePoint(&sb, x(len(points)-1), y(0))
	sb.WriteString(" L")
	writePoint(&sb, x(0), y(0))
	sb.WriteString(" Z")
	return sb.String()
}

func writePoint(sb *strings.Builder, px, py float64) {
	sb.WriteString(formatCoord(px))
	sb.WriteByte(',')
	sb.WriteString(formatCoord(py))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func saturationMarker(name string, s Series, c Canvas, x func(int) float64) (Marker, bool) {
	idx := s.SaturationIndex
	if idx < 0 && s.SaturationDate != nil {
		for i, p := range s.Points {
			if p.DateLabel == *s.SaturationDate {
				idx = i
				break
			}
		}
	}
	if idx < 0 || idx >= len(s.Points) {
		return Marker{}, false
	}
	return Marker{
		Scenario:   name,
		MonthIndex: idx,
		Label:      s.Points[idx].DateLabel,
		X:          x(idx),
		Y1:         c.Margin.Top,
		Y2:         c.Margin.Top + c.InnerHeight(),
	}, true
}
