package chart

import (
	"fmt"
	"io"
	"strconv"
	"text/template"
)

var svgTemplate = template.Must(template.New("chart").Funcs(template.FuncMap{
	"esc":   template.HTMLEscapeString,
	"coord": formatCoord,
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"half":   func(v float64) float64 { return v / 2 },
	"add":    func(a, b float64) float64 { return a + b },
	"sub":    func(a, b float64) float64 { return a - b },
	"bottom": func(c Canvas) float64 { return c.Margin.Top + c.InnerHeight() },
	"right":  func(c Canvas) float64 { return c.Margin.Left + c.InnerWidth() },
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 {{num .Canvas.Width}} {{num .Canvas.Height}}" width="{{num .Canvas.Width}}" height="{{num .Canvas.Height}}">
{{- if .Empty}}
<text x="{{coord (half .Canvas.Width)}}" y="{{coord (half .Canvas.Height)}}" text-anchor="middle">{{esc .Placeholder}}</text>
{{- else}}
<defs>
<clipPath id="{{.Resources.ClipPathID}}"><rect x="{{coord .Canvas.Margin.Left}}" y="{{coord .Canvas.Margin.Top}}" width="{{coord .Canvas.InnerWidth}}" height="{{coord .Canvas.InnerHeight}}"/></clipPath>
{{- range .Resources.Gradients}}
<linearGradient id="{{.ID}}" x1="0" y1="0" x2="0" y2="1"><stop offset="0%" stop-color="{{.Color}}" stop-opacity="{{num .TopOpacity}}"/><stop offset="100%" stop-color="{{.Color}}" stop-opacity="{{num .BottomOpacity}}"/></linearGradient>
{{- end}}
</defs>
<g class="y-axis">
{{- range .YTicks}}
<line x1="{{coord $.Canvas.Margin.Left}}" x2="{{coord (right $.Canvas)}}" y1="{{coord .Position}}" y2="{{coord .Position}}" stroke="#e0e0e0"/><text x="{{coord (sub $.Canvas.Margin.Left 6)}}" y="{{coord .Position}}" text-anchor="end" dominant-baseline="middle">{{esc .Label}}</text>
{{- end}}
</g>
<g class="x-axis">
{{- range .XTicks}}
<text x="{{coord .Position}}" y="{{coord (add (bottom $.Canvas) 18)}}" text-anchor="middle">{{esc .Label}}</text>
{{- end}}
</g>
<line class="threshold" x1="{{coord .Canvas.Margin.Left}}" x2="{{coord (right .Canvas)}}" y1="{{coord .ThresholdY}}" y2="{{coord .ThresholdY}}" stroke="#999" stroke-dasharray="2 4"/>
<g clip-path="url(#{{.Resources.ClipPathID}})">
{{- range .Curves}}
<path class="area {{.Kind}}" d="{{.Area}}" fill="{{.Fill}}" stroke="none"/>
<path class="line {{.Kind}}" d="{{.Line}}" fill="none" stroke="{{.Stroke}}" stroke-width="2"{{if .Dashed}} stroke-dasharray="6 4"{{end}}><title>{{esc .Scenario}} {{.Kind}}</title></path>
{{- end}}
</g>
{{- range .Markers}}
<g class="saturation"><line x1="{{coord .X}}" x2="{{coord .X}}" y1="{{coord .Y1}}" y2="{{coord .Y2}}" stroke="#b00020" stroke-dasharray="4 3"/><text x="{{coord .X}}" y="{{coord .Y1}}" text-anchor="middle">{{esc .Scenario}}: {{esc .Label}}</text></g>
{{- end}}
{{- end}}
</svg>
`))

// RenderSVG writes g as a standalone SVG document. The document's <defs>
// declare exactly g.Resources, and every url(#...) reference in it points at
// one of those declarations.
func RenderSVG(w io.Writer, g Geometry) error {
	if err := svgTemplate.Execute(w, g); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
