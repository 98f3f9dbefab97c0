// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/capacity-forecast/internal/forecast"
	"github.com/iwvelando/capacity-forecast/internal/scenario"
	"github.com/iwvelando/capacity-forecast/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Result is a projected scenario ready for output.
type Result struct {
	Name     string
	Forecast forecast.Forecast
}

// Report is everything printed for one run: one or two scenarios and, in
// compare mode, the horizon-end delta.
type Report struct {
	Results []Result
	Delta   *scenario.Delta
}

// NewReport builds a report from a scenario outcome, labelling scenarios A
// and B with nameA and nameB.
func NewReport(outcome scenario.Outcome, nameA, nameB string) Report {
	if outcome.Comparison == nil {
		return Report{Results: []Result{{Name: nameA, Forecast: outcome.A}}}
	}
	delta := outcome.Comparison.Delta
	return Report{
		Results: []Result{
			{Name: nameA, Forecast: outcome.Comparison.A},
			{Name: nameB, Forecast: outcome.Comparison.B},
		},
		Delta: &delta,
	}
}

// PrettyFormat writes a human-readable rather than machine-readable table
// using English number conventions.
func PrettyFormat(w io.Writer, report Report) {
	PrettyFormatLocale(w, report, language.English)
}

// PrettyFormatLocale is PrettyFormat with the numbers rendered for tag.
func PrettyFormatLocale(w io.Writer, report Report, tag language.Tag) {
	f := format.New(tag)
	p := f.Printer()
	for i, result := range report.Results {
		_, _ = fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name)
		_, _ = fmt.Fprintf(w, "Month    | Baseline | Remediated | Saturated\n")
		_, _ = fmt.Fprintf(w, "________ | ________ | __________ | _________\n")
		for _, point := range result.Forecast.Points {
			saturated := ""
			if point.IsSaturated {
				saturated = "yes"
			}
			_, _ = p.Fprintf(w, "%s | %8s | %10s | %s\n",
				point.DateLabel, f.Percent(point.Baseline), f.Percent(point.Remediated), saturated)
		}
		writeSaturation(p, w, result.Forecast)
		if i < len(report.Results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}

	if report.Delta != nil && len(report.Results) == 2 {
		label := ""
		if last, ok := report.Results[1].Forecast.Last(); ok {
			label = " at " + last.DateLabel
		}
		_, _ = fmt.Fprintf(w, "\n--- Delta (%s - %s)%s ---\n", report.Results[1].Name, report.Results[0].Name, label)
		_, _ = fmt.Fprintf(w, "Baseline:   %s\n", f.PercentagePoints(report.Delta.Baseline))
		_, _ = fmt.Fprintf(w, "Remediated: %s\n", f.PercentagePoints(report.Delta.Remediated))
	}
}

func writeSaturation(p *message.Printer, w io.Writer, f forecast.Forecast) {
	if !f.Saturated() || f.SaturationDate == nil {
		_, _ = p.Fprintf(w, "Saturation: not reached within %d months\n", len(f.Points))
		return
	}
	_, _ = p.Fprintf(w, "Saturation: %s (month %d)\n", *f.SaturationDate, f.SaturationIndex)
}

// CsvFormat writes the report in comma-separated value format.
func CsvFormat(w io.Writer, report Report) error {
	writer := csv.NewWriter(w)

	header := []string{"month"}
	for _, result := range report.Results {
		header = append(header,
			fmt.Sprintf("baseline (%s)", result.Name),
			fmt.Sprintf("remediated (%s)", result.Name),
			fmt.Sprintf("saturated (%s)", result.Name),
		)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	// All results share the same horizon, so take the labels from the longest.
	rows := 0
	var labels []forecast.CapacityPoint
	for _, result := range report.Results {
		if len(result.Forecast.Points) > rows {
			rows = len(result.Forecast.Points)
			labels = result.Forecast.Points
		}
	}

	for i := 0; i < rows; i++ {
		record := []string{labels[i].DateLabel}
		for _, result := range report.Results {
			if i >= len(result.Forecast.Points) {
				record = append(record, "", "", "")
				continue
			}
			point := result.Forecast.Points[i]
			record = append(record,
				formatRatio(point.Baseline),
				formatRatio(point.Remediated),
				strconv.FormatBool(point.IsSaturated),
			)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CsvString returns the report in comma-separated value format.
func CsvString(report Report) string {
	var sb strings.Builder
	if err := CsvFormat(&sb, report); err != nil {
		return ""
	}
	return sb.String()
}

type jsonResult struct {
	Name     string            `json:"name"`
	Forecast forecast.Forecast `json:"forecast"`
}

type jsonReport struct {
	Results []jsonResult    `json:"results"`
	Delta   *scenario.Delta `json:"delta,omitempty"`
}

// JSONFormat writes the report as indented JSON.
func JSONFormat(w io.Writer, report Report) error {
	out := jsonReport{Delta: report.Delta}
	for _, result := range report.Results {
		out.Results = append(out.Results, jsonResult(result))
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
