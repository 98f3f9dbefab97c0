package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/capacity-forecast/internal/forecast"
	"github.com/iwvelando/capacity-forecast/internal/model"
	"github.com/iwvelando/capacity-forecast/internal/scenario"
	"github.com/iwvelando/capacity-forecast/pkg/datetime"
	"golang.org/x/text/language"
)

var start = datetime.Month{Year: 2024, Month: time.January}

var (
	moderate = scenario.ScenarioInputs{
		Metrics: forecast.OperationalMetrics{VelocityIndex: 40, InterruptionRate: 35, Stability: model.Degraded},
		Params:  forecast.SimulationParams{RefusalWeeks: 4},
	}
	severe = scenario.ScenarioInputs{
		Metrics: forecast.OperationalMetrics{VelocityIndex: 100, InterruptionRate: 100, Stability: model.Unstable},
	}
)

func compareReport(t *testing.T) Report {
	t.Helper()
	engine := forecast.NewEngine(nil, model.Default())
	outcome, err := scenario.Run(engine, scenario.Inputs{ViewMode: scenario.Compare, A: moderate, B: severe}, start)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return NewReport(outcome, "current", "severe")
}

func singleReport(t *testing.T) Report {
	t.Helper()
	engine := forecast.NewEngine(nil, model.Default())
	outcome, err := scenario.Run(engine, scenario.Inputs{A: moderate}, start)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return NewReport(outcome, "current", "")
}

func TestPrettyFormatSingle(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, singleReport(t))
	output := buf.String()

	expected := []string{
		"--- Results for scenario current ---",
		"Month    | Baseline | Remediated | Saturated",
		"Jan 2024 |   94.25% |    100.00% |",
		"Saturation: not reached within 24 months",
	}
	for _, e := range expected {
		if !strings.Contains(output, e) {
			t.Errorf("PrettyFormat output missing %q\n%s", e, output)
		}
	}
	if strings.Contains(output, "Delta") {
		t.Error("single mode output should not contain a delta section")
	}
}

func TestPrettyFormatCompare(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, compareReport(t))
	output := buf.String()

	expected := []string{
		"--- Results for scenario severe ---",
		"Saturation: Oct 2024 (month 9)",
		"--- Delta (severe - current) at Dec 2025 ---",
		"Baseline:   -",
		"Remediated: -",
	}
	for _, e := range expected {
		if !strings.Contains(output, e) {
			t.Errorf("PrettyFormat output missing %q\n%s", e, output)
		}
	}
}

func TestPrettyFormatLocale(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormatLocale(&buf, singleReport(t), language.German)
	output := buf.String()

	if !strings.Contains(output, "Jan 2024 |   94,25% |    100,00% |") {
		t.Errorf("expected German decimal commas\n%s", output)
	}
	if strings.Contains(output, "94.25%") {
		t.Errorf("unexpected English number in German output\n%s", output)
	}
}

func TestCsvFormat(t *testing.T) {
	out := CsvString(compareReport(t))

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV output: %v", err)
	}
	if len(records) != 25 {
		t.Fatalf("expected header plus 24 rows, got %d", len(records))
	}

	header := records[0]
	wantHeader := []string{"month", "baseline (current)", "remediated (current)", "saturated (current)", "baseline (severe)", "remediated (severe)", "saturated (severe)"}
	if strings.Join(header, "|") != strings.Join(wantHeader, "|") {
		t.Errorf("header = %v, expected %v", header, wantHeader)
	}

	first := records[1]
	if first[0] != "Jan 2024" || first[1] != "0.9425" || first[2] != "1.0000" || first[3] != "false" {
		t.Errorf("unexpected first row %v", first)
	}
	if records[10][6] != "true" {
		t.Errorf("expected severe scenario saturated at Oct 2024, got row %v", records[10])
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, compareReport(t)); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded struct {
		Results []struct {
			Name     string `json:"name"`
			Forecast struct {
				Points          []json.RawMessage `json:"points"`
				SaturationIndex int               `json:"saturationIndex"`
				SaturationDate  *string           `json:"saturationDate"`
			} `json:"forecast"`
		} `json:"results"`
		Delta *struct {
			Baseline   float64 `json:"baseline"`
			Remediated float64 `json:"remediated"`
		} `json:"delta"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode JSON output: %v", err)
	}

	if len(decoded.Results) != 2 || decoded.Delta == nil {
		t.Fatalf("expected two results and a delta, got %+v", decoded)
	}
	if decoded.Results[0].Forecast.SaturationDate != nil || decoded.Results[0].Forecast.SaturationIndex != -1 {
		t.Errorf("scenario A should serialize a null saturation date")
	}
	if decoded.Results[1].Forecast.SaturationDate == nil || *decoded.Results[1].Forecast.SaturationDate != "Oct 2024" {
		t.Errorf("scenario B saturation date not serialized")
	}
}
