package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/capacity-forecast/internal/chart"
	"github.com/iwvelando/capacity-forecast/internal/config"
	"github.com/iwvelando/capacity-forecast/pkg/constants"
)

var exampleConfigPath = filepath.Join("..", "..", constants.ExampleConfigFile)

// execute runs the root command in-process with fresh flag state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	rootFlags.configPath = constants.DefaultConfigFile
	rootFlags.logLevel = ""
	rootFlags.outputFormat = ""
	chartFlags.out = ""
	chartFlags.width = chart.DefaultCanvas.Width
	chartFlags.height = chart.DefaultCanvas.Height

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestProjectPretty(t *testing.T) {
	out, err := execute(t, "project", "--config", exampleConfigPath, "--output-format", "pretty")
	if err != nil {
		t.Fatalf("project failed: %v\n%s", err, out)
	}

	for _, expected := range []string{
		"--- Results for scenario current load ---",
		"--- Results for scenario incident season ---",
		"Saturation: Oct 2024 (month 9)",
		"--- Delta (incident season - current load) at Dec 2025 ---",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("output missing %q\n%s", expected, out)
		}
	}
}

func TestProjectJSON(t *testing.T) {
	out, err := execute(t, "project", "--config", exampleConfigPath, "--output-format", "json")
	if err != nil {
		t.Fatalf("project failed: %v\n%s", err, out)
	}

	var decoded struct {
		Results []struct {
			Name string `json:"name"`
		} `json:"results"`
		Delta *struct {
			Baseline float64 `json:"baseline"`
		} `json:"delta"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("failed to decode JSON output: %v\n%s", err, out)
	}
	if len(decoded.Results) != 2 || decoded.Delta == nil {
		t.Fatalf("expected two results and a delta, got %+v", decoded)
	}
}

func TestProjectInvalidOutputFormat(t *testing.T) {
	if _, err := execute(t, "project", "--config", exampleConfigPath, "--output-format", "xml"); err == nil {
		t.Fatal("expected error for unsupported output format")
	}
}

func TestProjectMissingConfig(t *testing.T) {
	_, err := execute(t, "project", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to load configuration") {
		t.Fatalf("expected configuration load error, got %v", err)
	}
}

func TestChartWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.svg")

	if out, err := execute(t, "chart", "--config", exampleConfigPath, "--out", path); err != nil {
		t.Fatalf("chart failed: %v\n%s", err, out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read chart: %v", err)
	}
	if !strings.HasPrefix(string(data), "<svg") {
		t.Fatalf("expected an SVG document, got %q", string(data))
	}
	if !strings.Contains(string(data), "incident season") {
		t.Fatal("expected the chart to name scenario B")
	}
}

func TestChartCanvasSize(t *testing.T) {
	out, err := execute(t, "chart", "--config", exampleConfigPath, "--width", "1200", "--height", "480")
	if err != nil {
		t.Fatalf("chart failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, `viewBox="0 0 1200 480"`) {
		t.Fatalf("expected a 1200x480 viewBox, got %q", out[:min(len(out), 200)])
	}

	if _, err := execute(t, "chart", "--config", exampleConfigPath, "--width", "50"); err == nil {
		t.Fatal("expected an error for a canvas narrower than its margins")
	}
}

func TestChartRenderFailureKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.svg")
	const previous = "<svg>previous chart</svg>"
	if err := os.WriteFile(path, []byte(previous), 0o600); err != nil {
		t.Fatalf("failed to seed chart file: %v", err)
	}

	original := renderChart
	t.Cleanup(func() { renderChart = original })
	renderChart = func(w io.Writer, _ chart.Geometry) error {
		_, _ = io.WriteString(w, "<svg")
		return errors.New("render failed")
	}

	if _, err := execute(t, "chart", "--config", exampleConfigPath, "--out", path); err == nil {
		t.Fatal("expected the render error to be returned")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read chart: %v", err)
	}
	if string(data) != previous {
		t.Fatalf("chart file was modified: %q", string(data))
	}
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		logging   config.LoggingConfig
		override  string
		wantError bool
	}{
		{name: "defaults", logging: config.LoggingConfig{}},
		{name: "console debug", logging: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override wins", logging: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "invalid level", logging: config.LoggingConfig{Level: "loud"}, wantError: true},
		{name: "invalid format", logging: config.LoggingConfig{Format: "xml"}, wantError: true},
		{name: "file output", logging: config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "capacity.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.logging, tt.override)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			_ = logger.Sync()

			if tt.logging.OutputFile != "" {
				if _, err := os.Stat(tt.logging.OutputFile); err != nil {
					t.Fatalf("expected log file to be created: %v", err)
				}
			}
		})
	}
}
