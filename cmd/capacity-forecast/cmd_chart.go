package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/iwvelando/capacity-forecast/internal/chart"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const chartFileMode = 0o644

var chartFlags struct {
	out    string
	width  float64
	height float64
}

// renderChart is replaced in tests.
var renderChart = chart.RenderSVG

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the configured scenarios as an SVG chart",
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&chartFlags.out, "out", "o", "", "write the SVG to this file instead of stdout")
	chartCmd.Flags().Float64Var(&chartFlags.width, "width", chart.DefaultCanvas.Width, "logical chart width")
	chartCmd.Flags().Float64Var(&chartFlags.height, "height", chart.DefaultCanvas.Height, "logical chart height")
}

func runChart(cmd *cobra.Command, _ []string) error {
	const op = "main.chart"

	conf, logger, err := loadRun(op)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	report, err := project(logger, conf)
	if err != nil {
		return err
	}

	series := make([]chart.Series, 0, len(report.Results))
	for _, result := range report.Results {
		series = append(series, chart.SeriesOf(result.Name, result.Forecast))
	}

	canvas := chart.DefaultCanvas
	canvas.Width = chartFlags.width
	canvas.Height = chartFlags.height
	if canvas.InnerWidth() <= 0 || canvas.InnerHeight() <= 0 {
		return fmt.Errorf("chart size %gx%g leaves no room inside the margins", canvas.Width, canvas.Height)
	}
	geometry := chart.NewBuilder(chart.WithCanvas(canvas)).Build(conf.Mode(), series...)

	// Render fully before touching the destination so a failure never
	// leaves a truncated file behind.
	var buf bytes.Buffer
	if err := renderChart(&buf, geometry); err != nil {
		return err
	}

	if chartFlags.out == "" {
		_, err := buf.WriteTo(cmd.OutOrStdout())
		return err
	}

	if err := os.WriteFile(chartFlags.out, buf.Bytes(), chartFileMode); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}
	logger.Info("chart written",
		zap.String("op", op),
		zap.String("path", chartFlags.out),
		zap.Int("bytes", buf.Len()),
	)
	return nil
}
