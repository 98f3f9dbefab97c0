package main

import (
	"fmt"

	"github.com/iwvelando/capacity-forecast/internal/config"
	"github.com/iwvelando/capacity-forecast/internal/forecast"
	"github.com/iwvelando/capacity-forecast/internal/model"
	"github.com/iwvelando/capacity-forecast/internal/scenario"
	"github.com/iwvelando/capacity-forecast/pkg/constants"
	"github.com/iwvelando/capacity-forecast/pkg/output"
	"github.com/iwvelando/capacity-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project the configured scenarios and print the capacity table",
	RunE:  runProject,
}

func runProject(cmd *cobra.Command, _ []string) error {
	const op = "main.project"

	conf, logger, err := loadRun(op)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if rootFlags.outputFormat != "" {
		outputFormat = rootFlags.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}
	locale, err := validation.ParseLocale(conf.Output.Locale)
	if err != nil {
		return err
	}

	report, err := project(logger, conf)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case constants.OutputFormatCSV:
		return output.CsvFormat(out, report)
	case constants.OutputFormatJSON:
		return output.JSONFormat(out, report)
	default:
		output.PrettyFormatLocale(out, report, locale)
	}
	return nil
}

// project runs the configured view mode and labels the results.
func project(logger *zap.Logger, conf *config.Configuration) (output.Report, error) {
	start, err := conf.Start()
	if err != nil {
		return output.Report{}, fmt.Errorf("invalid start date: %w", err)
	}

	in := conf.Inputs()
	engine := forecast.NewEngine(logger, model.Default())
	outcome, err := scenario.Run(engine, in, start)
	if err != nil {
		return output.Report{}, err
	}

	logger.Info("forecast computed",
		zap.String("op", "main.project"),
		zap.String("viewMode", string(in.ViewMode)),
		zap.String("start", start.String()),
	)
	return output.NewReport(outcome, in.A.Name, in.B.Name), nil
}
