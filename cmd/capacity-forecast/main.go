// Command capacity-forecast projects how a team's delivery capacity decays
// under sustained operational load, with and without remediation.
package main

import (
	"fmt"
	"os"

	"github.com/iwvelando/capacity-forecast/internal/config"
	"github.com/iwvelando/capacity-forecast/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath   string
	logLevel     string
	outputFormat string
}

var rootCmd = &cobra.Command{
	Use:   "capacity-forecast",
	Short: "Project team capacity decay under operational load",
	Long: "capacity-forecast projects a team's remaining delivery capacity over a\n" +
		"24-month horizon, with and without a refusal-of-work remediation, and\n" +
		"reports when the team saturates.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// A missing .env file is not an error.
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	f.StringVar(&rootFlags.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

// loadRun loads the configured scenarios and a logger for them. Configuration
// warnings are logged, never fatal.
func loadRun(op string) (*config.Configuration, *zap.Logger, error) {
	conf, err := config.LoadConfiguration(rootFlags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration at %s: %w", rootFlags.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, rootFlags.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", op),
		)
	}
	return conf, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
