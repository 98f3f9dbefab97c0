// Package config defines the data structures related to configuration and
// includes functions for loading the config and converting it into engine
// inputs.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/capacity-forecast/internal/forecast"
	"github.com/iwvelando/capacity-forecast/internal/model"
	"github.com/iwvelando/capacity-forecast/internal/scenario"
	"github.com/iwvelando/capacity-forecast/pkg/constants"
	"github.com/iwvelando/capacity-forecast/pkg/datetime"
	"github.com/iwvelando/capacity-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected for the start date.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for capacity-forecast.
type Configuration struct {
	ViewMode  string        `yaml:"viewMode,omitempty"`
	StartDate string        `yaml:"startDate,omitempty"`
	Scenarios Scenarios     `yaml:"scenarios"`
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
	Locale string `yaml:"locale,omitempty"` // BCP 47 tag for pretty output numbers, default en
}

// Scenarios holds the two scenario slots. B is only used in compare mode.
type Scenarios struct {
	A Scenario  `yaml:"a"`
	B *Scenario `yaml:"b,omitempty"`
}

// Scenario holds the metrics and parameters of one scenario.
type Scenario struct {
	Name    string  `yaml:"name,omitempty"`
	Metrics Metrics `yaml:"metrics"`
	Params  Params  `yaml:"params"`
}

// Metrics are the operational load indicators of a scenario.
type Metrics struct {
	VelocityIndex    float64 `yaml:"velocityIndex"`
	InterruptionRate float64 `yaml:"interruptionRate"`
	Stability        string  `yaml:"stability"`
}

// Params are the remediation levers of a scenario.
type Params struct {
	RefusalWeeks float64 `yaml:"refusalWeeks"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with CAPACITY_ override
// file values, e.g. CAPACITY_SCENARIOS_A_PARAMS_REFUSALWEEKS.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// Mode returns the configured view mode, defaulting to single.
func (conf *Configuration) Mode() scenario.ViewMode {
	if conf.ViewMode == "" {
		return scenario.Single
	}
	return scenario.ViewMode(strings.ToLower(strings.TrimSpace(conf.ViewMode)))
}

// Start returns the first projected month. An empty start date means the
// current UTC month.
func (conf *Configuration) Start() (datetime.Month, error) {
	if conf.StartDate == "" {
		return datetime.CurrentMonth(), nil
	}
	return datetime.ParseMonth(conf.StartDate)
}

// Inputs converts the configuration into engine inputs. A missing scenario B
// is treated as zero-valued; running it in compare mode still works and
// simply compares against an idle team.
func (conf *Configuration) Inputs() scenario.Inputs {
	var b Scenario
	if conf.Scenarios.B != nil {
		b = *conf.Scenarios.B
	}
	return scenario.Inputs{
		ViewMode: conf.Mode(),
		A:        conf.Scenarios.A.ToInputs("A"),
		B:        b.ToInputs("B"),
	}
}

// ToInputs converts a configured scenario into engine inputs. defaultName is
// used when the scenario is unnamed.
func (s Scenario) ToInputs(defaultName string) scenario.ScenarioInputs {
	name := s.Name
	if name == "" {
		name = defaultName
	}
	return scenario.ScenarioInputs{
		Name: name,
		Metrics: forecast.OperationalMetrics{
			VelocityIndex:    s.Metrics.VelocityIndex,
			InterruptionRate: s.Metrics.InterruptionRate,
			Stability:        ParseStability(s.Metrics.Stability),
		},
		Params: forecast.SimulationParams{
			RefusalWeeks: s.Params.RefusalWeeks,
		},
	}
}

// ParseStability normalizes a configured stability profile. Unknown values
// are passed through so the engine can apply its fallback.
func ParseStability(value string) model.Stability {
	return model.Stability(strings.ToUpper(strings.TrimSpace(value)))
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (conf *Configuration) ValidateConfiguration() []string {
	scenarios := []validation.ScenarioConfig{toValidation("A", &conf.Scenarios.A)}
	scenarios = append(scenarios, toValidation("B", conf.Scenarios.B))

	validator := validation.ConfigValidator{
		ViewMode:  strings.ToLower(strings.TrimSpace(conf.ViewMode)),
		StartDate: conf.StartDate,
		Scenarios: scenarios,
	}
	return validator.ValidateAll()
}

func toValidation(slot string, s *Scenario) validation.ScenarioConfig {
	if s == nil {
		return validation.ScenarioConfig{Slot: slot, Missing: true}
	}
	return validation.ScenarioConfig{
		Slot:             slot,
		Name:             s.Name,
		VelocityIndex:    s.Metrics.VelocityIndex,
		InterruptionRate: s.Metrics.InterruptionRate,
		Stability:        s.Metrics.Stability,
		RefusalWeeks:     s.Params.RefusalWeeks,
	}
}
