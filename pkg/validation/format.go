// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/capacity-forecast/pkg/constants"
	"golang.org/x/text/language"
)

// ParseLocale parses a BCP 47 locale tag. An empty tag means English.
func ParseLocale(locale string) (language.Tag, error) {
	if locale == "" {
		return language.English, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, fmt.Errorf("invalid output locale %q: %w", locale, err)
	}
	return tag, nil
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateViewMode checks if the view mode is one of the supported modes.
// An empty mode is accepted and means single.
func ValidateViewMode(mode string) error {
	switch mode {
	case "", constants.ViewModeSingle, constants.ViewModeCompare:
		return nil
	}
	return fmt.Errorf("expected view mode of %s or %s, got %s",
		constants.ViewModeSingle, constants.ViewModeCompare, mode)
}
