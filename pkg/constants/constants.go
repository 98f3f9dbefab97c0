// Package constants provides shared constants for the capacity-forecast application.
package constants

import "time"

// DateTimeLayout is the format expected for start dates in config files and
// API payloads.
const DateTimeLayout = "2006-01"

// MonthLabelLayout is the layout used for the human month/year label of every
// projected point (e.g. "Oct 2024").
const MonthLabelLayout = "Jan 2006"

// Calendar constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
)

// View mode constants
const (
	// ViewModeSingle projects and charts one scenario
	ViewModeSingle = "single"

	// ViewModeCompare projects and charts scenarios A and B side by side
	ViewModeCompare = "compare"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "CAPACITY"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultCacheCapacity is the default number of memoized projections
	DefaultCacheCapacity = 1024

	// DefaultReadHeaderTimeout bounds how long a client may take to send
	// request headers
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown
	DefaultShutdownTimeout = 5 * time.Second
)

// Validation constants
const (
	// CapacityTolerance is the tolerance for capacity comparisons in tests and
	// reports
	CapacityTolerance = 1e-4

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
