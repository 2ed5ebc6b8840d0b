// Package constants provides shared constants for the heatpump-forecast application.
package constants

import "time"

// PeriodLayout is the format of monthly price periods and is also the output
// period format.
const PeriodLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PaybackPrecision is the precision for payback periods (1 decimal place)
	PaybackPrecision = 10

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// History analysis constants
const (
	// MinHistoryMonths is the shortest monthly series that can be analyzed.
	MinHistoryMonths = 24

	// RecentWindowYears is the number of annual averages used for the recent trend.
	RecentWindowYears = 10

	// RecentTrendWeight is the weight of the recent trend in the recent rate;
	// the full-history trend gets the remainder.
	RecentTrendWeight = 0.7

	// CrisisAbsoluteThreshold flags any annual evolution above this magnitude (percent).
	CrisisAbsoluteThreshold = 15.0

	// CrisisSigmaThreshold flags annual evolutions further than this many
	// standard deviations from the mean.
	CrisisSigmaThreshold = 2.0

	// TransitionYears is the period over which the recent rate decays toward equilibrium.
	TransitionYears = 5

	// MaxPlausibleRate bounds evolution rates accepted from callers (percent/year).
	MaxPlausibleRate = 50.0
)

// Household constants
const (
	// DHWKWhPerOccupant is the annual domestic-hot-water need per occupant.
	DHWKWhPerOccupant = 800.0

	// DPEBlendWeight is the weight of the declared consumption when blended
	// with the DPE-theoretical consumption.
	DPEBlendWeight = 0.5

	// DefaultMeterKVA is the subscribed power assumed when none is declared.
	DefaultMeterKVA = 6.0
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

	// EnvPrefix is the prefix of environment variable overrides.
	EnvPrefix = "HPF"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultShutdownTimeout is how long in-flight requests get to complete
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultRequestTimeout bounds a request, model fitting included
	DefaultRequestTimeout = 60 * time.Second
)

// Evolution model cache defaults
const (
	// DefaultModelFreshness is how long a fitted model is reused
	DefaultModelFreshness = 30 * 24 * time.Hour

	// DefaultCacheKeyPrefix namespaces cached models in shared stores
	DefaultCacheKeyPrefix = "hpf:model:"

	// Cache backends
	CacheBackendMemory   = "memory"
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
	CacheBackendNone     = "none"
)

// DefaultSimulatorTimeout bounds a request to the aid simulator
const DefaultSimulatorTimeout = 10 * time.Second
