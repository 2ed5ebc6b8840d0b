// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for heatpump-forecast.
type Configuration struct {
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Evolution EvolutionConfig `yaml:"evolution,omitempty"`
	Simulator SimulatorConfig `yaml:"simulator,omitempty"`
	Project   ProjectConfig   `yaml:"project"`
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
}

// EvolutionConfig controls how energy price evolution models are obtained.
type EvolutionConfig struct {
	// HistoryDir holds one <energy>.csv price history per energy type.
	HistoryDir string `yaml:"historyDir,omitempty"`
	// Freshness is how long a fitted model is reused before refitting.
	Freshness time.Duration `yaml:"freshness,omitempty"`
	// StartYear labels the first projected year; 0 means the current year.
	StartYear int         `yaml:"startYear,omitempty"`
	Cache     CacheConfig `yaml:"cache,omitempty"`
	// Models are explicit models keyed by energy type. They take precedence
	// over fitted models.
	Models map[string]ModelConfig `yaml:"models,omitempty"`
}

// CacheConfig selects the fitted model store.
type CacheConfig struct {
	Backend       string `yaml:"backend,omitempty"` // memory, redis, postgres
	RedisAddr     string `yaml:"redisAddr,omitempty"`
	RedisPassword string `yaml:"redisPassword,omitempty"`
	RedisDB       int    `yaml:"redisDb,omitempty"`
	DSN           string `yaml:"dsn,omitempty"`
	KeyPrefix     string `yaml:"keyPrefix,omitempty"`
}

// ModelConfig is an explicit evolution model.
type ModelConfig struct {
	RecentRate      float64 `yaml:"recentRate"`
	EquilibriumRate float64 `yaml:"equilibriumRate"`
	TransitionYears int     `yaml:"transitionYears"`
}

// SimulatorConfig points at the external aid simulator.
type SimulatorConfig struct {
	URL     string        `yaml:"url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ProjectConfig describes one household and its heat pump project.
type ProjectConfig struct {
	Name           string               `yaml:"name"`
	CurrentHeating CurrentHeatingConfig `yaml:"currentHeating"`
	HeatPump       HeatPumpConfig       `yaml:"heatPump"`
	Housing        HousingConfig        `yaml:"housing"`
	HotWater       *HotWaterConfig      `yaml:"hotWater,omitempty"`
	Investment     InvestmentConfig     `yaml:"investment"`
	Financing      *FinancingConfig     `yaml:"financing,omitempty"`
	Household      *HouseholdConfig     `yaml:"household,omitempty"`
}

// CurrentHeatingConfig is the system being replaced. Quantity is expressed
// in the unit of the type: liters, kWh, kg or stères.
type CurrentHeatingConfig struct {
	Type         string  `yaml:"type"`
	Quantity     float64 `yaml:"quantity"`
	UnitPrice    float64 `yaml:"unitPrice"`
	COP          float64 `yaml:"cop,omitempty"`
	Subscription float64 `yaml:"subscription,omitempty"`
	Maintenance  float64 `yaml:"maintenance,omitempty"`
}

// HeatPumpConfig is the proposed heat pump.
type HeatPumpConfig struct {
	Type             string   `yaml:"type"`
	Emitter          string   `yaml:"emitter"`
	NominalCOP       float64  `yaml:"nominalCop"`
	LifespanYears    int      `yaml:"lifespanYears"`
	PowerKW          float64  `yaml:"powerKw,omitempty"`
	ElectricityPrice float64  `yaml:"electricityPrice"`
	Subscription     *float64 `yaml:"subscription,omitempty"`
	Maintenance      float64  `yaml:"maintenance,omitempty"`
}

// HousingConfig describes the dwelling.
type HousingConfig struct {
	PostalCode string  `yaml:"postalCode,omitempty"`
	DPEClass   string  `yaml:"dpeClass,omitempty"`
	LivingArea float64 `yaml:"livingArea,omitempty"`
	Occupants  int     `yaml:"occupants,omitempty"`
	MeterKVA   float64 `yaml:"meterKva,omitempty"`
}

// HotWaterConfig is present when hot water is produced separately from
// space heating.
type HotWaterConfig struct {
	DeclaredKWh float64 `yaml:"declaredKwh,omitempty"`
	Occupants   int     `yaml:"occupants,omitempty"`
	PricePerKWh float64 `yaml:"pricePerKwh"`
}

// InvestmentConfig is the cost of the installation. Aid, when set, is used
// instead of the computed CEE bonus.
type InvestmentConfig struct {
	Cost float64  `yaml:"cost"`
	Aid  *float64 `yaml:"aid,omitempty"`
}

// FinancingConfig holds the terms of a loan financing the installation.
type FinancingConfig struct {
	Principal   float64 `yaml:"principal"`
	DownPayment float64 `yaml:"downPayment,omitempty"`
	AnnualRate  float64 `yaml:"annualRate"`
	TermMonths  int     `yaml:"termMonths"`
}

// HouseholdConfig holds the facts needed for CEE eligibility.
type HouseholdConfig struct {
	ReferenceIncome      float64 `yaml:"referenceIncome"`
	Size                 int     `yaml:"size"`
	FullReplacement      bool    `yaml:"fullReplacement"`
	DwellingOverTwoYears bool    `yaml:"dwellingOverTwoYears"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("evolution.freshness", constants.DefaultModelFreshness)
	v.SetDefault("evolution.cache.backend", constants.CacheBackendMemory)
	v.SetDefault("evolution.cache.keyPrefix", constants.DefaultCacheKeyPrefix)
	v.SetDefault("simulator.timeout", constants.DefaultSimulatorTimeout)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}
