package config

import (
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/heatpump-forecast/pkg/aid"
	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/iwvelando/heatpump-forecast/pkg/cop"
	"github.com/iwvelando/heatpump-forecast/pkg/energy"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Example config file",
			configPath: "../../" + constants.ExampleConfigFile,
			wantError:  false,
		},
		{
			name:       "Minimal config file",
			configPath: "testdata/minimal.yaml",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../" + constants.ExampleConfigFile)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Format != "console" {
		t.Errorf("Expected logging format console, got %q", config.Logging.Format)
	}
	if config.Evolution.Freshness != 720*time.Hour {
		t.Errorf("Expected freshness 720h, got %v", config.Evolution.Freshness)
	}
	if config.Simulator.Timeout != 10*time.Second {
		t.Errorf("Expected simulator timeout 10s, got %v", config.Simulator.Timeout)
	}
	if _, ok := config.Evolution.Models["wood_logs"]; !ok {
		t.Errorf("Expected a wood_logs model override, got %v", config.Evolution.Models)
	}

	project := config.Project
	if project.Name != "Maison Lyon 3e" {
		t.Errorf("Expected project name Maison Lyon 3e, got %q", project.Name)
	}
	if project.HeatPump.NominalCOP != 4.2 {
		t.Errorf("Expected nominal COP 4.2, got %v", project.HeatPump.NominalCOP)
	}
	if project.Housing.PostalCode != "69003" {
		t.Errorf("Expected postal code 69003, got %q", project.Housing.PostalCode)
	}
	if project.HotWater == nil || project.Financing == nil || project.Household == nil {
		t.Fatalf("Expected hot water, financing and household sections")
	}
	if project.Investment.Aid != nil {
		t.Errorf("Expected no configured aid, got %v", *project.Investment.Aid)
	}
	if project.HeatPump.Subscription != nil {
		t.Errorf("Expected no subscription override")
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfiguration("testdata/minimal.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Output.Format != constants.OutputFormatPretty {
		t.Errorf("Expected default output format, got %q", config.Output.Format)
	}
	if config.Logging.Level != "info" {
		t.Errorf("Expected default log level info, got %q", config.Logging.Level)
	}
	if config.Evolution.Freshness != constants.DefaultModelFreshness {
		t.Errorf("Expected default freshness, got %v", config.Evolution.Freshness)
	}
	if config.Evolution.Cache.Backend != constants.CacheBackendMemory {
		t.Errorf("Expected memory cache backend, got %q", config.Evolution.Cache.Backend)
	}
	if config.Project.Investment.Aid == nil || *config.Project.Investment.Aid != 4000 {
		t.Errorf("Expected configured aid of 4000")
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("HPF_OUTPUT_FORMAT", "csv")
	t.Setenv("HPF_EVOLUTION_CACHE_BACKEND", "redis")

	config, err := LoadConfiguration("testdata/minimal.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Output.Format != "csv" {
		t.Errorf("Expected output format from environment, got %q", config.Output.Format)
	}
	if config.Evolution.Cache.Backend != "redis" {
		t.Errorf("Expected cache backend from environment, got %q", config.Evolution.Cache.Backend)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	config, err := LoadConfigurationFromReader(strings.NewReader("project:\n  name: reader\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if config.Project.Name != "reader" {
		t.Errorf("Expected project name reader, got %q", config.Project.Name)
	}

	if _, err := LoadConfigurationFromReader(strings.NewReader("project: [unclosed")); err == nil {
		t.Errorf("LoadConfigurationFromReader() expected error for invalid YAML")
	}
}

func TestToProjectFacts(t *testing.T) {
	config, err := LoadConfiguration("../../" + constants.ExampleConfigFile)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	facts, err := config.Project.ToProjectFacts()
	if err != nil {
		t.Fatalf("ToProjectFacts() error = %v", err)
	}

	gas, ok := facts.Current.(energy.NaturalGas)
	if !ok {
		t.Fatalf("Expected natural gas heating, got %T", facts.Current)
	}
	if gas.KWh != 18000 || gas.PricePerKWh != 0.11 {
		t.Errorf("Unexpected gas facts %+v", gas)
	}
	if facts.HeatPump.Type != cop.AirToWater || facts.HeatPump.Emitter != cop.LowTempRadiator {
		t.Errorf("Unexpected heat pump %+v", facts.HeatPump)
	}
	if facts.Housing.DPEClass != "E" {
		t.Errorf("Expected DPE class E, got %q", facts.Housing.DPEClass)
	}
	if facts.HotWater == nil || facts.HotWater.Occupants != 3 {
		t.Errorf("Expected hot water occupants to default to housing occupants, got %+v", facts.HotWater)
	}
	if facts.Financing == nil || facts.Financing.TermMonths != 120 {
		t.Errorf("Expected 120-month financing, got %+v", facts.Financing)
	}
	if facts.AidAmount != 0 {
		t.Errorf("Expected no aid, got %v", facts.AidAmount)
	}
	if err := facts.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestToProjectFactsErrors(t *testing.T) {
	tests := []struct {
		name    string
		project ProjectConfig
	}{
		{
			name:    "Unknown pump type",
			project: ProjectConfig{HeatPump: HeatPumpConfig{Type: "geothermal"}},
		},
		{
			name: "Unknown DPE class",
			project: ProjectConfig{
				HeatPump: HeatPumpConfig{Type: "air_to_air"},
				Housing:  HousingConfig{DPEClass: "H"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.project.ToProjectFacts(); err == nil {
				t.Errorf("ToProjectFacts() expected error but got none")
			}
		})
	}
}

func TestToHousehold(t *testing.T) {
	project := ProjectConfig{
		HeatPump: HeatPumpConfig{Type: "air_to_water"},
		Housing:  HousingConfig{PostalCode: "75011"},
	}
	if _, ok := project.ToHousehold(); ok {
		t.Errorf("ToHousehold() expected no household")
	}

	project.Household = &HouseholdConfig{ReferenceIncome: 30000, Size: 2, FullReplacement: true, DwellingOverTwoYears: true}
	household, ok := project.ToHousehold()
	if !ok {
		t.Fatalf("ToHousehold() expected a household")
	}
	if household.PostalCode != "75011" || household.PumpType != cop.AirToWater || household.Size != 2 {
		t.Errorf("Unexpected household %+v", household)
	}
}

func TestToHouseholdNormalizesPumpType(t *testing.T) {
	project := ProjectConfig{
		HeatPump:  HeatPumpConfig{Type: " AIR_TO_WATER "},
		Housing:   HousingConfig{PostalCode: "69001"},
		Household: &HouseholdConfig{ReferenceIncome: 20000, Size: 2, FullReplacement: true, DwellingOverTwoYears: true},
	}
	household, ok := project.ToHousehold()
	if !ok {
		t.Fatalf("ToHousehold() expected a household")
	}
	if household.PumpType != cop.AirToWater {
		t.Errorf("Expected pump type %q, got %q", cop.AirToWater, household.PumpType)
	}

	result, err := aid.Evaluate(household)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !result.Eligible || result.Amount != 5000 {
		t.Errorf("Expected a 5000 bonus, got %+v", result)
	}
}

func TestModelOverrides(t *testing.T) {
	evolutionConfig := EvolutionConfig{Models: map[string]ModelConfig{
		"electricity": {RecentRate: 5, EquilibriumRate: 2.5, TransitionYears: 5},
	}}
	overrides, err := evolutionConfig.ModelOverrides()
	if err != nil {
		t.Fatalf("ModelOverrides() error = %v", err)
	}
	expected := evolution.Model{RecentRate: 5, EquilibriumRate: 2.5, TransitionYears: 5}
	if overrides[evolution.Electricity] != expected {
		t.Errorf("ModelOverrides() = %+v, expected %+v", overrides[evolution.Electricity], expected)
	}

	evolutionConfig.Models["coal"] = ModelConfig{}
	if _, err := evolutionConfig.ModelOverrides(); err == nil {
		t.Errorf("ModelOverrides() expected error for unknown energy")
	}
}

func TestValidateConfiguration(t *testing.T) {
	example, err := LoadConfiguration("../../" + constants.ExampleConfigFile)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if warnings := example.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("Expected no warnings for the example, got %v", warnings)
	}

	minimal, err := LoadConfiguration("testdata/minimal.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	warnings := minimal.ValidateConfiguration()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "radiateur_fonte") {
		t.Errorf("Expected one emitter warning, got %v", warnings)
	}
}

func TestEnergyTypes(t *testing.T) {
	config := Configuration{Project: ProjectConfig{CurrentHeating: CurrentHeatingConfig{Type: "gaz"}}}
	types := config.EnergyTypes()
	if len(types) != 2 || types[0] != evolution.Electricity || types[1] != evolution.NaturalGas {
		t.Errorf("EnergyTypes() = %v", types)
	}

	config.Project.CurrentHeating.Type = "coal"
	if types := config.EnergyTypes(); len(types) != 1 {
		t.Errorf("EnergyTypes() = %v, expected electricity only", types)
	}
}
