package validation

import (
	"strings"
	"testing"

	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/iwvelando/heatpump-forecast/pkg/loans"
)

func TestValidateFinancingTerm(t *testing.T) {
	tests := []struct {
		name          string
		termMonths    int
		lifespanYears int
		expectWarn    bool
	}{
		{
			name:          "Loan repaid before end of life",
			termMonths:    120,
			lifespanYears: 17,
			expectWarn:    false,
		},
		{
			name:          "Loan repaid exactly at end of life",
			termMonths:    180,
			lifespanYears: 15,
			expectWarn:    false,
		},
		{
			name:          "Loan outlives the heat pump",
			termMonths:    240,
			lifespanYears: 15,
			expectWarn:    true,
		},
		{
			name:          "Unknown lifespan",
			termMonths:    240,
			lifespanYears: 0,
			expectWarn:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateFinancingTerm(tt.termMonths, tt.lifespanYears)
			hasWarning := warning != ""
			if hasWarning != tt.expectWarn {
				t.Errorf("ValidateFinancingTerm() warning = %t, expected %t", hasWarning, tt.expectWarn)
			}
			if hasWarning {
				t.Logf("Warning: %s", warning)
			}
		})
	}
}

func TestValidateModel(t *testing.T) {
	tests := []struct {
		name          string
		energy        evolution.EnergyType
		model         evolution.Model
		expectedCount int
		expectedText  string
	}{
		{
			name:          "Model inside band",
			energy:        evolution.Electricity,
			model:         evolution.Model{RecentRate: 6, EquilibriumRate: 3, TransitionYears: 5},
			expectedCount: 0,
		},
		{
			name:          "Wood equilibrium above band",
			energy:        evolution.WoodLogs,
			model:         evolution.Model{RecentRate: 4, EquilibriumRate: 5, TransitionYears: 5},
			expectedCount: 1,
			expectedText:  "outside [1.0, 3.0]",
		},
		{
			name:          "Unusual transition",
			energy:        evolution.NaturalGas,
			model:         evolution.Model{RecentRate: 8, EquilibriumRate: 3, TransitionYears: 10},
			expectedCount: 1,
			expectedText:  "10 transition years",
		},
		{
			name:          "Invalid model",
			energy:        evolution.FuelOil,
			model:         evolution.Model{RecentRate: 80, EquilibriumRate: 3, TransitionYears: 5},
			expectedCount: 1,
			expectedText:  "is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateModel(tt.energy, tt.model)
			if len(warnings) != tt.expectedCount {
				t.Fatalf("ValidateModel() returned %d warnings, expected %d: %v", len(warnings), tt.expectedCount, warnings)
			}
			if tt.expectedText != "" && !strings.Contains(warnings[0], tt.expectedText) {
				t.Errorf("warning %q does not contain %q", warnings[0], tt.expectedText)
			}
		})
	}
}

func TestProjectValidatorValidateAll(t *testing.T) {
	validator := ProjectValidator{
		LifespanYears:  17,
		NominalCOP:     4.2,
		AdjustedCOP:    3.36,
		InvestmentCost: 13500,
		AidAmount:      4000,
		Financing:      &loans.Terms{Principal: 9500, AnnualRate: 3, TermMonths: 120},
		Models:         evolution.DefaultModels(),
	}

	if warnings := validator.ValidateAll(); len(warnings) != 0 {
		t.Errorf("ValidateAll() expected no warnings, got %v", warnings)
	}

	validator.NominalCOP = 8
	validator.AdjustedCOP = 0.9
	validator.LifespanYears = 35
	validator.AidAmount = 20000
	validator.Financing.TermMonths = 480
	validator.Models = map[evolution.EnergyType]evolution.Model{
		evolution.WoodPellets: {RecentRate: 5, EquilibriumRate: 6, TransitionYears: 5},
		evolution.Electricity: {RecentRate: 6, EquilibriumRate: 9, TransitionYears: 5},
	}

	warnings := validator.ValidateAll()
	if len(warnings) != 7 {
		t.Fatalf("ValidateAll() returned %d warnings, expected 7: %v", len(warnings), warnings)
	}
	// Model warnings are sorted by energy type.
	if !strings.Contains(warnings[5], "electricity") || !strings.Contains(warnings[6], "wood_pellets") {
		t.Errorf("model warnings not sorted: %v", warnings[5:])
	}
}
