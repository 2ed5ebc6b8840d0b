// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"sort"

	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/iwvelando/heatpump-forecast/pkg/history"
	"github.com/iwvelando/heatpump-forecast/pkg/loans"
)

// Plausibility limits for warnings. They never reject a configuration.
const (
	MaxPlausibleNominalCOP = 7.0
	MaxPlausibleLifespan   = 30
)

// ValidateFinancingTerm checks if a loan outlives the heat pump.
func ValidateFinancingTerm(termMonths, lifespanYears int) string {
	if lifespanYears <= 0 || termMonths <= lifespanYears*constants.MonthsPerYear {
		return ""
	}
	return fmt.Sprintf("Loan term of %d months extends past the heat pump lifespan of %d years - repayments continue after the pump is retired",
		termMonths, lifespanYears)
}

// ValidateModel checks a model's equilibrium rate against the band the
// analyzer would clamp it to.
func ValidateModel(energy evolution.EnergyType, model evolution.Model) []string {
	var warnings []string

	if err := model.Validate(); err != nil {
		warnings = append(warnings, fmt.Sprintf("Model for %s is invalid: %v", energy, err))
		return warnings
	}

	if band, ok := history.EquilibriumBand(energy); ok {
		if model.EquilibriumRate < band.Min || model.EquilibriumRate > band.Max {
			warnings = append(warnings, fmt.Sprintf("Model for %s has equilibrium rate %.2f%% outside [%.1f, %.1f]",
				energy, model.EquilibriumRate, band.Min, band.Max))
		}
	}

	if model.TransitionYears != constants.TransitionYears {
		warnings = append(warnings, fmt.Sprintf("Model for %s uses %d transition years instead of %d",
			energy, model.TransitionYears, constants.TransitionYears))
	}

	return warnings
}

// ProjectValidator gathers the values checked for data-quality warnings.
type ProjectValidator struct {
	LifespanYears  int
	NominalCOP     float64
	AdjustedCOP    float64
	InvestmentCost float64
	AidAmount      float64
	Financing      *loans.Terms
	Models         map[evolution.EnergyType]evolution.Model
}

// ValidateAll validates the project and returns warnings
func (pv *ProjectValidator) ValidateAll() []string {
	var warnings []string

	if pv.NominalCOP > MaxPlausibleNominalCOP {
		warnings = append(warnings, fmt.Sprintf("Nominal COP %.2f is above %.1f - check the manufacturer data",
			pv.NominalCOP, MaxPlausibleNominalCOP))
	}
	if pv.AdjustedCOP > 0 && pv.AdjustedCOP < 1 {
		warnings = append(warnings, fmt.Sprintf("Adjusted COP %.2f is below 1 - the heat pump performs worse than direct electric heating",
			pv.AdjustedCOP))
	}
	if pv.LifespanYears > MaxPlausibleLifespan {
		warnings = append(warnings, fmt.Sprintf("Lifespan of %d years is above %d", pv.LifespanYears, MaxPlausibleLifespan))
	}
	if pv.AidAmount > pv.InvestmentCost {
		warnings = append(warnings, fmt.Sprintf("Aid of %.2f exceeds the investment of %.2f", pv.AidAmount, pv.InvestmentCost))
	}

	if pv.Financing != nil {
		if warning := ValidateFinancingTerm(pv.Financing.TermMonths, pv.LifespanYears); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	energies := make([]string, 0, len(pv.Models))
	for energy := range pv.Models {
		energies = append(energies, string(energy))
	}
	sort.Strings(energies)
	for _, energy := range energies {
		warnings = append(warnings, ValidateModel(evolution.EnergyType(energy), pv.Models[evolution.EnergyType(energy)])...)
	}

	return warnings
}
