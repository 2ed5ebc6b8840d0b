// Package evolution models how energy prices move over the years: a recent
// trend that decays linearly toward a long-run equilibrium trend.
package evolution

import (
	"fmt"
	"strings"

	"github.com/iwvelando/heatpump-forecast/pkg/constants"
)

// EnergyType identifies an energy carrier with its own price history.
type EnergyType string

const (
	Electricity EnergyType = "electricity"
	NaturalGas  EnergyType = "natural_gas"
	FuelOil     EnergyType = "fuel_oil"
	LPG         EnergyType = "lpg"
	WoodLogs    EnergyType = "wood_logs"
	WoodPellets EnergyType = "wood_pellets"
)

// EnergyTypes lists every supported energy carrier.
func EnergyTypes() []EnergyType {
	return []EnergyType{Electricity, NaturalGas, FuelOil, LPG, WoodLogs, WoodPellets}
}

// ParseEnergyType maps a configuration tag onto an EnergyType.
func ParseEnergyType(tag string) (EnergyType, error) {
	normalized := EnergyType(strings.ToLower(strings.TrimSpace(tag)))
	for _, et := range EnergyTypes() {
		if et == normalized {
			return et, nil
		}
	}
	return "", fmt.Errorf("unknown energy type %q", tag)
}

// Model is a fitted price evolution model. Rates are signed percentages per year.
type Model struct {
	RecentRate      float64 `json:"recentRate" yaml:"recentRate" mapstructure:"recentRate"`
	EquilibriumRate float64 `json:"equilibriumRate" yaml:"equilibriumRate" mapstructure:"equilibriumRate"`
	TransitionYears int     `json:"transitionYears" yaml:"transitionYears" mapstructure:"transitionYears"`
}

// Validate rejects models callers should not project with.
func (m Model) Validate() error {
	if m.TransitionYears < 0 {
		return fmt.Errorf("transition years must be >= 0, got %d", m.TransitionYears)
	}
	if m.RecentRate < -constants.MaxPlausibleRate || m.RecentRate > constants.MaxPlausibleRate {
		return fmt.Errorf("recent rate %.2f%% outside [-%.0f, %.0f]", m.RecentRate, constants.MaxPlausibleRate, constants.MaxPlausibleRate)
	}
	if m.EquilibriumRate < -constants.MaxPlausibleRate || m.EquilibriumRate > constants.MaxPlausibleRate {
		return fmt.Errorf("equilibrium rate %.2f%% outside [-%.0f, %.0f]", m.EquilibriumRate, constants.MaxPlausibleRate, constants.MaxPlausibleRate)
	}
	return nil
}

// EffectiveRate returns the annual rate applied between year k and year k+1.
// Before TransitionYears it interpolates linearly from RecentRate toward
// EquilibriumRate; from TransitionYears on it is EquilibriumRate.
func (m Model) EffectiveRate(k int) float64 {
	if k < 0 {
		k = 0
	}
	if m.TransitionYears <= 0 || k >= m.TransitionYears {
		return m.EquilibriumRate
	}
	progress := float64(k) / float64(m.TransitionYears)
	return m.RecentRate + (m.EquilibriumRate-m.RecentRate)*progress
}

// Multiplier returns Π_{k=0}^{n-1}(1 + rate(k)/100).
func (m Model) Multiplier(yearOffset int) float64 {
	multiplier := 1.0
	for k := 0; k < yearOffset; k++ {
		multiplier *= 1 + m.EffectiveRate(k)/constants.PercentageMultiplier
	}
	return multiplier
}

// Apply projects the total cost of a given year: the variable part compounds
// with the model while the fixed part stays constant in real terms.
func Apply(baseVariableCost, fixedCost float64, yearOffset int, model Model) float64 {
	return baseVariableCost*model.Multiplier(yearOffset) + fixedCost
}

// DefaultModels returns conservative models used when neither an override
// nor a price history is available.
func DefaultModels() map[EnergyType]Model {
	return map[EnergyType]Model{
		Electricity: {RecentRate: 6.0, EquilibriumRate: 3.0, TransitionYears: constants.TransitionYears},
		NaturalGas:  {RecentRate: 8.0, EquilibriumRate: 3.5, TransitionYears: constants.TransitionYears},
		FuelOil:     {RecentRate: 7.0, EquilibriumRate: 3.5, TransitionYears: constants.TransitionYears},
		LPG:         {RecentRate: 6.0, EquilibriumRate: 3.0, TransitionYears: constants.TransitionYears},
		WoodLogs:    {RecentRate: 4.0, EquilibriumRate: 2.0, TransitionYears: constants.TransitionYears},
		WoodPellets: {RecentRate: 5.0, EquilibriumRate: 2.5, TransitionYears: constants.TransitionYears},
	}
}
