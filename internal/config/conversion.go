// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"
	"sort"

	"github.com/iwvelando/heatpump-forecast/pkg/aid"
	"github.com/iwvelando/heatpump-forecast/pkg/cop"
	"github.com/iwvelando/heatpump-forecast/pkg/energy"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/iwvelando/heatpump-forecast/pkg/loans"
	"github.com/iwvelando/heatpump-forecast/pkg/projection"
	"github.com/iwvelando/heatpump-forecast/pkg/validation"
)

// ToModel converts a configured model.
func (m ModelConfig) ToModel() evolution.Model {
	return evolution.Model{
		RecentRate:      m.RecentRate,
		EquilibriumRate: m.EquilibriumRate,
		TransitionYears: m.TransitionYears,
	}
}

// ModelOverrides returns the explicit models keyed by energy type.
func (e EvolutionConfig) ModelOverrides() (map[evolution.EnergyType]evolution.Model, error) {
	overrides := make(map[evolution.EnergyType]evolution.Model, len(e.Models))
	for name, model := range e.Models {
		energy, err := evolution.ParseEnergyType(name)
		if err != nil {
			return nil, fmt.Errorf("evolution model %q: %w", name, err)
		}
		overrides[energy] = model.ToModel()
	}
	return overrides, nil
}

// ToTerms converts financing settings to loan terms.
func (f *FinancingConfig) ToTerms() *loans.Terms {
	if f == nil {
		return nil
	}
	return &loans.Terms{
		Principal:   f.Principal,
		DownPayment: f.DownPayment,
		AnnualRate:  f.AnnualRate,
		TermMonths:  f.TermMonths,
	}
}

// ToProjectFacts converts the project section into engine facts. The aid
// amount is taken from the configuration when set and left at zero
// otherwise.
func (p ProjectConfig) ToProjectFacts() (projection.ProjectFacts, error) {
	pumpType, err := cop.ParsePumpType(p.HeatPump.Type)
	if err != nil {
		return projection.ProjectFacts{}, err
	}
	dpeClass, err := energy.ParseDPEClass(p.Housing.DPEClass)
	if err != nil {
		return projection.ProjectFacts{}, err
	}

	current := p.CurrentHeating
	facts := projection.ProjectFacts{
		Current: energy.NewCurrentHeating(current.Type, current.Quantity, current.UnitPrice, current.COP),
		CurrentFixed: projection.CurrentFixed{
			Subscription: current.Subscription,
			Maintenance:  current.Maintenance,
		},
		HeatPump: projection.HeatPump{
			Type:             pumpType,
			NominalCOP:       p.HeatPump.NominalCOP,
			Emitter:          cop.ParseEmitter(p.HeatPump.Emitter),
			LifespanYears:    p.HeatPump.LifespanYears,
			PowerKW:          p.HeatPump.PowerKW,
			ElectricityPrice: p.HeatPump.ElectricityPrice,
			Subscription:     p.HeatPump.Subscription,
			Maintenance:      p.HeatPump.Maintenance,
		},
		Housing: projection.Housing{
			PostalCode: p.Housing.PostalCode,
			DPEClass:   dpeClass,
			LivingArea: p.Housing.LivingArea,
			Occupants:  p.Housing.Occupants,
			MeterKVA:   p.Housing.MeterKVA,
		},
		InvestmentCost: p.Investment.Cost,
		Financing:      p.Financing.ToTerms(),
	}

	if p.HotWater != nil {
		occupants := p.HotWater.Occupants
		if occupants == 0 {
			occupants = p.Housing.Occupants
		}
		facts.HotWater = &energy.DomesticHotWater{
			DeclaredKWh: p.HotWater.DeclaredKWh,
			Occupants:   occupants,
			PricePerKWh: p.HotWater.PricePerKWh,
		}
	}

	if p.Investment.Aid != nil {
		facts.AidAmount = *p.Investment.Aid
	}

	return facts, nil
}

// ToHousehold returns the CEE inputs, or false when no household section
// is configured.
func (p ProjectConfig) ToHousehold() (aid.Household, bool) {
	if p.Household == nil {
		return aid.Household{}, false
	}
	pumpType, err := cop.ParsePumpType(p.HeatPump.Type)
	if err != nil {
		// aid.Evaluate reports the unknown type.
		pumpType = cop.PumpType(p.HeatPump.Type)
	}
	return aid.Household{
		ReferenceIncome:      p.Household.ReferenceIncome,
		Size:                 p.Household.Size,
		PostalCode:           p.Housing.PostalCode,
		PumpType:             pumpType,
		FullReplacement:      p.Household.FullReplacement,
		DwellingOverTwoYears: p.Household.DwellingOverTwoYears,
	}, true
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	overrides, err := c.Evolution.ModelOverrides()
	if err != nil {
		warnings = append(warnings, err.Error())
	}

	if _, known := energy.ParseKind(c.Project.CurrentHeating.Type); !known {
		warnings = append(warnings, fmt.Sprintf("Current heating type %q is not supported - its consumption is ignored",
			c.Project.CurrentHeating.Type))
	}
	emitter := cop.ParseEmitter(c.Project.HeatPump.Emitter)
	if !emitter.Known() {
		warnings = append(warnings, fmt.Sprintf("Emitter %q is not recognized - %s is assumed",
			c.Project.HeatPump.Emitter, cop.DefaultEmitter))
	}

	pumpType, _ := cop.ParsePumpType(c.Project.HeatPump.Type)
	validator := validation.ProjectValidator{
		LifespanYears:  c.Project.HeatPump.LifespanYears,
		NominalCOP:     c.Project.HeatPump.NominalCOP,
		AdjustedCOP:    cop.Adjust(c.Project.HeatPump.NominalCOP, emitter, c.Project.Housing.PostalCode, pumpType),
		InvestmentCost: c.Project.Investment.Cost,
		Financing:      c.Project.Financing.ToTerms(),
		Models:         overrides,
	}
	if c.Project.Investment.Aid != nil {
		validator.AidAmount = *c.Project.Investment.Aid
	}
	warnings = append(warnings, validator.ValidateAll()...)

	return warnings
}

// EnergyTypes returns the energy types a projection of this configuration
// needs models for, sorted.
func (c *Configuration) EnergyTypes() []evolution.EnergyType {
	types := map[evolution.EnergyType]struct{}{evolution.Electricity: {}}
	current := energy.NewCurrentHeating(c.Project.CurrentHeating.Type, 0, 0, 0)
	if e := current.Energy(); e != "" {
		types[e] = struct{}{}
	}

	result := make([]evolution.EnergyType, 0, len(types))
	for e := range types {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
