// Package projection compares the yearly cost of the current heating system
// with the cost of a heat pump over the pump's lifespan.
package projection

import (
	"fmt"

	"github.com/iwvelando/heatpump-forecast/pkg/cop"
	"github.com/iwvelando/heatpump-forecast/pkg/datetime"
	"github.com/iwvelando/heatpump-forecast/pkg/energy"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/iwvelando/heatpump-forecast/pkg/loans"
	"github.com/iwvelando/heatpump-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// ErrMissingRequiredFact is returned when ProjectFacts lacks a value the
// projection cannot do without.
var ErrMissingRequiredFact = energy.ErrMissingRequiredFact

// CurrentFixed are the yearly costs of the current system that do not
// depend on consumption.
type CurrentFixed struct {
	Subscription float64 `json:"subscription"`
	Maintenance  float64 `json:"maintenance"`
}

// HeatPump describes the proposed installation.
type HeatPump struct {
	Type             cop.PumpType `json:"type"`
	NominalCOP       float64      `json:"nominalCop"`
	Emitter          cop.Emitter  `json:"emitter"`
	LifespanYears    int          `json:"lifespanYears"`
	PowerKW          float64      `json:"powerKw,omitempty"`
	ElectricityPrice float64      `json:"electricityPrice"`
	// Subscription overrides the extra subscription cost derived from the
	// pump's power when set.
	Subscription *float64 `json:"subscription,omitempty"`
	Maintenance  float64  `json:"maintenance"`
}

// Housing describes the dwelling.
type Housing struct {
	PostalCode string          `json:"postalCode,omitempty"`
	DPEClass   energy.DPEClass `json:"dpeClass,omitempty"`
	LivingArea float64         `json:"livingArea,omitempty"`
	Occupants  int             `json:"occupants,omitempty"`
	MeterKVA   float64         `json:"meterKva,omitempty"`
}

// ProjectFacts is everything known about a household and its project.
type ProjectFacts struct {
	Current      energy.CurrentHeating    `json:"-"`
	CurrentFixed CurrentFixed             `json:"currentFixed"`
	HeatPump     HeatPump                 `json:"heatPump"`
	Housing      Housing                  `json:"housing"`
	HotWater     *energy.DomesticHotWater `json:"hotWater,omitempty"`

	InvestmentCost float64      `json:"investmentCost"`
	AidAmount      float64      `json:"aidAmount"`
	Financing      *loans.Terms `json:"financing,omitempty"`
}

// Validate checks the facts every projection needs.
func (f ProjectFacts) Validate() error {
	if f.Current == nil {
		return fmt.Errorf("current heating: %w", ErrMissingRequiredFact)
	}
	if err := f.Current.Validate(); err != nil {
		return err
	}
	if f.HeatPump.LifespanYears <= 0 {
		return fmt.Errorf("heat pump lifespan: %w", ErrMissingRequiredFact)
	}
	if f.HeatPump.NominalCOP <= 0 {
		return fmt.Errorf("heat pump nominal COP: %w", ErrMissingRequiredFact)
	}
	if f.HeatPump.ElectricityPrice <= 0 {
		return fmt.Errorf("heat pump electricity price: %w", ErrMissingRequiredFact)
	}
	if f.HotWater != nil {
		if err := f.HotWater.Validate(); err != nil {
			return err
		}
	}
	if f.Financing != nil {
		if err := f.Financing.Validate(); err != nil {
			return fmt.Errorf("financing: %w", err)
		}
	}
	return nil
}

// Models holds the evolution models applied to each side.
type Models struct {
	Current  evolution.Model `json:"current"`
	HeatPump evolution.Model `json:"heatPump"`
}

// SelectModels picks the model of the current energy and the electricity
// model. An energy without a model keeps constant prices.
func SelectModels(available map[evolution.EnergyType]evolution.Model, current energy.CurrentHeating) Models {
	var models Models
	if current != nil {
		models.Current = available[current.Energy()]
	}
	models.HeatPump = available[evolution.Electricity]
	return models
}

// YearlyCostEntry is one year of the comparison.
type YearlyCostEntry struct {
	Year              int     `json:"year"`
	CurrentCost       float64 `json:"currentCost"`
	HeatPumpCost      float64 `json:"heatPumpCost"`
	Savings           float64 `json:"savings"`
	CumulativeSavings float64 `json:"cumulativeSavings"`
}

// Baseline holds the year-0 quantities the series is built from.
type Baseline struct {
	DeclaredNeedKWh      float64       `json:"declaredNeedKwh"`
	DPENeedKWh           float64       `json:"dpeNeedKwh,omitempty"`
	ThermalNeedKWh       float64       `json:"thermalNeedKwh"`
	COP                  cop.Breakdown `json:"cop"`
	CurrentVariableCost  float64       `json:"currentVariableCost"`
	CurrentFixedCost     float64       `json:"currentFixedCost"`
	HeatPumpVariableCost float64       `json:"heatPumpVariableCost"`
	HeatPumpFixedCost    float64       `json:"heatPumpFixedCost"`
}

// Projection is the output of Project.
type Projection struct {
	Baseline Baseline          `json:"baseline"`
	Series   []YearlyCostEntry `json:"series"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Projector builds projections. StartYear labels year offset 0.
type Projector struct {
	logger    *zap.Logger
	StartYear int
}

// NewProjector returns a projector anchored on startYear, or on the current
// calendar year when startYear is 0.
func NewProjector(logger *zap.Logger, startYear int) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if startYear == 0 {
		startYear = datetime.CurrentYear()
	}
	return &Projector{logger: logger, StartYear: startYear}
}

// Project produces the yearly series over the heat pump's lifespan.
func (p *Projector) Project(facts ProjectFacts, models Models) (Projection, error) {
	if err := facts.Validate(); err != nil {
		return Projection{}, err
	}
	if err := models.Current.Validate(); err != nil {
		return Projection{}, fmt.Errorf("current energy model: %w", err)
	}
	if err := models.HeatPump.Validate(); err != nil {
		return Projection{}, fmt.Errorf("heat pump energy model: %w", err)
	}

	var projection Projection

	if unsupported, ok := facts.Current.(energy.Unsupported); ok {
		warning := unsupported.Warning()
		p.logger.Warn("current heating type is not supported, assuming zero consumption",
			zap.String("op", "projection.Project"),
			zap.Error(warning),
		)
		projection.Warnings = append(projection.Warnings, warning.Error())
	}
	if facts.HeatPump.Type.Hydronic() && !facts.HeatPump.Emitter.Known() {
		projection.Warnings = append(projection.Warnings,
			fmt.Sprintf("unknown emitter %q, using %s", facts.HeatPump.Emitter, cop.DefaultEmitter))
	}

	baseline := p.baseline(facts)
	if baseline.COP.AdjustedCOP <= 0 {
		return Projection{}, fmt.Errorf("adjusted COP is %.2f: %w", baseline.COP.AdjustedCOP, ErrMissingRequiredFact)
	}
	if baseline.COP.AdjustedCOP < 1 {
		projection.Warnings = append(projection.Warnings,
			fmt.Sprintf("adjusted COP %.2f is below 1", baseline.COP.AdjustedCOP))
	}
	projection.Baseline = baseline

	projection.Series = p.series(baseline, facts.HeatPump.LifespanYears, models)

	p.logger.Debug(fmt.Sprintf("projected %d years from %d", len(projection.Series), p.StartYear),
		zap.String("op", "projection.Project"),
	)
	return projection, nil
}

func (p *Projector) baseline(facts ProjectFacts) Baseline {
	var b Baseline

	need := facts.Current.ThermalNeedKWh()
	currentVariable := facts.Current.VariableCost()
	if facts.HotWater != nil {
		need += facts.HotWater.NeedKWh()
		currentVariable += facts.HotWater.CurrentCost()
	}
	b.DeclaredNeedKWh = need

	if theoretical, ok := energy.DPEConsumption(facts.Housing.DPEClass, facts.Housing.LivingArea); ok && need > 0 {
		b.DPENeedKWh = theoretical
		blended := energy.BlendNeed(need, theoretical)
		// Both sides describe the same need.
		currentVariable *= blended / need
		need = blended
	}
	b.ThermalNeedKWh = need

	hp := facts.HeatPump
	b.COP = cop.Explain(hp.NominalCOP, hp.Emitter, facts.Housing.PostalCode, hp.Type)

	b.CurrentVariableCost = currentVariable
	b.CurrentFixedCost = facts.CurrentFixed.Subscription + facts.CurrentFixed.Maintenance
	if b.COP.AdjustedCOP > 0 {
		b.HeatPumpVariableCost = need / b.COP.AdjustedCOP * hp.ElectricityPrice
	}

	subscription := energy.SubscriptionDelta(facts.Housing.MeterKVA, hp.PowerKW, hp.NominalCOP)
	if hp.Subscription != nil {
		subscription = *hp.Subscription
	}
	b.HeatPumpFixedCost = subscription + hp.Maintenance
	return b
}

func (p *Projector) series(b Baseline, years int, models Models) []YearlyCostEntry {
	entries := make([]YearlyCostEntry, years)
	cumulative := 0.0
	for n := range entries {
		current := mathutil.Round(evolution.Apply(b.CurrentVariableCost, b.CurrentFixedCost, n, models.Current))
		heatPump := mathutil.Round(evolution.Apply(b.HeatPumpVariableCost, b.HeatPumpFixedCost, n, models.HeatPump))
		savings := mathutil.Round(current - heatPump)
		cumulative = mathutil.Round(cumulative + savings)
		entries[n] = YearlyCostEntry{
			Year:              p.StartYear + n,
			CurrentCost:       current,
			HeatPumpCost:      heatPump,
			Savings:           savings,
			CumulativeSavings: cumulative,
		}
	}
	return entries
}
