package projection

import (
	"testing"

	"github.com/iwvelando/heatpump-forecast/pkg/cop"
	"github.com/iwvelando/heatpump-forecast/pkg/energy"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func gasFacts() ProjectFacts {
	return ProjectFacts{
		Current:      energy.NaturalGas{KWh: 15000, PricePerKWh: 0.10},
		CurrentFixed: CurrentFixed{Subscription: 120, Maintenance: 100},
		HeatPump: HeatPump{
			Type:             cop.AirToWater,
			NominalCOP:       4.0,
			Emitter:          cop.FloorHeating,
			LifespanYears:    3,
			ElectricityPrice: 0.20,
			Subscription:     ptr(0),
			Maintenance:      150,
		},
		InvestmentCost: 12000,
	}
}

func TestProjectFlatPrices(t *testing.T) {
	projection, err := NewProjector(nil, 2025).Project(gasFacts(), Models{})
	require.NoError(t, err)

	assert.InDelta(t, 13500, projection.Baseline.ThermalNeedKWh, 1e-9)
	assert.InDelta(t, 4.0, projection.Baseline.COP.AdjustedCOP, 1e-9)
	assert.InDelta(t, 675, projection.Baseline.HeatPumpVariableCost, 1e-9)

	expected := []YearlyCostEntry{
		{Year: 2025, CurrentCost: 1720, HeatPumpCost: 825, Savings: 895, CumulativeSavings: 895},
		{Year: 2026, CurrentCost: 1720, HeatPumpCost: 825, Savings: 895, CumulativeSavings: 1790},
		{Year: 2027, CurrentCost: 1720, HeatPumpCost: 825, Savings: 895, CumulativeSavings: 2685},
	}
	assert.Equal(t, expected, projection.Series)
	assert.Empty(t, projection.Warnings)
}

func TestProjectYearZeroHasNoEscalation(t *testing.T) {
	models := Models{
		Current:  evolution.Model{RecentRate: 8.7, EquilibriumRate: 3.5, TransitionYears: 5},
		HeatPump: evolution.Model{RecentRate: 6, EquilibriumRate: 3, TransitionYears: 5},
	}
	facts := gasFacts()
	facts.HeatPump.LifespanYears = 15

	projection, err := NewProjector(nil, 2025).Project(facts, models)
	require.NoError(t, err)
	require.Len(t, projection.Series, 15)

	assert.Equal(t, 1720.0, projection.Series[0].CurrentCost)
	assert.Equal(t, 825.0, projection.Series[0].HeatPumpCost)
	assert.InDelta(t, 1500*1.087+220, projection.Series[1].CurrentCost, 0.005)
	assert.InDelta(t, 675*1.06+150, projection.Series[1].HeatPumpCost, 0.005)

	for i := 1; i < len(projection.Series); i++ {
		prev, entry := projection.Series[i-1], projection.Series[i]
		assert.InDelta(t, prev.CumulativeSavings+entry.Savings, entry.CumulativeSavings, 0.005)
		assert.Greater(t, entry.CurrentCost, prev.CurrentCost)
	}
}

func TestProjectIsDeterministic(t *testing.T) {
	models := Models{Current: evolution.Model{RecentRate: 5, EquilibriumRate: 2, TransitionYears: 5}}
	projector := NewProjector(nil, 2030)
	first, err := projector.Project(gasFacts(), models)
	require.NoError(t, err)
	second, err := projector.Project(gasFacts(), models)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProjectDPEBlendScalesBothSides(t *testing.T) {
	facts := gasFacts()
	facts.Housing = Housing{DPEClass: "D", LivingArea: 100}

	projection, err := NewProjector(nil, 2025).Project(facts, Models{})
	require.NoError(t, err)

	b := projection.Baseline
	assert.InDelta(t, 13500, b.DeclaredNeedKWh, 1e-9)
	assert.InDelta(t, 21500, b.DPENeedKWh, 1e-9)
	assert.InDelta(t, 17500, b.ThermalNeedKWh, 1e-9)
	assert.InDelta(t, 1500*17500.0/13500.0, b.CurrentVariableCost, 1e-9)
	assert.InDelta(t, 875, b.HeatPumpVariableCost, 1e-9)
}

func TestProjectAddsHotWaterToBothSides(t *testing.T) {
	facts := gasFacts()
	facts.HotWater = &energy.DomesticHotWater{Occupants: 2, PricePerKWh: 0.10}

	projection, err := NewProjector(nil, 2025).Project(facts, Models{})
	require.NoError(t, err)

	assert.InDelta(t, 15100, projection.Baseline.ThermalNeedKWh, 1e-9)
	assert.InDelta(t, 1660, projection.Baseline.CurrentVariableCost, 1e-9)
	assert.InDelta(t, 755, projection.Baseline.HeatPumpVariableCost, 1e-9)
}

func TestProjectDerivesSubscriptionFromPower(t *testing.T) {
	facts := gasFacts()
	facts.HeatPump.Subscription = nil
	facts.HeatPump.PowerKW = 9
	facts.Housing.MeterKVA = 6

	projection, err := NewProjector(nil, 2025).Project(facts, Models{})
	require.NoError(t, err)
	assert.InDelta(t, 40.20+150, projection.Baseline.HeatPumpFixedCost, 1e-9)
}

func TestProjectUnsupportedHeatingDegrades(t *testing.T) {
	facts := gasFacts()
	facts.Current = energy.NewCurrentHeating("coal", 3, 400, 0)

	projection, err := NewProjector(nil, 2025).Project(facts, Models{})
	require.NoError(t, err)

	require.Len(t, projection.Warnings, 1)
	assert.Contains(t, projection.Warnings[0], "unsupported heating type")
	assert.Equal(t, 220.0, projection.Series[0].CurrentCost)
	assert.Equal(t, 150.0, projection.Series[0].HeatPumpCost)
}

func TestProjectWarnsOnUnknownEmitterAndLowCOP(t *testing.T) {
	facts := gasFacts()
	facts.HeatPump.Emitter = "cast_iron"
	facts.HeatPump.NominalCOP = 1.1

	projection, err := NewProjector(nil, 2025).Project(facts, Models{})
	require.NoError(t, err)
	// 1.1 × 0.8 = 0.88
	assert.InDelta(t, 0.88, projection.Baseline.COP.AdjustedCOP, 1e-9)
	assert.Len(t, projection.Warnings, 2)
}

func TestProjectMissingFacts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProjectFacts)
	}{
		{"no current heating", func(f *ProjectFacts) { f.Current = nil }},
		{"no consumption", func(f *ProjectFacts) { f.Current = energy.NaturalGas{PricePerKWh: 0.1} }},
		{"no lifespan", func(f *ProjectFacts) { f.HeatPump.LifespanYears = 0 }},
		{"no nominal COP", func(f *ProjectFacts) { f.HeatPump.NominalCOP = 0 }},
		{"no electricity price", func(f *ProjectFacts) { f.HeatPump.ElectricityPrice = 0 }},
		{"incomplete hot water", func(f *ProjectFacts) { f.HotWater = &energy.DomesticHotWater{Occupants: 2} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := gasFacts()
			tt.mutate(&facts)
			_, err := NewProjector(nil, 2025).Project(facts, Models{})
			assert.ErrorIs(t, err, ErrMissingRequiredFact)
		})
	}
}

func TestProjectRejectsInvalidModel(t *testing.T) {
	_, err := NewProjector(nil, 2025).Project(gasFacts(), Models{Current: evolution.Model{TransitionYears: -1}})
	assert.Error(t, err)
}

func TestSelectModels(t *testing.T) {
	available := evolution.DefaultModels()

	models := SelectModels(available, energy.FuelOil{Liters: 1000, PricePerLiter: 1.2})
	assert.Equal(t, available[evolution.FuelOil], models.Current)
	assert.Equal(t, available[evolution.Electricity], models.HeatPump)

	models = SelectModels(available, energy.Unsupported{Tag: "coal"})
	assert.Equal(t, evolution.Model{}, models.Current)
}

func TestNewProjectorDefaultsToCurrentYear(t *testing.T) {
	projector := NewProjector(nil, 0)
	assert.Positive(t, projector.StartYear)
}
