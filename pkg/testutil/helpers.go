// Package testutil provides common fixtures for tests.
package testutil

import (
	"math"

	"github.com/iwvelando/heatpump-forecast/pkg/cop"
	"github.com/iwvelando/heatpump-forecast/pkg/datetime"
	"github.com/iwvelando/heatpump-forecast/pkg/energy"
	"github.com/iwvelando/heatpump-forecast/pkg/pricehistory"
	"github.com/iwvelando/heatpump-forecast/pkg/projection"
)

// GrowingSeries returns a most-recent-first monthly series ending at newest
// whose yearly level grows by ratePercent, starting from start.
func GrowingSeries(newest string, years int, start, ratePercent float64) pricehistory.Series {
	months := years * 12
	series := make(pricehistory.Series, 0, months)
	for i := 0; i < months; i++ {
		period, err := datetime.OffsetPeriod(newest, -i)
		if err != nil {
			panic(err)
		}
		year := years - 1 - i/12
		series = append(series, pricehistory.Point{
			Period: period,
			Price:  start * math.Pow(1+ratePercent/100, float64(year)),
		})
	}
	return series
}

// GasFacts is a gas-heated house in Lyon replacing its boiler with an
// air-to-water heat pump on low-temperature radiators.
func GasFacts() projection.ProjectFacts {
	return projection.ProjectFacts{
		Current:      energy.NaturalGas{KWh: 18000, PricePerKWh: 0.11},
		CurrentFixed: projection.CurrentFixed{Subscription: 250, Maintenance: 120},
		HeatPump: projection.HeatPump{
			Type:             cop.AirToWater,
			NominalCOP:       4.2,
			Emitter:          cop.LowTempRadiator,
			LifespanYears:    17,
			PowerKW:          8,
			ElectricityPrice: 0.2516,
			Maintenance:      180,
		},
		Housing: projection.Housing{
			PostalCode: "69003",
			DPEClass:   "E",
			LivingArea: 110,
			Occupants:  3,
			MeterKVA:   6,
		},
		InvestmentCost: 13500,
	}
}
