// Package cop adjusts a heat pump's nominal coefficient of performance for
// the water temperature its emitters need and for the local climate.
package cop

import (
	"fmt"
	"strings"

	"github.com/iwvelando/heatpump-forecast/pkg/mathutil"
)

// Emitter is the heat distribution system of the dwelling.
type Emitter string

const (
	FloorHeating       Emitter = "floor_heating"
	LowTempRadiator    Emitter = "low_temp_radiator"
	MediumTempRadiator Emitter = "medium_temp_radiator"
	HighTempRadiator   Emitter = "high_temp_radiator"
	FanCoil            Emitter = "fan_coil"
)

// PumpType is the heat pump technology.
type PumpType string

const (
	AirToWater   PumpType = "air_to_water"
	WaterToWater PumpType = "water_to_water"
	AirToAir     PumpType = "air_to_air"
)

// DefaultEmitter is used whenever the emitter type is not recognized.
const DefaultEmitter = LowTempRadiator

var supplyTemperatures = map[Emitter]float64{
	FloorHeating:       35,
	FanCoil:            40,
	LowTempRadiator:    45,
	MediumTempRadiator: 55,
	HighTempRadiator:   65,
}

// temperatureSteps maps a maximum supply temperature to its degradation factor.
var temperatureSteps = []struct {
	maxTemperature float64
	factor         float64
}{
	{35, 1.00},
	{40, 0.90},
	{45, 0.80},
	{50, 0.72},
	{55, 0.65},
}

const hotWaterFactor = 0.55

// ParseEmitter maps a configuration tag onto an Emitter. Unknown tags are
// returned as-is so that the adjuster applies DefaultEmitter.
func ParseEmitter(tag string) Emitter {
	return Emitter(strings.ToLower(strings.TrimSpace(tag)))
}

// Known reports whether the emitter is one of the supported types.
func (e Emitter) Known() bool {
	_, ok := supplyTemperatures[e]
	return ok
}

// ParsePumpType maps a configuration tag onto a PumpType.
func ParsePumpType(tag string) (PumpType, error) {
	switch pt := PumpType(strings.ToLower(strings.TrimSpace(tag))); pt {
	case AirToWater, WaterToWater, AirToAir:
		return pt, nil
	default:
		return "", fmt.Errorf("unknown heat pump type %q", tag)
	}
}

// Hydronic reports whether the pump heats a water circuit.
func (p PumpType) Hydronic() bool {
	return p != AirToAir
}

// SupplyTemperature returns the water temperature implied by an emitter,
// falling back to DefaultEmitter.
func SupplyTemperature(e Emitter) float64 {
	if temperature, ok := supplyTemperatures[e]; ok {
		return temperature
	}
	return supplyTemperatures[DefaultEmitter]
}

// TemperatureFactor maps a supply temperature to a single degradation factor.
func TemperatureFactor(temperature float64) float64 {
	for _, step := range temperatureSteps {
		if temperature <= step.maxTemperature {
			return step.factor
		}
	}
	return hotWaterFactor
}

// Breakdown explains an adjustment.
type Breakdown struct {
	NominalCOP        float64 `json:"nominalCop"`
	SupplyTemperature float64 `json:"supplyTemperature,omitempty"`
	TemperatureFactor float64 `json:"temperatureFactor"`
	ClimateZone       Zone    `json:"climateZone,omitempty"`
	ClimateFactor     float64 `json:"climateFactor"`
	AdjustedCOP       float64 `json:"adjustedCop"`
}

// Adjust returns the adjusted COP rounded to two decimals. The result is not
// clamped: callers treat values below 1 as a data-quality signal.
func Adjust(nominal float64, emitter Emitter, postalCode string, pump PumpType) float64 {
	return Explain(nominal, emitter, postalCode, pump).AdjustedCOP
}

// Explain performs the adjustment and reports each factor.
func Explain(nominal float64, emitter Emitter, postalCode string, pump PumpType) Breakdown {
	b := Breakdown{NominalCOP: nominal, TemperatureFactor: 1.0}

	if pump.Hydronic() {
		b.SupplyTemperature = SupplyTemperature(emitter)
		b.TemperatureFactor = TemperatureFactor(b.SupplyTemperature)
	}

	b.ClimateZone = ZoneForPostalCode(postalCode)
	b.ClimateFactor = b.ClimateZone.Factor()

	b.AdjustedCOP = mathutil.Round(nominal * b.TemperatureFactor * b.ClimateFactor)
	return b
}
