// Package energy describes a household's current heating as typed variants
// and estimates the thermal need and energy costs derived from it.
package energy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
)

var (
	// ErrMissingRequiredFact is returned when a fact needed by a heating
	// variant is absent or not positive.
	ErrMissingRequiredFact = errors.New("missing required fact")

	// ErrUnsupportedHeatingType marks a heating tag no variant handles. It is
	// reported as a warning, never as a failure.
	ErrUnsupportedHeatingType = errors.New("unsupported heating type")
)

// Kind tags a heating variant.
type Kind string

const (
	KindFuelOil     Kind = "fuel_oil"
	KindNaturalGas  Kind = "natural_gas"
	KindLPG         Kind = "lpg"
	KindWoodLogs    Kind = "wood_logs"
	KindWoodPellets Kind = "wood_pellets"
	KindElectric    Kind = "electric"
	KindHeatPump    Kind = "heat_pump"
	KindUnsupported Kind = "unsupported"
)

// Energy contents and appliance efficiencies.
const (
	FuelOilKWhPerLiter = 10.0
	LPGKWhPerKg        = 12.8
	WoodKWhPerStere    = 1800.0
	PelletsKWhPerKg    = 4.6
	FuelOilEfficiency  = 0.85
	GasEfficiency      = 0.90
	LPGEfficiency      = 0.90
	WoodLogsEfficiency = 0.70
	PelletsEfficiency  = 0.85
	ElectricEfficiency = 1.0
)

// CurrentHeating is the heating system being replaced. The set of variants
// is closed: only types in this package implement it.
type CurrentHeating interface {
	Kind() Kind
	// Energy is the carrier whose price evolution applies to VariableCost.
	Energy() evolution.EnergyType
	// VariableCost is the annual energy bill at year 0.
	VariableCost() float64
	// ThermalNeedKWh is the useful heat the system delivers per year.
	ThermalNeedKWh() float64
	Validate() error
	sealed()
}

func missing(kind Kind, field string) error {
	return fmt.Errorf("%s: %s: %w", kind, field, ErrMissingRequiredFact)
}

// FuelOil is a heating-oil boiler.
type FuelOil struct {
	Liters        float64
	PricePerLiter float64
}

func (FuelOil) Kind() Kind                   { return KindFuelOil }
func (FuelOil) Energy() evolution.EnergyType { return evolution.FuelOil }
func (h FuelOil) VariableCost() float64      { return h.Liters * h.PricePerLiter }
func (h FuelOil) ThermalNeedKWh() float64    { return h.Liters * FuelOilKWhPerLiter * FuelOilEfficiency }
func (FuelOil) sealed()                      {}
func (h FuelOil) Validate() error {
	if h.Liters <= 0 {
		return missing(KindFuelOil, "liters")
	}
	if h.PricePerLiter <= 0 {
		return missing(KindFuelOil, "price per liter")
	}
	return nil
}

// NaturalGas is a gas boiler.
type NaturalGas struct {
	KWh         float64
	PricePerKWh float64
}

func (NaturalGas) Kind() Kind                   { return KindNaturalGas }
func (NaturalGas) Energy() evolution.EnergyType { return evolution.NaturalGas }
func (h NaturalGas) VariableCost() float64      { return h.KWh * h.PricePerKWh }
func (h NaturalGas) ThermalNeedKWh() float64    { return h.KWh * GasEfficiency }
func (NaturalGas) sealed()                      {}
func (h NaturalGas) Validate() error {
	if h.KWh <= 0 {
		return missing(KindNaturalGas, "kWh")
	}
	if h.PricePerKWh <= 0 {
		return missing(KindNaturalGas, "price per kWh")
	}
	return nil
}

// LPG is a propane boiler.
type LPG struct {
	Kilograms  float64
	PricePerKg float64
}

func (LPG) Kind() Kind                   { return KindLPG }
func (LPG) Energy() evolution.EnergyType { return evolution.LPG }
func (h LPG) VariableCost() float64      { return h.Kilograms * h.PricePerKg }
func (h LPG) ThermalNeedKWh() float64    { return h.Kilograms * LPGKWhPerKg * LPGEfficiency }
func (LPG) sealed()                      {}
func (h LPG) Validate() error {
	if h.Kilograms <= 0 {
		return missing(KindLPG, "kilograms")
	}
	if h.PricePerKg <= 0 {
		return missing(KindLPG, "price per kg")
	}
	return nil
}

// WoodLogs is a log stove or boiler; quantities are in stères.
type WoodLogs struct {
	Steres        float64
	PricePerStere float64
}

func (WoodLogs) Kind() Kind                   { return KindWoodLogs }
func (WoodLogs) Energy() evolution.EnergyType { return evolution.WoodLogs }
func (h WoodLogs) VariableCost() float64      { return h.Steres * h.PricePerStere }
func (h WoodLogs) ThermalNeedKWh() float64    { return h.Steres * WoodKWhPerStere * WoodLogsEfficiency }
func (WoodLogs) sealed()                      {}
func (h WoodLogs) Validate() error {
	if h.Steres <= 0 {
		return missing(KindWoodLogs, "steres")
	}
	if h.PricePerStere <= 0 {
		return missing(KindWoodLogs, "price per stere")
	}
	return nil
}

// WoodPellets is a pellet stove or boiler.
type WoodPellets struct {
	Kilograms  float64
	PricePerKg float64
}

func (WoodPellets) Kind() Kind                   { return KindWoodPellets }
func (WoodPellets) Energy() evolution.EnergyType { return evolution.WoodPellets }
func (h WoodPellets) VariableCost() float64      { return h.Kilograms * h.PricePerKg }
func (h WoodPellets) ThermalNeedKWh() float64 {
	return h.Kilograms * PelletsKWhPerKg * PelletsEfficiency
}
func (WoodPellets) sealed() {}
func (h WoodPellets) Validate() error {
	if h.Kilograms <= 0 {
		return missing(KindWoodPellets, "kilograms")
	}
	if h.PricePerKg <= 0 {
		return missing(KindWoodPellets, "price per kg")
	}
	return nil
}

// Electric is direct electric heating (convectors, radiant panels).
type Electric struct {
	KWh         float64
	PricePerKWh float64
}

func (Electric) Kind() Kind                   { return KindElectric }
func (Electric) Energy() evolution.EnergyType { return evolution.Electricity }
func (h Electric) VariableCost() float64      { return h.KWh * h.PricePerKWh }
func (h Electric) ThermalNeedKWh() float64    { return h.KWh * ElectricEfficiency }
func (Electric) sealed()                      {}
func (h Electric) Validate() error {
	if h.KWh <= 0 {
		return missing(KindElectric, "kWh")
	}
	if h.PricePerKWh <= 0 {
		return missing(KindElectric, "price per kWh")
	}
	return nil
}

// ExistingHeatPump is an older heat pump; its electricity use times its own
// COP recovers the thermal need.
type ExistingHeatPump struct {
	KWh         float64
	PricePerKWh float64
	COP         float64
}

func (ExistingHeatPump) Kind() Kind                   { return KindHeatPump }
func (ExistingHeatPump) Energy() evolution.EnergyType { return evolution.Electricity }
func (h ExistingHeatPump) VariableCost() float64      { return h.KWh * h.PricePerKWh }
func (h ExistingHeatPump) ThermalNeedKWh() float64    { return h.KWh * h.COP }
func (ExistingHeatPump) sealed()                      {}
func (h ExistingHeatPump) Validate() error {
	if h.KWh <= 0 {
		return missing(KindHeatPump, "kWh")
	}
	if h.PricePerKWh <= 0 {
		return missing(KindHeatPump, "price per kWh")
	}
	if h.COP <= 0 {
		return missing(KindHeatPump, "COP")
	}
	return nil
}

// Unsupported carries a heating tag no variant recognizes. It consumes
// nothing so the projection degrades instead of failing.
type Unsupported struct {
	Tag string
}

func (Unsupported) Kind() Kind                   { return KindUnsupported }
func (Unsupported) Energy() evolution.EnergyType { return "" }
func (Unsupported) VariableCost() float64        { return 0 }
func (Unsupported) ThermalNeedKWh() float64      { return 0 }
func (Unsupported) sealed()                      {}
func (Unsupported) Validate() error              { return nil }

// Warning describes why the variant degraded.
func (u Unsupported) Warning() error {
	return fmt.Errorf("%q: %w", u.Tag, ErrUnsupportedHeatingType)
}

var kindAliases = map[string]Kind{
	"fuel_oil":     KindFuelOil,
	"fioul":        KindFuelOil,
	"oil":          KindFuelOil,
	"natural_gas":  KindNaturalGas,
	"gas":          KindNaturalGas,
	"gaz":          KindNaturalGas,
	"lpg":          KindLPG,
	"propane":      KindLPG,
	"wood_logs":    KindWoodLogs,
	"wood":         KindWoodLogs,
	"bois":         KindWoodLogs,
	"wood_pellets": KindWoodPellets,
	"pellets":      KindWoodPellets,
	"granules":     KindWoodPellets,
	"electric":     KindElectric,
	"electricity":  KindElectric,
	"electricite":  KindElectric,
	"heat_pump":    KindHeatPump,
	"pac":          KindHeatPump,
}

// ParseKind resolves a configuration tag, including French aliases.
func ParseKind(tag string) (Kind, bool) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(tag))]
	return kind, ok
}

// NewCurrentHeating builds the variant for a tag. Quantity is expressed in
// the variant's natural unit (liters, kWh, kg or stères) and cop is only
// read for an existing heat pump. Unknown tags yield Unsupported.
func NewCurrentHeating(tag string, quantity, unitPrice, cop float64) CurrentHeating {
	kind, ok := ParseKind(tag)
	if !ok {
		return Unsupported{Tag: tag}
	}
	switch kind {
	case KindFuelOil:
		return FuelOil{Liters: quantity, PricePerLiter: unitPrice}
	case KindNaturalGas:
		return NaturalGas{KWh: quantity, PricePerKWh: unitPrice}
	case KindLPG:
		return LPG{Kilograms: quantity, PricePerKg: unitPrice}
	case KindWoodLogs:
		return WoodLogs{Steres: quantity, PricePerStere: unitPrice}
	case KindWoodPellets:
		return WoodPellets{Kilograms: quantity, PricePerKg: unitPrice}
	case KindElectric:
		return Electric{KWh: quantity, PricePerKWh: unitPrice}
	case KindHeatPump:
		return ExistingHeatPump{KWh: quantity, PricePerKWh: unitPrice, COP: cop}
	default:
		return Unsupported{Tag: tag}
	}
}
