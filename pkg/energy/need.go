package energy

import (
	"fmt"
	"strings"

	"github.com/iwvelando/heatpump-forecast/pkg/constants"
)

// DomesticHotWater describes hot water produced separately from space
// heating. A nil *DomesticHotWater means hot water is not separate.
type DomesticHotWater struct {
	// DeclaredKWh is the measured annual consumption; 0 means estimate it
	// from Occupants.
	DeclaredKWh float64
	Occupants   int
	// PricePerKWh is the price of the energy currently producing hot water.
	PricePerKWh float64
}

// NeedKWh returns the declared consumption or the per-occupant estimate.
func (d DomesticHotWater) NeedKWh() float64 {
	if d.DeclaredKWh > 0 {
		return d.DeclaredKWh
	}
	return constants.DHWKWhPerOccupant * float64(d.Occupants)
}

// CurrentCost is the annual cost of producing hot water today.
func (d DomesticHotWater) CurrentCost() float64 {
	return d.NeedKWh() * d.PricePerKWh
}

// Validate requires either a declared consumption or occupants, and a price.
func (d DomesticHotWater) Validate() error {
	if d.DeclaredKWh <= 0 && d.Occupants <= 0 {
		return fmt.Errorf("hot water: declared kWh or occupants: %w", ErrMissingRequiredFact)
	}
	if d.PricePerKWh <= 0 {
		return fmt.Errorf("hot water: price per kWh: %w", ErrMissingRequiredFact)
	}
	return nil
}

// DPEClass is the dwelling's energy-performance rating.
type DPEClass string

var dpeMidpoints = map[DPEClass]float64{
	"A": 50,
	"B": 90,
	"C": 150,
	"D": 215,
	"E": 290,
	"F": 375,
	"G": 450,
}

// ParseDPEClass normalizes a rating; the empty string means unknown.
func ParseDPEClass(tag string) (DPEClass, error) {
	class := DPEClass(strings.ToUpper(strings.TrimSpace(tag)))
	if class == "" {
		return "", nil
	}
	if _, ok := dpeMidpoints[class]; !ok {
		return "", fmt.Errorf("unknown DPE class %q", tag)
	}
	return class, nil
}

// DPEConsumption returns the theoretical annual need for a rating and a
// living area in m², using the midpoint of the rating's band.
func DPEConsumption(class DPEClass, area float64) (float64, bool) {
	perSquareMeter, ok := dpeMidpoints[class]
	if !ok || area <= 0 {
		return 0, false
	}
	return perSquareMeter * area, true
}

// BlendNeed averages declared and theoretical needs when both are known and
// returns whichever is available otherwise.
func BlendNeed(declared, theoretical float64) float64 {
	switch {
	case declared > 0 && theoretical > 0:
		return constants.DPEBlendWeight*declared + (1-constants.DPEBlendWeight)*theoretical
	case declared > 0:
		return declared
	case theoretical > 0:
		return theoretical
	default:
		return 0
	}
}
