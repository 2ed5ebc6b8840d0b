// Package aid determines a household's CEE (energy-saving certificate)
// bonus for a heat pump installation.
package aid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/heatpump-forecast/pkg/cop"
	"github.com/iwvelando/heatpump-forecast/pkg/format"
)

// ErrMissingRequiredFact is returned when the household facts cannot be
// classified.
var ErrMissingRequiredFact = errors.New("missing required fact")

// Category is the household's income category.
type Category string

const (
	Precaire    Category = "precaire"
	Modeste     Category = "modeste"
	Classique   Category = "classique"
	NonEligible Category = "non-eligible"
)

// Region selects the income threshold table.
type Region string

const (
	ParisRegion Region = "ile_de_france"
	OtherRegion Region = "other"
)

// Ineligibility reasons that do not depend on the household category.
const (
	ReasonFullReplacement = "full replacement required"
	ReasonDwellingAge     = "minimum dwelling age not met"
)

// Household is the input of Evaluate.
type Household struct {
	ReferenceIncome      float64      `json:"referenceIncome" mapstructure:"referenceIncome"`
	Size                 int          `json:"size" mapstructure:"size"`
	PostalCode           string       `json:"postalCode" mapstructure:"postalCode"`
	PumpType             cop.PumpType `json:"pumpType" mapstructure:"pumpType"`
	FullReplacement      bool         `json:"fullReplacement" mapstructure:"fullReplacement"`
	DwellingOverTwoYears bool         `json:"dwellingOverTwoYears" mapstructure:"dwellingOverTwoYears"`
}

// Validate checks the facts needed to classify the household.
func (h Household) Validate() error {
	_, err := h.normalize()
	return err
}

// normalize validates the household and returns it with a canonical pump
// type.
func (h Household) normalize() (Household, error) {
	if h.Size < 1 {
		return h, fmt.Errorf("household size must be at least 1: %w", ErrMissingRequiredFact)
	}
	if h.ReferenceIncome < 0 {
		return h, fmt.Errorf("reference income must not be negative: %w", ErrMissingRequiredFact)
	}
	pump, err := cop.ParsePumpType(string(h.PumpType))
	if err != nil {
		return h, fmt.Errorf("%v: %w", err, ErrMissingRequiredFact)
	}
	h.PumpType = pump
	return h, nil
}

// Result is the outcome of an evaluation. Category is NonEligible whenever
// Eligible is false. Reasons holds the ineligibility reason, or the
// breakdown supporting an eligible amount.
type Result struct {
	Eligible bool     `json:"eligible"`
	Category Category `json:"category"`
	Amount   float64  `json:"amount"`
	Region   Region   `json:"region,omitempty"`
	Reasons  []string `json:"reasons"`
}

func ineligible(region Region, reason string) Result {
	return Result{Category: NonEligible, Region: region, Reasons: []string{reason}}
}

// thresholds holds the precaire and modeste ceilings for household sizes 1
// to 5 and the increment per additional person.
type thresholds struct {
	precaire      [5]float64
	modeste       [5]float64
	extraPrecaire float64
	extraModeste  float64
}

var incomeThresholds = map[Region]thresholds{
	ParisRegion: {
		precaire:      [5]float64{23768, 34884, 41893, 48914, 55961},
		modeste:       [5]float64{28933, 42463, 51000, 59549, 68123},
		extraPrecaire: 7038,
		extraModeste:  8568,
	},
	OtherRegion: {
		precaire:      [5]float64{17173, 25115, 30206, 35285, 40388},
		modeste:       [5]float64{22015, 32197, 38719, 45234, 51775},
		extraPrecaire: 5094,
		extraModeste:  6525,
	},
}

var amounts = map[cop.PumpType]map[Category]float64{
	cop.AirToWater:   {Precaire: 5000, Modeste: 4000, Classique: 2500},
	cop.WaterToWater: {Precaire: 11000, Modeste: 11000, Classique: 5000},
	cop.AirToAir:     {Precaire: 900, Modeste: 700, Classique: 0},
}

var parisDepartments = map[string]struct{}{
	"75": {}, "77": {}, "78": {}, "91": {}, "92": {}, "93": {}, "94": {}, "95": {},
}

// RegionForPostalCode returns ParisRegion for Île-de-France departments.
func RegionForPostalCode(postalCode string) Region {
	department, ok := cop.Department(postalCode)
	if !ok {
		return OtherRegion
	}
	if _, paris := parisDepartments[department]; paris {
		return ParisRegion
	}
	return OtherRegion
}

// Thresholds returns the precaire and modeste income ceilings for a
// household size, extrapolating linearly beyond five people.
func Thresholds(region Region, size int) (precaire, modeste float64) {
	table := incomeThresholds[region]
	if size < 1 {
		size = 1
	}
	if size <= len(table.precaire) {
		return table.precaire[size-1], table.modeste[size-1]
	}
	extra := float64(size - len(table.precaire))
	last := len(table.precaire) - 1
	return table.precaire[last] + extra*table.extraPrecaire, table.modeste[last] + extra*table.extraModeste
}

// Classify places an income in a category. Ceilings are inclusive.
func Classify(income float64, size int, region Region) Category {
	precaire, modeste := Thresholds(region, size)
	switch {
	case income <= precaire:
		return Precaire
	case income <= modeste:
		return Modeste
	default:
		return Classique
	}
}

// Amount returns the flat bonus for a category and pump type.
func Amount(category Category, pump cop.PumpType) float64 {
	return amounts[pump][category]
}

// Evaluate runs the eligibility decision list; the first matching rule wins.
func Evaluate(h Household) (Result, error) {
	h, err := h.normalize()
	if err != nil {
		return Result{}, err
	}

	if !h.FullReplacement {
		return ineligible("", ReasonFullReplacement), nil
	}
	if !h.DwellingOverTwoYears {
		return ineligible("", ReasonDwellingAge), nil
	}

	region := RegionForPostalCode(h.PostalCode)
	category := Classify(h.ReferenceIncome, h.Size, region)
	amount := Amount(category, h.PumpType)
	if amount == 0 {
		return ineligible(region, fmt.Sprintf("no CEE bonus for %s households with an %s heat pump",
			category, strings.ReplaceAll(string(h.PumpType), "_", "-"))), nil
	}

	precaire, modeste := Thresholds(region, h.Size)
	result := Result{Eligible: true, Category: category, Region: region, Amount: amount}
	result.Reasons = []string{
		fmt.Sprintf("category: %s", category),
		fmt.Sprintf("region: %s", region),
		fmt.Sprintf("household size: %d", h.Size),
		fmt.Sprintf("reference income: %s", format.WholeEuro(h.ReferenceIncome)),
		fmt.Sprintf("ceilings: precaire %s, modeste %s", format.WholeEuro(precaire), format.WholeEuro(modeste)),
		fmt.Sprintf("bonus for %s: %s", h.PumpType, format.WholeEuro(amount)),
	}
	return result, nil
}
