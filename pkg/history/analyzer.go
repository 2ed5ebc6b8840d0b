// Package history fits energy price evolution models from monthly price
// histories.
package history

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/iwvelando/heatpump-forecast/pkg/mathutil"
	"github.com/iwvelando/heatpump-forecast/pkg/pricehistory"
)

var (
	// ErrInsufficientHistory is returned when fewer than 24 usable monthly
	// prices remain.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrNoValidPrices is returned when no price survives filtering.
	ErrNoValidPrices = errors.New("no valid prices in history")
)

const minSigma = 1e-6

// Band bounds the equilibrium rate of an energy type.
type Band struct {
	Min float64
	Max float64
}

var equilibriumBands = map[evolution.EnergyType]Band{
	evolution.Electricity: {Min: -2, Max: 8},
	evolution.NaturalGas:  {Min: -2, Max: 8},
	evolution.FuelOil:     {Min: -2, Max: 8},
	evolution.LPG:         {Min: -2, Max: 8},
	evolution.WoodLogs:    {Min: 1, Max: 3},
	evolution.WoodPellets: {Min: 1, Max: 4},
}

// EquilibriumBand returns the band for an energy type.
func EquilibriumBand(energy evolution.EnergyType) (Band, bool) {
	band, ok := equilibriumBands[energy]
	return band, ok
}

// Analysis holds the intermediate results of a fit.
type Analysis struct {
	Energy         evolution.EnergyType `json:"energy"`
	UsableMonths   int                  `json:"usableMonths"`
	AnnualAverages []float64            `json:"annualAverages"` // oldest first
	Evolutions     []float64            `json:"evolutions"`     // percent, aligned with AnnualAverages[1:]
	CrisisYears    []bool               `json:"crisisYears"`    // aligned with Evolutions
	RecentTrend    float64              `json:"recentTrend"`
	FullTrend      float64              `json:"fullTrend"`
	RawEquilibrium float64              `json:"rawEquilibrium"`
	Model          evolution.Model      `json:"model"`
}

// Analyze fits an evolution model from a most-recent-first monthly series.
func Analyze(series pricehistory.Series, energy evolution.EnergyType) (evolution.Model, error) {
	analysis, err := Inspect(series, energy)
	if err != nil {
		return evolution.Model{}, err
	}
	return analysis.Model, nil
}

// Inspect runs the fit and returns every intermediate value.
func Inspect(series pricehistory.Series, energy evolution.EnergyType) (Analysis, error) {
	analysis := Analysis{Energy: energy}

	prices := usablePrices(series)
	if len(prices) == 0 {
		return analysis, fmt.Errorf("%s: %w", energy, ErrNoValidPrices)
	}
	if len(prices) < constants.MinHistoryMonths {
		return analysis, fmt.Errorf("%s: %d usable months, need %d: %w",
			energy, len(prices), constants.MinHistoryMonths, ErrInsufficientHistory)
	}
	analysis.UsableMonths = len(prices)

	analysis.AnnualAverages = annualAverages(prices)
	analysis.Evolutions = yearOverYear(analysis.AnnualAverages)
	analysis.CrisisYears = flagCrises(analysis.Evolutions)

	averages := analysis.AnnualAverages
	years := len(averages)
	recentStart := 0
	if years > constants.RecentWindowYears {
		recentStart = years - constants.RecentWindowYears
	}
	analysis.RecentTrend = mathutil.CAGR(averages[recentStart], averages[years-1], years-1-recentStart)
	analysis.FullTrend = mathutil.CAGR(averages[0], averages[years-1], years-1)
	recent := constants.RecentTrendWeight*analysis.RecentTrend + (1-constants.RecentTrendWeight)*analysis.FullTrend

	analysis.RawEquilibrium = baselineMean(analysis.Evolutions, analysis.CrisisYears)
	equilibrium := analysis.RawEquilibrium
	if band, ok := equilibriumBands[energy]; ok {
		equilibrium = mathutil.Clamp(equilibrium, band.Min, band.Max)
	}

	analysis.Model = evolution.Model{
		RecentRate:      mathutil.Round(recent),
		EquilibriumRate: mathutil.Round(equilibrium),
		TransitionYears: constants.TransitionYears,
	}
	return analysis, nil
}

// usablePrices filters the series and returns prices oldest first.
func usablePrices(series pricehistory.Series) []float64 {
	prices := make([]float64, 0, len(series))
	for i := len(series) - 1; i >= 0; i-- {
		price := series[i].Price
		if !mathutil.IsFinite(price) || price <= 0 {
			continue
		}
		prices = append(prices, price)
	}
	return prices
}

// annualAverages groups oldest-first prices into 12-month windows anchored
// on the newest month; the oldest partial year is dropped.
func annualAverages(prices []float64) []float64 {
	years := len(prices) / constants.MonthsPerYear
	offset := len(prices) % constants.MonthsPerYear
	averages := make([]float64, years)
	for y := 0; y < years; y++ {
		start := offset + y*constants.MonthsPerYear
		averages[y] = mathutil.Mean(prices[start : start+constants.MonthsPerYear])
	}
	return averages
}

func yearOverYear(averages []float64) []float64 {
	evolutions := make([]float64, 0, len(averages)-1)
	for i := 1; i < len(averages); i++ {
		evolutions = append(evolutions, (averages[i]/averages[i-1]-1)*constants.PercentageMultiplier)
	}
	return evolutions
}

func flagCrises(evolutions []float64) []bool {
	mean := mathutil.Mean(evolutions)
	sigma := mathutil.StdDev(evolutions)
	// Sigma below minSigma is floating-point noise from a perfectly steady series.
	useSigma := len(evolutions) >= 3 && sigma > minSigma

	flags := make([]bool, len(evolutions))
	for i, e := range evolutions {
		if math.Abs(e) > constants.CrisisAbsoluteThreshold {
			flags[i] = true
			continue
		}
		if useSigma && math.Abs(e-mean) > constants.CrisisSigmaThreshold*sigma {
			flags[i] = true
		}
	}
	return flags
}

// baselineMean averages the non-crisis evolutions, or all of them when every
// year was flagged.
func baselineMean(evolutions []float64, crisis []bool) float64 {
	baseline := make([]float64, 0, len(evolutions))
	for i, e := range evolutions {
		if !crisis[i] {
			baseline = append(baseline, e)
		}
	}
	if len(baseline) == 0 {
		return mathutil.Mean(evolutions)
	}
	return mathutil.Mean(baseline)
}
