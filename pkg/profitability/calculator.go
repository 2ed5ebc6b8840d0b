// Package profitability turns a yearly cost series into a payback period and
// lifetime totals.
package profitability

import (
	"errors"
	"math"

	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/iwvelando/heatpump-forecast/pkg/loans"
	"github.com/iwvelando/heatpump-forecast/pkg/mathutil"
	"github.com/iwvelando/heatpump-forecast/pkg/projection"
)

// Reasons for a nil AnnualizedReturn.
var (
	ErrNonPositiveInvestment = errors.New("investment must be positive to compute a rate of return")
	ErrEmptySeries           = errors.New("a rate of return needs at least one projected year")
)

// Result summarizes the profitability of a projection. A nil PaybackYears
// means the investment is not recovered within the series.
type Result struct {
	Investment          float64  `json:"investment"`
	PaybackYears        *float64 `json:"paybackYears"`
	PaybackCalendarYear *int     `json:"paybackCalendarYear"`
	TotalCurrentCost    float64  `json:"totalCurrentCost"`
	TotalHeatPumpCost   float64  `json:"totalHeatPumpCost"`
	TotalSavings        float64  `json:"totalSavings"`
	NetBenefit          float64  `json:"netBenefit"`
	// AnnualizedReturn is netBenefit / investment / years in percent, a
	// simple ratio that ignores the timing of cash flows.
	AnnualizedReturn *float64 `json:"annualizedReturn"`
}

// Recovered reports whether the investment pays back within the series.
func (r Result) Recovered() bool {
	return r.PaybackYears != nil
}

// Calculate evaluates a series against an investment. startYear labels the
// first entry of the series.
func Calculate(series []projection.YearlyCostEntry, investment float64, startYear int) Result {
	result := Result{Investment: investment}

	for _, entry := range series {
		result.TotalCurrentCost += entry.CurrentCost
		result.TotalHeatPumpCost += entry.HeatPumpCost
	}
	result.TotalCurrentCost = mathutil.Round(result.TotalCurrentCost)
	result.TotalHeatPumpCost = mathutil.Round(result.TotalHeatPumpCost)

	if len(series) > 0 {
		result.TotalSavings = series[len(series)-1].CumulativeSavings
	}
	result.NetBenefit = mathutil.Round(result.TotalSavings - investment)

	if payback, ok := PaybackPeriod(series, investment); ok {
		year := startYear + int(math.Floor(payback))
		result.PaybackYears = &payback
		result.PaybackCalendarYear = &year
	}

	if rate, err := AnnualizedReturn(result.NetBenefit, investment, len(series)); err == nil {
		result.AnnualizedReturn = &rate
	}
	return result
}

// PaybackPeriod returns the number of years until cumulative savings cover
// the investment, interpolating between the year before the crossing and
// the crossing year. A payback is never reported below one year.
func PaybackPeriod(series []projection.YearlyCostEntry, investment float64) (float64, bool) {
	for i, entry := range series {
		if entry.CumulativeSavings < investment {
			continue
		}
		if i == 0 {
			return 1, true
		}
		previous := series[i-1].CumulativeSavings
		fraction := (investment - previous) / entry.Savings
		payback := math.Round((float64(i-1)+fraction)*constants.PaybackPrecision) / constants.PaybackPrecision
		return math.Max(payback, 1), true
	}
	return 0, false
}

// AnnualizedReturn returns the average yearly return in percent.
func AnnualizedReturn(netBenefit, investment float64, years int) (float64, error) {
	if investment <= 0 {
		return 0, ErrNonPositiveInvestment
	}
	if years <= 0 {
		return 0, ErrEmptySeries
	}
	return mathutil.Round(netBenefit / investment / float64(years) * constants.PercentageMultiplier), nil
}

// NetInvestment is the amount savings must recover: the installation cost
// minus aid, minus the down payment when a loan is taken. It never goes
// below zero. Loan interest is reported with the loan summary, not here.
func NetInvestment(total, aid float64, financing *loans.Terms) float64 {
	net := total - aid
	if financing != nil && financing.Financed() {
		net -= financing.DownPayment
	}
	if net < 0 {
		return 0
	}
	return mathutil.Round(net)
}
