// Package loans amortizes the loan that finances a heat pump installation.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/iwvelando/heatpump-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// Terms are the financing terms of an installation.
type Terms struct {
	Principal   float64 `json:"principal"`
	DownPayment float64 `json:"downPayment,omitempty"`
	AnnualRate  float64 `json:"annualRate"` // percent
	TermMonths  int     `json:"termMonths"`
}

// Financed reports whether there is anything to amortize.
func (t Terms) Financed() bool {
	return t.Principal-t.DownPayment > 0 && t.TermMonths > 0
}

// Validate checks the terms for values that cannot be amortized.
func (t Terms) Validate() error {
	if t.Principal < 0 || t.DownPayment < 0 {
		return fmt.Errorf("loan amounts must not be negative")
	}
	if t.DownPayment > t.Principal {
		return fmt.Errorf("down payment %.2f exceeds principal %.2f", t.DownPayment, t.Principal)
	}
	if t.AnnualRate < 0 {
		return fmt.Errorf("interest rate must not be negative, got %.2f", t.AnnualRate)
	}
	if t.Principal > 0 && t.TermMonths <= 0 {
		return fmt.Errorf("loan term must be positive, got %d months", t.TermMonths)
	}
	return nil
}

// Payment holds the values for a given month.
type Payment struct {
	Month              int     `json:"month"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// Summary aggregates a schedule.
type Summary struct {
	MonthlyPayment float64   `json:"monthlyPayment"`
	TotalPaid      float64   `json:"totalPaid"`
	TotalInterest  float64   `json:"totalInterest"`
	Schedule       []Payment `json:"-"`
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, downPayment, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return (principal - downPayment) / float64(termMonths)
	}

	periodicInterestRate := annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow((1.00 + periodicInterestRate), float64(termMonths))
	discountFactor := (power - 1.00) / power
	return (principal - downPayment) * periodicInterestRate / discountFactor
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// ScheduleGenerator provides utilities for generating loan amortization schedules
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule. The last
// payment absorbs rounding so the loan ends at exactly zero.
func (g *ScheduleGenerator) GenerateSchedule(terms Terms) ([]Payment, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if !terms.Financed() {
		return nil, nil
	}

	monthlyPayment := CalculateMonthlyPayment(terms.Principal, terms.DownPayment, terms.AnnualRate, terms.TermMonths)
	remaining := terms.Principal - terms.DownPayment
	schedule := make([]Payment, 0, terms.TermMonths)

	for month := 1; month <= terms.TermMonths; month++ {
		interest := CalculateInterestPayment(remaining, terms.AnnualRate)
		principal := monthlyPayment - interest
		if month == terms.TermMonths || principal > remaining {
			principal = remaining
		}
		remaining -= principal
		if mathutil.IsZero(remaining) {
			remaining = 0
		}

		schedule = append(schedule, Payment{
			Month:              month,
			Payment:            principal + interest,
			Principal:          principal,
			Interest:           interest,
			RemainingPrincipal: remaining,
		})

		if remaining == 0 {
			break
		}
	}

	g.logger.Debug(fmt.Sprintf("generated %d-month schedule with monthly payment %.2f", len(schedule), monthlyPayment),
		zap.String("op", "loans.GenerateSchedule"),
	)
	return schedule, nil
}

// Summarize amortizes the terms and totals the payments.
func Summarize(logger *zap.Logger, terms Terms) (Summary, error) {
	schedule, err := NewScheduleGenerator(logger).GenerateSchedule(terms)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Schedule: schedule}
	if len(schedule) == 0 {
		return summary, nil
	}
	summary.MonthlyPayment = mathutil.Round(schedule[0].Payment)
	for _, p := range schedule {
		summary.TotalPaid += p.Payment
		summary.TotalInterest += p.Interest
	}
	summary.TotalPaid = mathutil.Round(summary.TotalPaid)
	summary.TotalInterest = mathutil.Round(summary.TotalInterest)
	return summary, nil
}

// YearlyPayments totals a schedule per year of repayment.
func YearlyPayments(schedule []Payment) []float64 {
	if len(schedule) == 0 {
		return nil
	}
	years := (len(schedule) + constants.MonthsPerYear - 1) / constants.MonthsPerYear
	totals := make([]float64, years)
	for i, p := range schedule {
		totals[i/constants.MonthsPerYear] += p.Payment
	}
	for i := range totals {
		totals[i] = mathutil.Round(totals[i])
	}
	return totals
}
