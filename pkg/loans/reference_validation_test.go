package loans

import (
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"
)

// ReferencePayment represents a single payment from the reference schedule
type ReferencePayment struct {
	Month            int
	Payment          float64
	PrincipalPayment float64
	Interest         float64
	LoanBalance      float64
}

// getReferenceSchedule returns the authoritative amortization schedule data
// Based on: Loan amount 175,000, Interest rate 4.5%, Term 360 months
// Calculator: https://www.fidelitygroup.com/amortizing-loan-calculator
func getReferenceSchedule() []ReferencePayment {
	return []ReferencePayment{
		{1, 886.70, 230.45, 656.25, 174769.55},
		{2, 886.70, 231.31, 655.39, 174538.24},
		{3, 886.70, 232.18, 654.52, 174306.06},
		{4, 886.70, 233.05, 653.65, 174073.00},
		{5, 886.70, 233.93, 652.77, 173839.08},
		{6, 886.70, 234.80, 651.90, 173604.28},
		{7, 886.70, 235.68, 651.02, 173368.59},
		{8, 886.70, 236.57, 650.13, 173132.03},
		{9, 886.70, 237.45, 649.25, 172894.57},
		{10, 886.70, 238.34, 648.35, 172656.23},
		{11, 886.70, 239.24, 647.46, 172416.99},
		{12, 886.70, 240.14, 646.56, 172176.85},
		// Adding key milestone months for validation
		{24, 886.70, 251.17, 635.53, 169224.01},
		{36, 886.70, 262.71, 623.99, 166135.52},
		{60, 886.70, 287.40, 599.30, 159526.36},
		{120, 886.70, 359.76, 526.94, 140156.51},
		{180, 886.70, 450.35, 436.35, 115909.42},
		{240, 886.70, 563.75, 322.95, 85557.02},
		{300, 886.70, 705.70, 181.00, 47562.00},
		{359, 886.70, 880.09, 6.61, 883.39},
		{360, 886.70, 883.39, 3.31, 0.00},
	}
}

func TestLoanCalculationsAgainstReferenceSchedule(t *testing.T) {
	generator := NewScheduleGenerator(zap.NewNop())

	terms := Terms{
		Principal:  175000,
		AnnualRate: 4.5,
		TermMonths: 360,
	}

	schedule, err := generator.GenerateSchedule(terms)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if len(schedule) != 360 {
		t.Fatalf("schedule length = %d, expected 360", len(schedule))
	}

	referenceData := getReferenceSchedule()
	tolerance := 0.50 // Allow 50 cents difference due to rounding

	for _, ref := range referenceData {
		payment := schedule[ref.Month-1]

		t.Run(fmt.Sprintf("Month_%d", ref.Month), func(t *testing.T) {
			if payment.Month != ref.Month {
				t.Errorf("Month mismatch: got %d, expected %d", payment.Month, ref.Month)
			}

			if math.Abs(payment.Payment-ref.Payment) > tolerance {
				t.Errorf("Payment amount mismatch: got %.2f, expected %.2f (diff: %.2f)",
					payment.Payment, ref.Payment, math.Abs(payment.Payment-ref.Payment))
			}

			if math.Abs(payment.Principal-ref.PrincipalPayment) > tolerance {
				t.Errorf("Principal payment mismatch: got %.2f, expected %.2f (diff: %.2f)",
					payment.Principal, ref.PrincipalPayment, math.Abs(payment.Principal-ref.PrincipalPayment))
			}

			if math.Abs(payment.Interest-ref.Interest) > tolerance {
				t.Errorf("Interest payment mismatch: got %.2f, expected %.2f (diff: %.2f)",
					payment.Interest, ref.Interest, math.Abs(payment.Interest-ref.Interest))
			}

			if math.Abs(payment.RemainingPrincipal-ref.LoanBalance) > tolerance {
				t.Errorf("Remaining balance mismatch: got %.2f, expected %.2f (diff: %.2f)",
					payment.RemainingPrincipal, ref.LoanBalance, math.Abs(payment.RemainingPrincipal-ref.LoanBalance))
			}

			// Verify payment components add up correctly
			calculatedPayment := payment.Principal + payment.Interest
			if math.Abs(calculatedPayment-payment.Payment) > 0.01 {
				t.Errorf("Payment components don't add up: Principal(%.2f) + Interest(%.2f) = %.2f, but Payment = %.2f",
					payment.Principal, payment.Interest, calculatedPayment, payment.Payment)
			}
		})
	}

	if final := schedule[len(schedule)-1].RemainingPrincipal; final != 0 {
		t.Errorf("final balance = %.2f, expected 0", final)
	}

	summary, err := Summarize(zap.NewNop(), terms)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	// 360 payments of 886.70 minus the principal.
	if math.Abs(summary.TotalInterest-(886.70*360-175000)) > 5 {
		t.Errorf("TotalInterest = %.2f, expected about %.2f", summary.TotalInterest, 886.70*360-175000)
	}
}
