package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Nearly two cents", 0.019, 0.02},
		{"Large negative", -12345.678, -12345.68},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		input    float64
		decimals int
		expected float64
	}{
		{5.55, 1, 5.6},
		{5.44, 1, 5.4},
		{3.14159, 2, 3.14},
		{2.5, 0, 3},
	}

	for _, tt := range tests {
		result := RoundTo(tt.input, tt.decimals)
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("RoundTo(%v, %d) = %v, expected %v", tt.input, tt.decimals, result, tt.expected)
		}
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Very small positive", 0.001, true},
		{"Very small negative", -0.001, true},
		{"Just above tolerance", 0.02, false},
		{"Large negative", -100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsZero(tt.input); result != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	if IsFinite(math.NaN()) || IsFinite(math.Inf(1)) || IsFinite(math.Inf(-1)) {
		t.Errorf("IsFinite() accepted a non-finite value")
	}
	if !IsFinite(42) {
		t.Errorf("IsFinite(42) = false, expected true")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(10, 1, 3); got != 3 {
		t.Errorf("Clamp(10, 1, 3) = %v, expected 3", got)
	}
	if got := Clamp(-1, 1, 3); got != 1 {
		t.Errorf("Clamp(-1, 1, 3) = %v, expected 1", got)
	}
	if got := Clamp(2, 1, 3); got != 2 {
		t.Errorf("Clamp(2, 1, 3) = %v, expected 2", got)
	}
}

func TestMeanAndStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Mean(values); got != 5 {
		t.Errorf("Mean() = %v, expected 5", got)
	}
	if got := StdDev(values); math.Abs(got-2) > 1e-12 {
		t.Errorf("StdDev() = %v, expected 2", got)
	}
	if Mean(nil) != 0 || StdDev(nil) != 0 {
		t.Errorf("Mean/StdDev of empty slice should be 0")
	}
}

func TestCAGR(t *testing.T) {
	tests := []struct {
		name     string
		first    float64
		last     float64
		years    int
		expected float64
	}{
		{"Doubling over one year", 100, 200, 1, 100},
		{"Ten percent over two years", 100, 121, 2, 10},
		{"Flat", 100, 100, 5, 0},
		{"Zero years", 100, 200, 0, 0},
		{"Non-positive start", 0, 200, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CAGR(tt.first, tt.last, tt.years); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CAGR() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	if got := ApplyPercentage(200, 15); math.Abs(got-30) > 1e-9 {
		t.Errorf("ApplyPercentage(200, 15) = %v, expected 30", got)
	}
}
