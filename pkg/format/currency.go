// Package format renders amounts for human-readable output.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Euro returns a currency string with French grouping, e.g. "-1 234,56 €".
func Euro(amount float64) string {
	formatted := formatPositive(math.Abs(amount), 2)
	if amount < 0 && formatted != "0,00" {
		return "-" + formatted + " €"
	}
	return formatted + " €"
}

// WholeEuro returns an amount without cents, e.g. "5 000 €".
func WholeEuro(amount float64) string {
	formatted := formatPositive(math.Abs(amount), 0)
	if amount < 0 && formatted != "0" {
		return "-" + formatted + " €"
	}
	return formatted + " €"
}

// Percent returns a signed percentage with two decimals, e.g. "+3,50 %".
func Percent(value float64) string {
	sign := "+"
	if value < 0 {
		sign = "-"
	}
	return sign + formatPositive(math.Abs(value), 2) + " %"
}

func formatPositive(value float64, decimals int) string {
	formatted := fmt.Sprintf("%.*f", decimals, value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(' ')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "," + parts[1]
	}
	return intPart
}
