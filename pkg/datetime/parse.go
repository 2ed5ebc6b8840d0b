// Package datetime provides helpers for monthly price periods.
package datetime

import (
	"time"

	"github.com/iwvelando/heatpump-forecast/pkg/constants"
)

const (
	// PeriodLayout is the format of monthly periods, e.g. "2024-03".
	PeriodLayout = constants.PeriodLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParsePeriod parses a "YYYY-MM" period.
func ParsePeriod(period string) (time.Time, error) {
	return time.Parse(PeriodLayout, period)
}

// OffsetPeriod returns the period offset by the given number of months.
func OffsetPeriod(period string, months int) (string, error) {
	t, err := ParsePeriod(period)
	if err != nil {
		return period, err
	}
	return t.AddDate(0, months, 0).Format(PeriodLayout), nil
}

// PeriodBefore returns true if first is strictly before second.
func PeriodBefore(first, second string) (bool, error) {
	firstT, err := ParsePeriod(first)
	if err != nil {
		return false, err
	}
	secondT, err := ParsePeriod(second)
	if err != nil {
		return false, err
	}
	return firstT.Before(secondT), nil
}

// CurrentYear returns the calendar year of now. It is the only wall-clock
// anchor used to label projected years.
func CurrentYear() int {
	return time.Now().Year()
}
