// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/heatpump-forecast/internal/forecast"
	"github.com/iwvelando/heatpump-forecast/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders results in the requested output format.
func Write(w io.Writer, outputFormat string, results []forecast.Forecast) error {
	switch outputFormat {
	case "pretty":
		return PrettyFormat(w, results)
	case "csv":
		return CsvFormat(w, results)
	case "json":
		return JSONFormat(w, results)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []forecast.Forecast) error {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		b := result.Projection.Baseline
		lines := []string{
			fmt.Sprintf("--- Results for project %s ---", result.Name),
			p.Sprintf("Current heating: %s, %.0f kWh thermal need", result.CurrentKind, b.ThermalNeedKWh),
			fmt.Sprintf("Adjusted COP: %.2f (nominal %.2f, temperature x%.2f, climate x%.2f)",
				b.COP.AdjustedCOP, b.COP.NominalCOP, b.COP.TemperatureFactor, b.COP.ClimateFactor),
			fmt.Sprintf("Models: current %s then %s, electricity %s then %s",
				format.Percent(result.Models.Current.RecentRate), format.Percent(result.Models.Current.EquilibriumRate),
				format.Percent(result.Models.HeatPump.RecentRate), format.Percent(result.Models.HeatPump.EquilibriumRate)),
		}
		if result.CEE != nil {
			if result.CEE.Eligible {
				lines = append(lines, fmt.Sprintf("CEE bonus: %s (%s, %s)",
					format.WholeEuro(result.CEE.Amount), result.CEE.Category, result.CEE.Region))
			} else {
				lines = append(lines, fmt.Sprintf("CEE bonus: not eligible (%s)", strings.Join(result.CEE.Reasons, "; ")))
			}
		}
		if result.Financing != nil {
			lines = append(lines, fmt.Sprintf("Loan: %s per month, %s interest",
				format.Euro(result.Financing.MonthlyPayment), format.Euro(result.Financing.TotalInterest)))
		}
		lines = append(lines,
			"Year | Current      | Heat pump    | Savings      | Cumulative",
			"____ | ____________ | ____________ | ____________ | __________",
		)
		for _, entry := range result.Projection.Series {
			lines = append(lines, fmt.Sprintf("%d | %12s | %12s | %12s | %s", entry.Year,
				format.Euro(entry.CurrentCost), format.Euro(entry.HeatPumpCost),
				format.Euro(entry.Savings), format.Euro(entry.CumulativeSavings)))
		}

		r := result.Result
		lines = append(lines, fmt.Sprintf("Net investment: %s", format.Euro(r.Investment)))
		if r.Recovered() {
			lines = append(lines, fmt.Sprintf("Payback: %.1f years (%d)", *r.PaybackYears, *r.PaybackCalendarYear))
		} else {
			lines = append(lines, "Payback: not recovered within the lifespan")
		}
		lines = append(lines, fmt.Sprintf("Net benefit: %s", format.Euro(r.NetBenefit)))
		if r.AnnualizedReturn != nil {
			lines = append(lines, fmt.Sprintf("Annualized return: %s", format.Percent(*r.AnnualizedReturn)))
		}
		for _, warning := range result.Warnings {
			lines = append(lines, "Warning: "+warning)
		}

		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// CsvFormat outputs the yearly series of every result in comma-separated
// value format.
func CsvFormat(w io.Writer, results []forecast.Forecast) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"project", "year", "current cost", "heat pump cost", "savings", "cumulative savings"}); err != nil {
		return err
	}
	for _, result := range results {
		for _, entry := range result.Projection.Series {
			record := []string{
				result.Name,
				strconv.Itoa(entry.Year),
				strconv.FormatFloat(entry.CurrentCost, 'f', 2, 64),
				strconv.FormatFloat(entry.HeatPumpCost, 'f', 2, 64),
				strconv.FormatFloat(entry.Savings, 'f', 2, 64),
				strconv.FormatFloat(entry.CumulativeSavings, 'f', 2, 64),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// JSONFormat outputs the complete results as indented JSON.
func JSONFormat(w io.Writer, results []forecast.Forecast) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
