package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/heatpump-forecast/pkg/format"
	"github.com/iwvelando/heatpump-forecast/pkg/history"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteAnalyses renders price history fits in the requested output format.
func WriteAnalyses(w io.Writer, outputFormat string, analyses []history.Analysis) error {
	switch outputFormat {
	case "pretty":
		return prettyAnalyses(w, analyses)
	case "csv":
		return csvAnalyses(w, analyses)
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(analyses)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

func prettyAnalyses(w io.Writer, analyses []history.Analysis) error {
	p := message.NewPrinter(language.English)
	for i, analysis := range analyses {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := p.Fprintf(w, "--- Price history for %s (%d usable months) ---\n", analysis.Energy, analysis.UsableMonths); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Year | Average     | Evolution | Crisis\n____ | ___________ | _________ | ______\n"); err != nil {
			return err
		}
		for year, average := range analysis.AnnualAverages {
			evolution, crisis := "", ""
			if year > 0 {
				evolution = format.Percent(analysis.Evolutions[year-1])
				if analysis.CrisisYears[year-1] {
					crisis = "yes"
				}
			}
			if _, err := p.Fprintf(w, "%4d | %11.4f | %9s | %s\n", year+1, average, evolution, crisis); err != nil {
				return err
			}
		}
		m := analysis.Model
		if _, err := fmt.Fprintf(w, "Recent trend %s, full trend %s, equilibrium %s (raw %s)\nModel: %s decaying to %s over %d years\n",
			format.Percent(analysis.RecentTrend), format.Percent(analysis.FullTrend),
			format.Percent(m.EquilibriumRate), format.Percent(analysis.RawEquilibrium),
			format.Percent(m.RecentRate), format.Percent(m.EquilibriumRate), m.TransitionYears); err != nil {
			return err
		}
	}
	return nil
}

func csvAnalyses(w io.Writer, analyses []history.Analysis) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"energy", "usable months", "recent rate", "equilibrium rate", "transition years", "crisis years"}); err != nil {
		return err
	}
	for _, analysis := range analyses {
		crises := 0
		for _, crisis := range analysis.CrisisYears {
			if crisis {
				crises++
			}
		}
		record := []string{
			string(analysis.Energy),
			strconv.Itoa(analysis.UsableMonths),
			strconv.FormatFloat(analysis.Model.RecentRate, 'f', 2, 64),
			strconv.FormatFloat(analysis.Model.EquilibriumRate, 'f', 2, 64),
			strconv.Itoa(analysis.Model.TransitionYears),
			strconv.Itoa(crises),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
