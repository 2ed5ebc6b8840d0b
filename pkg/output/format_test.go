package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/heatpump-forecast/internal/forecast"
	"github.com/iwvelando/heatpump-forecast/pkg/aid"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/iwvelando/heatpump-forecast/pkg/history"
	"github.com/iwvelando/heatpump-forecast/pkg/profitability"
	"github.com/iwvelando/heatpump-forecast/pkg/projection"
)

func sampleResults() []forecast.Forecast {
	payback := 1.5
	year := 2027
	ret := 12.5
	return []forecast.Forecast{
		{
			Name:        "Test Project",
			CurrentKind: "natural_gas",
			CEE:         &aid.Result{Eligible: true, Amount: 4000, Category: aid.Modeste, Region: aid.OtherRegion},
			Projection: projection.Projection{
				Series: []projection.YearlyCostEntry{
					{Year: 2026, CurrentCost: 1720, HeatPumpCost: 825, Savings: 895, CumulativeSavings: 895},
					{Year: 2027, CurrentCost: 1800, HeatPumpCost: 850, Savings: 950, CumulativeSavings: 1845},
				},
			},
			Result: profitability.Result{
				Investment:          1200,
				PaybackYears:        &payback,
				PaybackCalendarYear: &year,
				NetBenefit:          645,
				AnnualizedReturn:    &ret,
			},
			Warnings: []string{"Adjusted COP 0.90 is below 1"},
		},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, sampleResults()); err != nil {
		t.Fatalf("PrettyFormat returned error: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"--- Results for project Test Project ---",
		"Year | Current      | Heat pump    | Savings      | Cumulative",
		"1 720,00 €",
		"1 845,00 €",
		"CEE bonus: 4 000 € (modeste, other)",
		"Payback: 1.5 years (2027)",
		"Annualized return: +12,50 %",
		"Warning: Adjusted COP 0.90 is below 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q\n%s", want, output)
		}
	}
}

func TestPrettyFormatNotRecovered(t *testing.T) {
	results := sampleResults()
	results[0].Result.PaybackYears = nil
	results[0].Result.PaybackCalendarYear = nil

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, results); err != nil {
		t.Fatalf("PrettyFormat returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "Payback: not recovered within the lifespan") {
		t.Errorf("PrettyFormat should report an unrecovered investment")
	}
}

func TestPrettyFormatIneligibleCEE(t *testing.T) {
	results := sampleResults()
	results[0].CEE = &aid.Result{Category: aid.NonEligible, Reasons: []string{aid.ReasonDwellingAge}}

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, results); err != nil {
		t.Fatalf("PrettyFormat returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "CEE bonus: not eligible (minimum dwelling age not met)") {
		t.Errorf("PrettyFormat should give the ineligibility reason\n%s", buf.String())
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, sampleResults()); err != nil {
		t.Fatalf("CsvFormat returned error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CsvFormat produced invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d records", len(records))
	}
	want := []string{"Test Project", "2027", "1800.00", "850.00", "950.00", "1845.00"}
	for i, field := range want {
		if records[2][i] != field {
			t.Errorf("record[2][%d] = %q, want %q", i, records[2][i], field)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, sampleResults()); err != nil {
		t.Fatalf("JSONFormat returned error: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSONFormat produced invalid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["name"] != "Test Project" {
		t.Errorf("unexpected JSON output: %s", buf.String())
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "xml", sampleResults()); err == nil {
		t.Errorf("expected an error for an unknown format")
	}
}

func TestWriteAnalyses(t *testing.T) {
	analyses := []history.Analysis{{
		Energy:         evolution.NaturalGas,
		UsableMonths:   36,
		AnnualAverages: []float64{0.08, 0.10, 0.11},
		Evolutions:     []float64{25, 10},
		CrisisYears:    []bool{true, false},
		Model:          evolution.Model{RecentRate: 12.5, EquilibriumRate: 3.5, TransitionYears: 5},
	}}

	var pretty bytes.Buffer
	if err := WriteAnalyses(&pretty, "pretty", analyses); err != nil {
		t.Fatalf("WriteAnalyses returned error: %v", err)
	}
	for _, want := range []string{"Price history for natural_gas (36 usable months)", "+25,00 %", "yes", "+12,50 % decaying to +3,50 % over 5 years"} {
		if !strings.Contains(pretty.String(), want) {
			t.Errorf("pretty analysis missing %q\n%s", want, pretty.String())
		}
	}

	var csvOut bytes.Buffer
	if err := WriteAnalyses(&csvOut, "csv", analyses); err != nil {
		t.Fatalf("WriteAnalyses returned error: %v", err)
	}
	if !strings.Contains(csvOut.String(), "natural_gas,36,12.50,3.50,5,1") {
		t.Errorf("unexpected CSV analysis output: %s", csvOut.String())
	}
}
