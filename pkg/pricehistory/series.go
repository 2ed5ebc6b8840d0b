// Package pricehistory holds monthly energy price series and the sources
// they are read from.
package pricehistory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iwvelando/heatpump-forecast/pkg/datetime"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
)

// Point is one monthly observation.
type Point struct {
	Period string  `json:"period" yaml:"period"`
	Price  float64 `json:"price" yaml:"price"`
}

// Series is an ordered list of monthly prices, most recent first.
type Series []Point

// Prices returns the raw prices in series order.
func (s Series) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, p := range s {
		prices[i] = p.Price
	}
	return prices
}

// CheckOrder verifies that periods, when present, are strictly decreasing.
func (s Series) CheckOrder() error {
	for i := 1; i < len(s); i++ {
		if s[i].Period == "" || s[i-1].Period == "" {
			continue
		}
		before, err := datetime.PeriodBefore(s[i].Period, s[i-1].Period)
		if err != nil {
			return fmt.Errorf("invalid period at row %d: %w", i, err)
		}
		if !before {
			return fmt.Errorf("series must be most-recent-first: %s is not before %s", s[i].Period, s[i-1].Period)
		}
	}
	return nil
}

// DecodeCSV reads "period,price" rows. A header row is skipped, ';' is
// accepted as delimiter together with decimal commas, and prices that do
// not parse are kept as NaN so the analyzer can filter them.
func DecodeCSV(r io.Reader) (Series, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(raw)

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	semicolon := false
	if firstLine, _, _ := strings.Cut(text, "\n"); strings.Contains(firstLine, ";") {
		reader.Comma = ';'
		semicolon = true
	}

	var series Series
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", row, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("csv row %d: expected period and price, got %d fields", row, len(record))
		}

		period := strings.TrimSpace(record[0])
		priceField := strings.TrimSpace(record[1])
		if semicolon {
			priceField = strings.ReplaceAll(priceField, ",", ".")
		}

		if _, perr := datetime.ParsePeriod(period); perr != nil {
			if row == 0 {
				continue
			}
			return nil, fmt.Errorf("csv row %d: invalid period %q", row, period)
		}

		price, perr := strconv.ParseFloat(priceField, 64)
		if perr != nil {
			price = math.NaN()
		}
		series = append(series, Point{Period: period, Price: price})
	}

	if err := series.CheckOrder(); err != nil {
		return nil, err
	}
	return series, nil
}

// LoadCSV decodes a CSV series from a file.
func LoadCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price history %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return DecodeCSV(f)
}

// Source provides price histories per energy type.
type Source interface {
	Fetch(ctx context.Context, energy evolution.EnergyType) (Series, error)
}

// DirSource reads <Dir>/<energy>.csv.
type DirSource struct {
	Dir string
}

// Fetch implements Source.
func (d DirSource) Fetch(ctx context.Context, energy evolution.EnergyType) (Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadCSV(filepath.Join(d.Dir, string(energy)+".csv"))
}

// StaticSource serves in-memory series, mostly for tests and API payloads.
type StaticSource map[evolution.EnergyType]Series

// Fetch implements Source.
func (s StaticSource) Fetch(ctx context.Context, energy evolution.EnergyType) (Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	series, ok := s[energy]
	if !ok {
		return nil, fmt.Errorf("no price history for %s", energy)
	}
	return series, nil
}
