package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/heatpump-forecast/pkg/aid"
	"github.com/iwvelando/heatpump-forecast/pkg/format"
	"github.com/iwvelando/heatpump-forecast/pkg/simulator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultSimulatorField is the simulator rule holding the CEE amount.
const defaultSimulatorField = "CEE . montant"

func newAidCmd(opts *rootOptions) *cobra.Command {
	var (
		simulate  bool
		field     string
		overrides map[string]string
	)

	cmd := &cobra.Command{
		Use:   "aid",
		Short: "Evaluate CEE eligibility of the configured household",
		Long: `aid evaluates the CEE heat pump bonus from the household section of the
configuration. With --simulate the household is also submitted to the
configured aid simulator, whose answer is reported alongside.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			outputFormat, err := opts.format(conf)
			if err != nil {
				return err
			}

			household, ok := conf.Project.ToHousehold()
			if !ok {
				return errors.New("the configuration has no project.household section")
			}
			result, err := aid.Evaluate(household)
			if err != nil {
				return err
			}

			report := aidReport{CEE: result}
			if simulate {
				if conf.Simulator.URL == "" {
					return errors.New("simulator.url is not configured")
				}
				client, err := simulator.NewClient(conf.Simulator.URL, conf.Simulator.Timeout, logger)
				if err != nil {
					return err
				}

				situation := simulatorSituation(household)
				for key, value := range overrides {
					situation[key] = value
				}
				simulated, err := client.Evaluate(cmd.Context(), situation, field)
				if err != nil {
					return fmt.Errorf("simulator request failed: %w", err)
				}
				if !simulated.Complete() {
					logger.Warn("simulator answer is incomplete",
						zap.String("op", "main.aid"),
						zap.Strings("missing", simulated.Missing()),
					)
				}
				report.Simulator = &simulated
			}

			return writeAidReport(cmd.OutOrStdout(), outputFormat, report)
		},
	}

	cmd.Flags().BoolVar(&simulate, "simulate", false, "also query the configured aid simulator")
	cmd.Flags().StringVar(&field, "field", defaultSimulatorField, "simulator field to evaluate")
	cmd.Flags().StringToStringVar(&overrides, "set", nil, "extra simulator situation variables (name=value)")
	return cmd
}

type aidReport struct {
	CEE       aid.Result       `json:"cee"`
	Simulator *simulator.Field `json:"simulator,omitempty"`
}

// simulatorSituation maps the household onto simulator variables. String
// values are quoted as the simulator expects.
func simulatorSituation(h aid.Household) map[string]string {
	situation := map[string]string{
		"ménage . revenu":                  strconv.FormatFloat(h.ReferenceIncome, 'f', 0, 64),
		"ménage . personnes":               strconv.Itoa(h.Size),
		"logement . propriétaire occupant": "oui",
	}
	if h.PostalCode != "" {
		situation["logement . code postal"] = strconv.Quote(h.PostalCode)
	}
	if h.DwellingOverTwoYears {
		situation["logement . période de construction"] = strconv.Quote("au moins 2 ans")
	}
	return situation
}

func writeAidReport(w io.Writer, outputFormat string, report aidReport) error {
	if outputFormat == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	var lines []string
	if report.CEE.Eligible {
		lines = append(lines, fmt.Sprintf("CEE bonus: %s", format.WholeEuro(report.CEE.Amount)))
		lines = append(lines, report.CEE.Reasons...)
	} else {
		lines = append(lines, fmt.Sprintf("CEE bonus: not eligible (%s)", strings.Join(report.CEE.Reasons, "; ")))
	}
	if s := report.Simulator; s != nil {
		line := "Simulator: " + s.FormattedValue
		if missing := s.Missing(); len(missing) > 0 {
			line += " (missing " + strings.Join(missing, ", ") + ")"
		}
		lines = append(lines, line)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
