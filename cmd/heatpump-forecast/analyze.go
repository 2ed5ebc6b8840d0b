package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/heatpump-forecast/internal/modelcache"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/iwvelando/heatpump-forecast/pkg/history"
	"github.com/iwvelando/heatpump-forecast/pkg/output"
	"github.com/iwvelando/heatpump-forecast/pkg/pricehistory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		file  string
		store bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [energy...]",
		Short: "Fit evolution models from monthly price history",
		Long: `analyze fits an evolution model for each energy type from its monthly price
history, read from <evolution.historyDir>/<energy>.csv or from --file. With
no arguments every energy type the configured project needs is analyzed.`,
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

			energies := conf.EnergyTypes()
			if len(args) > 0 {
				energies = make([]evolution.EnergyType, 0, len(args))
				for _, arg := range args {
					energy, err := evolution.ParseEnergyType(arg)
					if err != nil {
						return err
					}
					energies = append(energies, energy)
				}
			}

			var source pricehistory.Source = pricehistory.DirSource{Dir: conf.Evolution.HistoryDir}
			switch {
			case file != "":
				if len(energies) != 1 {
					return errors.New("--file needs exactly one energy type")
				}
				series, err := pricehistory.LoadCSV(file)
				if err != nil {
					return err
				}
				source = pricehistory.StaticSource{energies[0]: series}
			case conf.Evolution.HistoryDir == "":
				return errors.New("evolution.historyDir is not configured and no --file was given")
			}

			ctx := cmd.Context()
			var cache modelcache.Store = modelcache.NopStore{}
			if store {
				opened, closeStore, err := modelcache.OpenStore(ctx, logger, conf.Evolution.Cache)
				if err != nil {
					return fmt.Errorf("failed to open model cache: %w", err)
				}
				defer func() {
					_ = closeStore()
				}()
				cache = opened
			}

			analyses := make([]history.Analysis, 0, len(energies))
			for _, energy := range energies {
				series, err := source.Fetch(ctx, energy)
				if err != nil {
					return err
				}
				if err := series.CheckOrder(); err != nil {
					return fmt.Errorf("%s: %w", energy, err)
				}
				analysis, err := history.Inspect(series, energy)
				if err != nil {
					return err
				}
				analyses = append(analyses, analysis)

				if err := cache.Set(ctx, energy, modelcache.Entry{Model: analysis.Model, FittedAt: time.Now()}); err != nil {
					logger.Warn("failed to store fitted model",
						zap.String("op", "main.analyze"),
						zap.String("energy", string(energy)),
						zap.Error(err),
					)
				}
			}

			return output.WriteAnalyses(cmd.OutOrStdout(), outputFormat, analyses)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV price history to analyze instead of the history directory")
	cmd.Flags().BoolVar(&store, "store", false, "store the fitted models in the configured model cache")
	return cmd
}
