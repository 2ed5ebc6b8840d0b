package main

import (
	"fmt"

	"github.com/iwvelando/heatpump-forecast/internal/forecast"
	"github.com/iwvelando/heatpump-forecast/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newProjectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "project",
		Short: "Project the costs and payback of the configured heat pump",
		Args:  cobra.NoArgs,
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

			ctx := cmd.Context()
			provider, closeProvider, err := newProvider(ctx, logger, conf.Evolution)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeProvider(); err != nil {
					logger.Warn("failed to close model cache",
						zap.String("op", "main.project"),
						zap.Error(err),
					)
				}
			}()

			result, err := forecast.Run(ctx, logger, *conf, provider)
			if err != nil {
				return fmt.Errorf("failed to compute forecast: %w", err)
			}
			for _, warning := range result.Warnings {
				logger.Warn("Configuration warning: "+warning,
					zap.String("op", "main.project"),
				)
			}

			return output.Write(cmd.OutOrStdout(), outputFormat, []forecast.Forecast{result})
		},
	}
}
