package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/heatpump-forecast/internal/config"
	"github.com/iwvelando/heatpump-forecast/internal/forecast"
	"github.com/iwvelando/heatpump-forecast/internal/server"
	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		serverConfigPath string
		address          string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the projection API over HTTP",
		Long: `serve runs the HTTP API. Server settings come from the server configuration
file; when the forecasting configuration (forecastConfig there, or --config)
exists, its evolution section provides the price history and model cache used
to fit models for every request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConfig, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				serverConfig.Address = address
			}

			logger, err := initializeLogger(serverConfig.Logging, opts.logLevel)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			forecastConfig := opts.configPath
			if serverConfig.ForecastConfig != "" {
				forecastConfig = serverConfig.ForecastConfig
			}
			provider, closeProvider, err := serverProvider(ctx, logger, forecastConfig)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeProvider()
			}()

			logger.Info("server configured",
				zap.String("op", "main.serve"),
				zap.Stringer("maxUploadSize", serverConfig.MaxUploadSize),
				zap.Duration("requestTimeout", serverConfig.RequestTimeout),
			)
			handler := server.NewHandler(logger, int64(serverConfig.MaxUploadSize), version, provider)
			return server.New(logger, serverConfig, handler).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	return cmd
}

// serverProvider builds the model provider from the main configuration,
// which is optional for the server.
func serverProvider(ctx context.Context, logger *zap.Logger, configPath string) (forecast.ModelProvider, func() error, error) {
	noop := func() error { return nil }
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		logger.Info("no configuration found, projections use request or default models",
			zap.String("op", "main.serve"),
			zap.String("config", configPath),
		)
		return nil, noop, nil
	}

	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		return nil, nil, err
	}
	return newProvider(ctx, logger, conf.Evolution)
}
