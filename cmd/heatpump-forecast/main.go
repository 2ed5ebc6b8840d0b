package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/heatpump-forecast/internal/config"
	"github.com/iwvelando/heatpump-forecast/internal/forecast"
	"github.com/iwvelando/heatpump-forecast/internal/modelcache"
	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/iwvelando/heatpump-forecast/pkg/pricehistory"
	"github.com/iwvelando/heatpump-forecast/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath   string
	envFile      string
	logLevel     string
	outputFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "heatpump-forecast",
		Short: "Heat pump profitability forecasting",
		Long: `heatpump-forecast projects the yearly heating costs of a household before
and after installing a heat pump, using energy price evolution models fitted
from monthly price history, and reports the payback of the investment.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(opts.envFile, cmd.Flags().Changed("env-file"))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "environment file with HPF_ overrides")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	cmd.AddCommand(
		newProjectCmd(opts),
		newAnalyzeCmd(opts),
		newAidCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadEnv loads the environment file. A missing default file is not an error.
func loadEnv(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to load environment file %s: %w", path, err)
	}
	return nil
}

// load reads the configuration and builds the logger it describes.
func (o *rootOptions) load() (*config.Configuration, *zap.Logger, error) {
	conf, err := config.LoadConfiguration(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, o.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return conf, logger, nil
}

// format returns the output format, the CLI override taking precedence
// over the configuration.
func (o *rootOptions) format(conf *config.Configuration) (string, error) {
	outputFormat := conf.Output.Format
	if o.outputFormat != "" {
		outputFormat = o.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return "", err
	}
	return outputFormat, nil
}

// newProvider returns the model provider backed by the configured price
// history directory, or nil when none is configured.
func newProvider(ctx context.Context, logger *zap.Logger, conf config.EvolutionConfig) (forecast.ModelProvider, func() error, error) {
	if conf.HistoryDir == "" {
		return nil, func() error { return nil }, nil
	}

	store, closeStore, err := modelcache.OpenStore(ctx, logger, conf.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open model cache: %w", err)
	}
	fitter := modelcache.NewFitter(logger, pricehistory.DirSource{Dir: conf.HistoryDir}, store, conf.Freshness)
	return fitter, closeStore, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}
