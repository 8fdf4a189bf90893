package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/econ-series/internal/config"
	"github.com/rxtech-lab/econ-series/internal/logger"
	"github.com/rxtech-lab/econ-series/internal/version"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata"
	"github.com/urfave/cli/v3"
)

// loadConfig loads the .env file and the YAML config named by the global flags.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(cmd.String("env-file")); err != nil {
		return nil, err
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newFetcher builds the logger and fetcher for cfg.
func newFetcher(cfg *config.Config) (*seriesdata.Fetcher, *logger.Logger, error) {
	l, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return seriesdata.NewFetcher(cfg.FetcherConfig(), seriesdata.WithLogger(l)), l, nil
}

func providersAction(_ context.Context, _ *cli.Command) error {
	infos := make([]seriesdata.ProviderInfo, 0)
	for _, name := range seriesdata.GetSupportedProviders() {
		info, err := seriesdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		infos = append(infos, info)
	}

	fmt.Println(renderProviders(infos))

	return nil
}

func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := seriesdata.GetRequestSchema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schema)

	return nil
}

func versionAction(_ context.Context, _ *cli.Command) error {
	fmt.Printf("series %s (config format %s)\n", version.GetVersion(), version.ConfigVersion)

	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "series",
		Usage:   "Fetch economic and market time series into tidy files",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "series.yaml",
				Sources: cli.EnvVars("SERIES_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file with API keys",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error). Overrides the config file.",
			},
		},
		Commands: []*cli.Command{
			fetchCommand(),
			batchCommand(),
			scheduleCommand(),
			{
				Name:   "providers",
				Usage:  "List the supported series providers",
				Action: providersAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of a series request",
				Action: schemaAction,
			},
			{
				Name:   "version",
				Usage:  "Print the version",
				Action: versionAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
