package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rxtech-lab/econ-series/internal/config"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Fetch every series listed in the config file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Hide the progress bar",
			},
		},
		Action: batchAction,
	}
}

func batchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fetcher, l, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	defer l.Sync() //nolint:errcheck

	var progress io.Writer
	if !cmd.Bool("quiet") {
		progress = os.Stderr
	}

	return runBatch(ctx, cfg, fetcher, progress)
}

// runBatch fetches and exports every configured series. A progress bar is
// drawn on progress when it is not nil.
func runBatch(ctx context.Context, cfg *config.Config, fetcher *seriesdata.Fetcher, progress io.Writer) error {
	requests, err := cfg.Requests()
	if err != nil {
		return err
	}

	if len(requests) == 0 {
		return fmt.Errorf("no series configured, add a series: list to the config file")
	}

	format, err := cfg.ExportFormat()
	if err != nil {
		return err
	}

	var onProgress func(int, seriesdata.BatchResult)

	if progress != nil {
		bar := progressbar.NewOptions(len(requests),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("Fetching series"),
			progressbar.OptionShowCount(),
		)
		defer bar.Finish() //nolint:errcheck

		onProgress = func(_ int, result seriesdata.BatchResult) {
			bar.Describe(result.Request.Symbol)
			_ = bar.Add(1)
		}
	}

	_, err = fetcher.FetchBatch(ctx, requests, seriesdata.FileWriterFactory(cfg.Export.Dir, format), onProgress)

	return err
}
