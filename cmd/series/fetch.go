package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/econ-series/pkg/seriesdata"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata/writer"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch one series and export it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Provider series identifier (e.g. USACPALTT01CTGYM)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Provider to fetch from (%v)", seriesdata.GetSupportedProviders()),
				Value:   string(timeseries.SourceFRED),
			},
			&cli.TimestampFlag{
				Name:     "start",
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Timezone: time.UTC,
					Layouts:  []string{timeseries.DateLayout},
				},
			},
			&cli.TimestampFlag{
				Name:  "end",
				Usage: "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value: time.Now().UTC(),
				Config: cli.TimestampConfig{
					Timezone: time.UTC,
					Layouts:  []string{timeseries.DateLayout},
				},
			},
			&cli.StringFlag{
				Name:    "periodicity",
				Aliases: []string{"f"},
				Usage:   "Sampling granularity (daily, weekly, monthly, annual)",
				Value:   string(timeseries.PeriodicityMonthly),
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: fmt.Sprintf("Export format (%v). Defaults to the config's export.format.", writer.Formats()),
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Export directory. Defaults to the config's export.dir.",
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Print the points and a summary table",
			},
			&cli.BoolFlag{
				Name:  "no-export",
				Usage: "Only fetch, do not write a file",
			},
		},
		Action: fetchAction,
	}
}

func fetchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	periodicity, err := timeseries.ParsePeriodicity(cmd.String("periodicity"))
	if err != nil {
		return err
	}

	req := timeseries.Request{
		Symbol:      cmd.String("symbol"),
		Source:      timeseries.Source(cmd.String("source")),
		StartDate:   cmd.Timestamp("start"),
		EndDate:     cmd.Timestamp("end"),
		Periodicity: periodicity,
	}

	fetcher, l, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	defer l.Sync() //nolint:errcheck

	var series *timeseries.Series

	if cmd.Bool("no-export") {
		series, err = fetcher.Fetch(ctx, req)
		if err != nil {
			return err
		}
	} else {
		formatName := cmd.String("format")
		if formatName == "" {
			formatName = cfg.Export.Format
		}

		format, err := writer.ParseFormat(formatName)
		if err != nil {
			return err
		}

		dir := cmd.String("out")
		if dir == "" {
			dir = cfg.Export.Dir
		}

		w, err := seriesdata.FileWriterFactory(dir, format)(req)
		if err != nil {
			return err
		}

		var path string

		series, path, err = fetcher.FetchAndWrite(ctx, req, w)
		if err != nil {
			return err
		}

		l.Info("Series written", zap.String("path", path))
	}

	if cmd.Bool("print") {
		fmt.Println(renderSeries(series))
	}

	return nil
}
