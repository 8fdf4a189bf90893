package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/econ-series/internal/config"
	"github.com/rxtech-lab/econ-series/internal/scheduler"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Run the batch on the config's cron schedule until interrupted",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "run-on-start",
				Usage:   "Run the batch once before waiting for the schedule",
				Sources: cli.EnvVars("RUN_ON_START"),
			},
		},
		Action: scheduleAction,
	}
}

func scheduleAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	schedule, err := config.ParseSchedule(cfg.Schedule)
	if err != nil {
		return err
	}

	fetcher, l, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	defer l.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := func(ctx context.Context) error {
		return runBatch(ctx, cfg, fetcher, nil)
	}

	s := scheduler.NewScheduler(l)
	s.Register("batch", schedule, job)

	if cmd.Bool("run-on-start") {
		// Failures are logged by the scheduler; keep waiting for the next run.
		_ = s.RunNow(ctx, "batch", job)
	}

	l.Info("Waiting for schedule", zap.String("schedule", cfg.Schedule), zap.Int("series", len(cfg.Series)))

	return s.Run(ctx)
}
