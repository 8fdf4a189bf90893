package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/econ-series/internal/logger"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"go.uber.org/zap"
)

// Job is a unit of scheduled work. ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron schedules until its context is cancelled.
// A run that is still going when the next one is due is skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger

	mu  sync.Mutex
	ctx context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(l *logger.Logger) *Scheduler {
	cl := cronLogger{l: l.Sugar()}

	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			// Recover sits inside SkipIfStillRunning so a panic still releases the run slot.
			cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
		),
		logger: l,
		ctx:    context.Background(),
	}
}

// Register schedules job under name.
func (s *Scheduler) Register(name string, schedule cron.Schedule, job Job) {
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.runJob(name, job)
	}))
}

// RunNow executes a job immediately on the caller's goroutine (for RUN_ON_START style triggers).
func (s *Scheduler) RunNow(ctx context.Context, name string, job Job) error {
	return s.run(ctx, name, job)
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits
// for running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.cron.Entries())))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")

	return nil
}

func (s *Scheduler) runJob(name string, job Job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	_ = s.run(ctx, name, job)
}

func (s *Scheduler) run(ctx context.Context, name string, job Job) error {
	s.logger.Info("Running scheduled job", zap.String("job", name))

	if err := job(ctx); err != nil {
		s.logger.Error("Scheduled job failed",
			zap.String("job", name),
			zap.Error(err),
			zap.Int("code", int(errors.GetCode(err))),
		)

		return err
	}

	s.logger.Info("Scheduled job finished", zap.String("job", name))

	return nil
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
