// Package scheduler periodically publishes drafts whose scheduled time
// has passed.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultSpec checks for due drafts once a minute.
const DefaultSpec = "@every 1m"

// DuePublisher publishes every draft that is due.
type DuePublisher interface {
	PublishDue(ctx context.Context) (int, error)
}

// ValidateSpec reports whether spec is a standard cron expression or
// descriptor such as "@every 30s".
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("scheduler: invalid spec %q: %w", spec, err)
	}
	return nil
}

// Scheduler runs a DuePublisher on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	job    DuePublisher
	logger *slog.Logger
	ctx    context.Context
}

// New creates a scheduler. Runs never overlap: a tick that fires while the
// previous one is still publishing is skipped.
func New(spec string, job DuePublisher, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		job:    job,
		logger: logger,
		ctx:    context.Background(),
	}
	cl := cronLogger{logger}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(spec, func() { s.Tick(s.ctx) }); err != nil {
		return nil, fmt.Errorf("scheduler: invalid spec %q: %w", spec, err)
	}
	return s, nil
}

// Run starts the cron loop and blocks until ctx is cancelled, then waits
// for a running tick to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("scheduler: started", slog.Int("jobs", len(s.cron.Entries())))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler: stopped")
	return nil
}

// Tick publishes due drafts once.
func (s *Scheduler) Tick(ctx context.Context) {
	n, err := s.job.PublishDue(ctx)
	if err != nil {
		s.logger.Error("scheduler: publish due failed",
			slog.Int("published", n),
			slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		s.logger.Info("scheduler: published due drafts", slog.Int("count", n))
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err.Error())...)
}
