// Package scheduler runs periodic jobs for long-lived commands such as td watch.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps a cron runner whose jobs never overlap and never crash the process.
type Scheduler struct {
	c   *cron.Cron
	log *zap.Logger
}

func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		// Recover must sit inside the skip guard or a panic leaks its semaphore.
		cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
	)
	return &Scheduler{c: c, log: log}
}

// Add registers job under a standard cron spec or descriptor such as "@every 1h".
func (s *Scheduler) Add(spec, name string, job func(ctx context.Context)) error {
	_, err := s.c.AddFunc(spec, func() {
		s.log.Debug("job started", zap.String("job", name))
		job(context.Background())
	})
	return err
}

func (s *Scheduler) Start() {
	s.c.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.c.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		s.log.Warn("cron stop timed out, jobs still running")
		return ctx.Err()
	}
}

type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
