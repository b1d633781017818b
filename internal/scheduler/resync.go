package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one step of a resync run.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// ResyncScheduler reloads the store caches on a cron schedule so they stay
// warm when change streams are unavailable.
type ResyncScheduler struct {
	schedule string
	timeout  time.Duration
	jobs     []Job
	logger   *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewResyncScheduler(schedule string, logger *zap.Logger, jobs ...Job) *ResyncScheduler {
	return &ResyncScheduler{
		schedule: schedule,
		timeout:  time.Minute,
		jobs:     jobs,
		logger:   logger,
	}
}

func (s *ResyncScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	l := cronLogger{s.logger.Sugar()}
	c := cron.New(cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)))
	if _, err := c.AddFunc(s.schedule, func() { _ = s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("invalid resync schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c

	s.logger.Info("Resync scheduler started", zap.String("schedule", s.schedule), zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop waits for a running resync to finish.
func (s *ResyncScheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// RunOnce runs every job in order. A failing job does not stop the others.
func (s *ResyncScheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var errs []error
	for _, job := range s.jobs {
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.logger.Warn("Resync job failed", zap.String("job", job.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", job.Name, err))
			continue
		}
		s.logger.Debug("Resync job done", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
	}
	return errors.Join(errs...)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
