// Package jobs runs periodic maintenance on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"filehub/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultJobTimeout = 30 * time.Minute

// Task is one maintenance run. The context is cancelled when the scheduler
// stops or the job times out.
type Task func(ctx context.Context) error

// Scheduler runs named tasks on standard five-field cron expressions.
// A task that is still running when its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	timeout time.Duration

	mu      sync.RWMutex
	entries map[string]cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := log.Named("jobs")
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{l}),
			cron.SkipIfStillRunning(cronLogger{l}),
		)),
		log:     l,
		timeout: defaultJobTimeout,
		entries: make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds task under name. An empty schedule disables the job.
func (s *Scheduler) Register(name, schedule string, task Task) error {
	if schedule == "" {
		s.log.Info("job disabled", zap.String("job", name))
		return nil
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron expression for %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	id, err := s.cron.AddFunc(schedule, func() { s.execute(name, task) })
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.entries[name] = id
	s.log.Info("job registered", zap.String("job", name), zap.String("schedule", schedule))
	return nil
}

// RunNow executes a registered task synchronously, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	id, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %s not registered", name)
	}
	s.cron.Entry(id).WrappedJob.Run()
	return nil
}

// Next reports when name is due next; zero if unknown or not started.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.entries)))
}

// Stop cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) execute(name string, task Task) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := task(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", name), zap.Duration("duration", time.Since(start)), logger.SafeError(err))
		return
	}
	s.log.Info("job completed", zap.String("job", name), zap.Duration("duration", time.Since(start)))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ l *zap.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
