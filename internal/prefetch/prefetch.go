// Package prefetch periodically warms the quarters around the current view
// so that a long-running session has them cached before they are needed.
package prefetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	appLog "eventcal/internal/log"
)

// ErrDisabled is returned by New for an empty schedule.
var ErrDisabled = errors.New("prefetch disabled")

// Target is what a tick warms; *view.Controller satisfies it.
type Target interface {
	Prefetch(ctx context.Context) error
}

type Scheduler struct {
	spec    string
	target  Target
	timeout time.Duration
	cron    *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	runs   atomic.Int64
}

// New validates spec (standard 5-field cron or a descriptor such as
// "@hourly") and prepares a scheduler. timeout bounds a single tick; zero
// leaves it unbounded.
func New(spec string, target Target, loc *time.Location, timeout time.Duration) (*Scheduler, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrDisabled
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("prefetch schedule %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.Local
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		spec:    spec,
		target:  target,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
	logger := cronLogger{}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("prefetch schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running ticks in the background.
func (s *Scheduler) Start() {
	appLog.Info("prefetch scheduler started", "schedule", s.spec)
	s.cron.Start()
}

// Stop halts the schedule, cancels a tick in progress and waits for it
// to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.cancel()
		select {
		case <-s.cron.Stop().Done():
		case <-ctx.Done():
			err = ctx.Err()
		}
		appLog.Info("prefetch scheduler stopped", "runs", s.Runs())
	})
	return err
}

// Runs reports how many ticks have completed.
func (s *Scheduler) Runs() int64 { return s.runs.Load() }

// RunOnce performs a single tick synchronously.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	err := s.target.Prefetch(ctx)
	s.runs.Add(1)
	return err
}

func (s *Scheduler) tick() {
	if err := s.RunOnce(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		appLog.Warn("prefetch tick failed", "error", err.Error())
	}
}

// cronLogger routes cron's own diagnostics into the application log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
