package prefetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingTarget struct {
	calls atomic.Int64
	err   error
}

func (c *countingTarget) Prefetch(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestNewValidatesSchedule(t *testing.T) {
	if _, err := New("", &countingTarget{}, nil, 0); !errors.Is(err, ErrDisabled) {
		t.Errorf("empty schedule: %v", err)
	}
	if _, err := New("every now and then", &countingTarget{}, nil, 0); err == nil {
		t.Error("garbage schedule should fail")
	}
	for _, spec := range []string{"@hourly", "*/15 * * * *", "@every 30s"} {
		s, err := New(spec, &countingTarget{}, time.UTC, 0)
		if err != nil {
			t.Errorf("New(%q): %v", spec, err)
			continue
		}
		_ = s.Stop(context.Background())
	}
}

func TestSchedulerTicks(t *testing.T) {
	target := &countingTarget{}
	s, err := New("@every 1s", target, time.UTC, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()

	deadline := time.Now().Add(5 * time.Second)
	for target.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if target.calls.Load() == 0 {
		t.Fatal("scheduler never ticked")
	}
	if s.Runs() != target.calls.Load() {
		t.Errorf("runs = %d, calls = %d", s.Runs(), target.calls.Load())
	}
}

func TestRunOncePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	s, err := New("@hourly", &countingTarget{err: boom}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop(context.Background())

	if err := s.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Errorf("got %v", err)
	}
	if s.Runs() != 1 {
		t.Errorf("runs = %d", s.Runs())
	}
}
