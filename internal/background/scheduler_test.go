package background

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func startScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s := NewScheduler(SchedulerConfig{WorkerCount: 1, QueueSize: 4})
	s.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

func TestScheduler_RequiresStart(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	err := s.Schedule(Job{Name: "warm", Run: func(context.Context) error { return nil }})
	if !errors.Is(err, ErrSchedulerNotStarted) {
		t.Fatalf("expected ErrSchedulerNotStarted, got %v", err)
	}
}

func TestScheduler_ValidatesJobs(t *testing.T) {
	s := startScheduler(t)

	if err := s.Schedule(Job{Run: func(context.Context) error { return nil }}); err == nil {
		t.Fatalf("expected an error for a job without a name")
	}
	if err := s.Schedule(Job{Name: "warm"}); err == nil {
		t.Fatalf("expected an error for a job without a runner")
	}
}

func TestScheduler_RetriesFailedJobs(t *testing.T) {
	s := startScheduler(t)

	var attempts int32
	done := make(chan struct{})
	err := s.Schedule(Job{
		Name: "warm",
		Run: func(context.Context) error {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return errors.New("cache unavailable")
			}
			close(done)
			return nil
		},
		RetryPolicy: RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not succeed after retries, attempts=%d", atomic.LoadInt32(&attempts))
	}
}

func TestScheduler_RetryDoesNotBlockOnFullQueue(t *testing.T) {
	s := NewScheduler(SchedulerConfig{WorkerCount: 1, QueueSize: 1})
	s.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})

	running := make(chan struct{})
	proceed := make(chan struct{})
	retried := make(chan struct{})
	var attempts int32
	err := s.Schedule(Job{
		Name: "warm",
		Run: func(context.Context) error {
			if atomic.AddInt32(&attempts, 1) == 1 {
				close(running)
				<-proceed
				return errors.New("cache unavailable")
			}
			close(retried)
			return nil
		},
		RetryPolicy: RetryPolicy{MaxRetries: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-running

	other := make(chan struct{})
	if err := s.Schedule(Job{Name: "other", Run: func(context.Context) error {
		close(other)
		return nil
	}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(proceed)

	for _, ch := range []chan struct{}{other, retried} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("worker stalled behind a full queue, attempts=%d", atomic.LoadInt32(&attempts))
		}
	}
}

func TestScheduler_UniqueJobs(t *testing.T) {
	s := startScheduler(t)

	release := make(chan struct{})
	finished := make(chan struct{})
	job := Job{
		Name: "warm",
		Run: func(context.Context) error {
			<-release
			close(finished)
			return nil
		},
	}

	if err := s.ScheduleUnique(job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.ScheduleUnique(job); !errors.Is(err, ErrJobAlreadyScheduled) {
		t.Fatalf("expected ErrJobAlreadyScheduled, got %v", err)
	}

	close(release)
	<-finished

	deadline := time.Now().Add(2 * time.Second)
	for s.Pending() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected the unique job to be released")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestScheduler_RecoversPanics(t *testing.T) {
	s := startScheduler(t)

	ran := make(chan struct{})
	s.Schedule(Job{Name: "panics", Run: func(context.Context) error { panic("boom") }})
	s.Schedule(Job{Name: "after", Run: func(context.Context) error {
		close(ran)
		return nil
	}})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not survive a panicking job")
	}
}

func TestScheduler_ShutdownCancelsRunningJobs(t *testing.T) {
	s := NewScheduler(SchedulerConfig{WorkerCount: 1})
	s.Start(context.Background())

	started := make(chan struct{})
	s.Schedule(Job{Name: "slow", Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}

	if err := s.Schedule(Job{Name: "late", Run: func(context.Context) error { return nil }}); err == nil {
		t.Fatalf("expected scheduling after shutdown to fail")
	}
}
