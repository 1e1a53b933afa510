package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"trident-dashboards/pkg/logger"
)

type SchedulerConfig struct {
	WorkerCount int
	QueueSize   int
}

type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// Job is a unit of background work such as warming the dashboard cache.
type Job struct {
	Name        string
	Run         func(ctx context.Context) error
	Delay       time.Duration
	Timeout     time.Duration
	RetryPolicy RetryPolicy
}

var (
	ErrSchedulerNotStarted   = errors.New("scheduler not started")
	ErrJobAlreadyScheduled   = errors.New("job already scheduled")
	errSchedulerShuttingDown = errors.New("scheduler is shutting down")
)

type Scheduler struct {
	config SchedulerConfig

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool

	queue chan scheduledJob

	workers sync.WaitGroup
	running sync.WaitGroup
	retries sync.WaitGroup

	pending map[string]struct{}
}

type scheduledJob struct {
	job     Job
	attempt int
	unique  bool
}

var (
	metricsOnce        sync.Once
	jobRunsTotal       *prometheus.CounterVec
	jobDurationSeconds *prometheus.HistogramVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trident",
			Subsystem: "background",
			Name:      "job_runs_total",
			Help:      "Background job executions by outcome",
		}, []string{"job", "status"})

		jobDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trident",
			Subsystem: "background",
			Name:      "job_duration_seconds",
			Help:      "Duration of background job executions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"})
	})
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	initMetrics()

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}

	return &Scheduler{
		config:  cfg,
		queue:   make(chan scheduledJob, cfg.QueueSize),
		pending: make(map[string]struct{}),
	}
}

// Start launches the workers. Cancelling ctx stops them like Shutdown does.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true

	for i := 0; i < s.config.WorkerCount; i++ {
		s.workers.Add(1)
		go s.worker()
	}
}

func (s *Scheduler) worker() {
	defer s.workers.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case job := <-s.queue:
			s.execute(job)
		}
	}
}

func (s *Scheduler) execute(job scheduledJob) {
	if job.job.Delay > 0 {
		timer := time.NewTimer(job.job.Delay)
		select {
		case <-timer.C:
		case <-s.ctx.Done():
			timer.Stop()
			s.finish(job, context.Canceled)
			return
		}
	}

	s.running.Add(1)
	defer s.running.Done()

	err := s.run(job)
	if err != nil && s.shouldRetry(job, err) {
		s.retryLater(job, err)
		return
	}

	s.finish(job, err)
}

// retryLater re-queues a failed job after its backoff. It waits on its own
// goroutine so a full queue never blocks the worker that ran the job.
func (s *Scheduler) retryLater(failed scheduledJob, cause error) {
	retry := failed
	retry.attempt++
	retry.job.Delay = 0

	s.retries.Add(1)
	go func() {
		defer s.retries.Done()

		if backoff := failed.job.RetryPolicy.Backoff; backoff > 0 {
			timer := time.NewTimer(backoff)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-s.ctx.Done():
				s.finish(failed, cause)
				return
			}
		}

		if !s.enqueue(retry) {
			s.finish(failed, cause)
		}
	}()
}

func (s *Scheduler) run(job scheduledJob) (err error) {
	start := time.Now()
	status := "success"

	ctx := s.ctx
	if job.job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.job.Timeout)
		defer cancel()
	}
	ctx = logger.ContextWithFields(ctx, map[string]interface{}{
		"job":     job.job.Name,
		"attempt": job.attempt,
	})

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			status = "failure"
		}
		jobDurationSeconds.WithLabelValues(job.job.Name).Observe(time.Since(start).Seconds())
		jobRunsTotal.WithLabelValues(job.job.Name, status).Inc()
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		status = "canceled"
		return ctxErr
	}

	if err = job.job.Run(ctx); err != nil {
		status = "failure"
		if errors.Is(err, context.Canceled) {
			status = "canceled"
		}
	}
	return err
}

func (s *Scheduler) shouldRetry(job scheduledJob, err error) bool {
	if job.job.RetryPolicy.MaxRetries <= 0 || errors.Is(err, context.Canceled) {
		return false
	}
	return job.attempt <= job.job.RetryPolicy.MaxRetries
}

func (s *Scheduler) enqueue(job scheduledJob) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case <-s.ctx.Done():
		return false
	case s.queue <- job:
		return true
	}
}

func (s *Scheduler) finish(job scheduledJob, err error) {
	if job.unique {
		s.mu.Lock()
		delete(s.pending, job.job.Name)
		s.mu.Unlock()
	}

	fields := map[string]interface{}{"job": job.job.Name, "attempt": job.attempt}
	switch {
	case err == nil:
		logger.Info("Background job completed", fields)
	case errors.Is(err, context.Canceled):
		logger.Warn("Background job canceled", fields)
	default:
		logger.Error(err, "Background job failed", fields)
	}
}

func (s *Scheduler) Schedule(job Job) error {
	return s.schedule(job, false)
}

// ScheduleUnique rejects the job while another job with the same name is
// queued or running.
func (s *Scheduler) ScheduleUnique(job Job) error {
	return s.schedule(job, true)
}

func (s *Scheduler) schedule(job Job, unique bool) error {
	if job.Name == "" {
		return errors.New("job name is required")
	}
	if job.Run == nil {
		return errors.New("job runner is required")
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrSchedulerNotStarted
	}
	if unique {
		if _, exists := s.pending[job.Name]; exists {
			s.mu.Unlock()
			return ErrJobAlreadyScheduled
		}
		s.pending[job.Name] = struct{}{}
	}
	s.mu.Unlock()

	if !s.enqueue(scheduledJob{job: job, attempt: 1, unique: unique}) {
		if unique {
			s.mu.Lock()
			delete(s.pending, job.Name)
			s.mu.Unlock()
		}
		return errSchedulerShuttingDown
	}

	return nil
}

func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	s.started = false
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		s.running.Wait()
		s.retries.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports how many unique jobs are queued or running.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
