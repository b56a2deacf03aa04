package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/metrics"
)

const maxLockTTL = 10 * time.Minute

// Job is one periodic unit of work. now is the scheduler's clock at the
// time the run started.
type Job func(ctx context.Context, now time.Time) error

// Locker hands out exclusive, expiring locks. pkg/redis.Locker satisfies it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

type job struct {
	name     string
	schedule Schedule
	fn       Job
	lockTTL  time.Duration
	timeout  time.Duration
	nextRun  time.Time
}

// Scheduler runs registered jobs on their schedules.
type Scheduler struct {
	mu       sync.Mutex
	jobs     map[string]*job
	interval time.Duration
	locker   Locker
	metrics  *metrics.JobMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:     make(map[string]*job),
		interval: 30 * time.Second,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("scheduler"))
	return s
}

// Add registers fn under name. The first run happens on the first check.
func (s *Scheduler) Add(name string, schedule Schedule, fn Job, opts ...JobOption) error {
	if name == "" || schedule == nil || fn == nil {
		return ErrInvalidJob
	}

	j := &job{name: name, schedule: schedule, fn: fn}
	for _, opt := range opts {
		opt(j)
	}
	if j.lockTTL == 0 {
		now := s.now()
		j.lockTTL = min(max(schedule.Next(now).Sub(now), time.Second), maxLockTTL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return ErrJobAlreadyRegistered
	}
	s.jobs[name] = j

	s.logger.Info("registered periodic job",
		logger.Job(name),
		slog.String("schedule", schedule.String()))
	return nil
}

// Start checks for due jobs immediately and then every check interval until
// ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	count := len(s.jobs)
	s.mu.Unlock()
	if count == 0 {
		return ErrNotConfigured
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runDue(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// RunNow runs the named job once, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(ctx, j, s.now())
}

func (s *Scheduler) runDue(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	due := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if j.nextRun.IsZero() || !now.Before(j.nextRun) {
			j.nextRun = j.schedule.Next(now)
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		if ctx.Err() != nil {
			return
		}
		if err := s.run(ctx, j, now); err != nil {
			s.logger.ErrorContext(ctx, "periodic job failed", logger.Job(j.name), logger.Error(err))
		}
	}
}

func (s *Scheduler) run(ctx context.Context, j *job, now time.Time) (err error) {
	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, "job:"+j.name, j.lockTTL)
		if err != nil {
			s.metrics.IncFailure(j.name)
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			s.metrics.IncSkipped(j.name)
			s.logger.DebugContext(ctx, "job locked by another instance", logger.Job(j.name))
			return nil
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				s.logger.WarnContext(ctx, "failed to release job lock", logger.Job(j.name), logger.Error(uerr))
			}
		}()
	}

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
		s.metrics.ObserveDuration(j.name, time.Since(start))
		if err != nil {
			s.metrics.IncFailure(j.name)
			return
		}
		s.metrics.IncSuccess(j.name)
		s.logger.DebugContext(ctx, "periodic job finished",
			logger.Job(j.name), logger.Duration(time.Since(start)))
	}()

	return j.fn(ctx, now)
}
