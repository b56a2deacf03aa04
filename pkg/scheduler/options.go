package scheduler

import (
	"log/slog"
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/metrics"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithCheckInterval sets how often due jobs are checked. Defaults to 30s.
func WithCheckInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLocker guards every run with a distributed lock.
func WithLocker(l Locker) Option {
	return func(s *Scheduler) { s.locker = l }
}

func WithMetrics(m *metrics.JobMetrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source passed to jobs.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// JobOption configures a registered job.
type JobOption func(*job)

// WithLockTTL sets how long a run may hold its lock. Defaults to the
// schedule's first interval, capped at 10 minutes.
func WithLockTTL(d time.Duration) JobOption {
	return func(j *job) {
		if d > 0 {
			j.lockTTL = d
		}
	}
}

// WithTimeout bounds a single run. Zero means no bound.
func WithTimeout(d time.Duration) JobOption {
	return func(j *job) {
		if d > 0 {
			j.timeout = d
		}
	}
}
