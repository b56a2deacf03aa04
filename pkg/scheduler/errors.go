package scheduler

import "errors"

var (
	ErrJobAlreadyRegistered = errors.New("scheduler.errors.job_already_registered")
	ErrJobNotFound          = errors.New("scheduler.errors.job_not_found")
	ErrNotConfigured        = errors.New("scheduler.errors.no_jobs_registered")
	ErrInvalidJob           = errors.New("scheduler.errors.invalid_job")
	ErrJobPanicked          = errors.New("scheduler.errors.job_panicked")
)
