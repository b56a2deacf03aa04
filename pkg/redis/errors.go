package redis

import "errors"

var (
	ErrInvalidURL        = errors.New("redis.errors.invalid_url")
	ErrNotReady          = errors.New("redis.errors.not_ready")
	ErrHealthcheckFailed = errors.New("redis.errors.healthcheck_failed")
	ErrLockKeyRequired   = errors.New("redis.errors.lock_key_required")
)
