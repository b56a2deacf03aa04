package sweeper

import "errors"

var (
	ErrFailedToList = errors.New("sweeper.errors.failed_to_list_candidates")
	ErrFailedToLock = errors.New("sweeper.errors.failed_to_lock_resources")
)
