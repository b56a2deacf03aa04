package async

import "errors"

var (
	ErrDispatcherClosed = errors.New("async.errors.dispatcher_closed")
	ErrTaskPanicked     = errors.New("async.errors.task_panicked")
)
