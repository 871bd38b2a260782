package scheduler

import "errors"

var (
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	ErrJobQueueFull        = errors.New("job queue is full")
	// ErrNoHandler is returned by Submit for a job kind nobody registered.
	ErrNoHandler = errors.New("no handler registered for job kind")
)
