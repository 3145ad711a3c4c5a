package worker

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolShutdown settles every job still queued or running when the pool is destroyed
	ErrPoolShutdown = errors.New("worker pool shut down")

	// ErrUnknownTask is matched by task errors for names with no handler
	ErrUnknownTask = errors.New("unknown task")
)

// TaskError carries the message a worker sent back for a failed job
type TaskError struct {
	JobID   string
	Task    string
	Message string
	unknown bool
}

func (e *TaskError) Error() string {
	return e.Message
}

// Is lets errors.Is match ErrUnknownTask for unknown task responses
func (e *TaskError) Is(target error) bool {
	return e.unknown && target == ErrUnknownTask
}

func unknownTaskMessage(task string) string {
	return fmt.Sprintf("Unknown task %s", task)
}
