package worker

import (
	"context"
	"encoding/json"
	"sync"
)

// Future is the pending result of a submitted job
type Future struct {
	id   string
	task string

	once   sync.Once
	done   chan struct{}
	result json.RawMessage
	err    error
}

func newFuture(jobID, task string) *Future {
	return &Future{id: jobID, task: task, done: make(chan struct{})}
}

// ID returns the job id
func (f *Future) ID() string {
	return f.id
}

// Task returns the task name
func (f *Future) Task() string {
	return f.task
}

// Done is closed when the job settles
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the outcome. Only meaningful after Done is closed.
func (f *Future) Result() (json.RawMessage, error) {
	return f.result, f.err
}

// Wait blocks until the job settles or ctx ends. Giving up on the wait
// leaves the job running.
func (f *Future) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Future) settle(result json.RawMessage, err error) {
	f.once.Do(func() {
		f.result = result
		f.err = err
		close(f.done)
	})
}
