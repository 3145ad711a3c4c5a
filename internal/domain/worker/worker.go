package worker

import (
	"fmt"

	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"github.com/bytedance/sonic"
)

// worker executes one request at a time and reports back to its pool
type worker struct {
	index int
	pool  *Pool
	inbox chan types.TaskRequest
}

func newWorker(index int, p *Pool) *worker {
	return &worker{
		index: index,
		pool:  p,
		inbox: make(chan types.TaskRequest, 1),
	}
}

func (w *worker) run() {
	defer w.pool.wg.Done()

	for req := range w.inbox {
		w.pool.complete(w, w.execute(req))
	}
}

// execute answers exactly one response for req
func (w *worker) execute(req types.TaskRequest) (resp types.TaskResponse) {
	resp.ID = req.ID

	defer func() {
		if r := recover(); r != nil {
			resp.Result = nil
			resp.Error = fmt.Sprintf("task %s panicked: %v", req.Task, r)
		}
	}()

	handler, ok := w.pool.tasks[req.Task]
	if !ok {
		resp.Error = unknownTaskMessage(req.Task)
		return resp
	}

	value, err := handler(w.pool.ctx, req.Payload)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	result, err := sonic.Marshal(value)
	if err != nil {
		resp.Error = fmt.Sprintf("failed to encode result: %v", err)
		return resp
	}
	resp.Result = result
	return resp
}
