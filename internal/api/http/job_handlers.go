package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/GriffinCanCode/WebOS/internal/domain/worker"
	"github.com/GriffinCanCode/WebOS/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// maxTrackedJobs bounds how many submitted jobs stay queryable
const maxTrackedJobs = 256

// JobRequest submits a task to the worker pool. With Wait set the response
// carries the result; otherwise the job id is returned for polling.
type JobRequest struct {
	Task    string          `json:"task"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Wait    bool            `json:"wait,omitempty"`
}

// JobStatus is the polled view of a submitted job
type JobStatus struct {
	ID     string          `json:"id"`
	Task   string          `json:"task"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

const (
	jobPending   = "pending"
	jobCompleted = "completed"
	jobFailed    = "failed"
)

// jobTracker remembers recent futures so async submissions can be polled.
// Once full, the oldest settled job is forgotten first.
type jobTracker struct {
	mu    sync.Mutex
	limit int
	order []string
	jobs  map[string]*worker.Future
}

func newJobTracker(limit int) *jobTracker {
	return &jobTracker{
		limit: limit,
		jobs:  make(map[string]*worker.Future),
	}
}

func (t *jobTracker) add(f *worker.Future) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.order) >= t.limit {
		t.evictLocked()
	}
	t.jobs[f.ID()] = f
	t.order = append(t.order, f.ID())
}

// evictLocked drops the oldest settled job, or the oldest job when none has settled
func (t *jobTracker) evictLocked() {
	victim := 0
	for i, jid := range t.order {
		select {
		case <-t.jobs[jid].Done():
			victim = i
		default:
			continue
		}
		break
	}
	delete(t.jobs, t.order[victim])
	t.order = append(t.order[:victim], t.order[victim+1:]...)
}

func (t *jobTracker) get(jobID string) (*worker.Future, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.jobs[jobID]
	return f, ok
}

func statusOf(f *worker.Future) JobStatus {
	st := JobStatus{ID: f.ID(), Task: f.Task(), Status: jobPending}

	select {
	case <-f.Done():
	default:
		return st
	}

	result, err := f.Result()
	if err != nil {
		st.Status = jobFailed
		st.Error = err.Error()
		return st
	}
	st.Status = jobCompleted
	st.Result = result
	return st
}

// ListJobs returns the pool's queue and active jobs
func (h *Handlers) ListJobs(c *gin.Context) {
	snap := h.pool.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"pool":  snap,
		"tasks": h.pool.Tasks(),
	})
}

// SubmitJob queues a task
func (h *Handlers) SubmitJob(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateTaskName(req.Task); err != nil {
		badRequest(c, err)
		return
	}

	future, err := h.pool.Submit(req.Task, req.Payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.jobs.add(future)

	if !req.Wait {
		c.JSON(http.StatusAccepted, statusOf(future))
		return
	}

	result, err := future.Wait(c.Request.Context())
	if err != nil {
		var taskErr *worker.TaskError
		if errors.As(err, &taskErr) && !errors.Is(err, worker.ErrUnknownTask) {
			c.JSON(http.StatusUnprocessableEntity, statusOf(future))
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, JobStatus{
		ID:     future.ID(),
		Task:   future.Task(),
		Status: jobCompleted,
		Result: result,
	})
}

// GetJob polls a submitted job
func (h *Handlers) GetJob(c *gin.Context) {
	jobID := c.Param("id")
	if err := utils.ValidateID(jobID, "job_id", true); err != nil {
		badRequest(c, err)
		return
	}

	future, ok := h.jobs.get(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, statusOf(future))
}
