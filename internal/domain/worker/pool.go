package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSize is the pool size used when none is configured
const DefaultSize = 3

// Listener receives a snapshot on every queue or active-set change
type Listener func(types.PoolSnapshot)

// Option configures a Pool
type Option func(*Pool)

// WithLogger sets the pool logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records pool activity on the given collector
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(p *Pool) {
		p.metrics = metrics
	}
}

type job struct {
	id      string
	task    string
	payload json.RawMessage
	future  *Future
	worker  *worker
	started time.Time
}

func (j *job) info() types.JobInfo {
	info := types.JobInfo{ID: j.id, Task: j.task}
	if j.worker != nil {
		info.Worker = j.worker.index
	}
	return info
}

// Pool is a fixed set of workers fed from a FIFO queue
type Pool struct {
	size    int
	tasks   Tasks
	logger  *zap.Logger
	metrics *monitoring.Metrics

	// ctx is handed to task handlers and cancelled on Destroy
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	workers []*worker
	idle    []*worker
	queue   []*job
	active  map[string]*job
	closed  bool

	notifyMu     sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// NewPool starts size workers serving tasks. A size below one uses DefaultSize.
func NewPool(size int, tasks Tasks, opts ...Option) *Pool {
	if size < 1 {
		size = DefaultSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		size:      size,
		tasks:     tasks,
		logger:    zap.NewNop(),
		ctx:       ctx,
		cancel:    cancel,
		active:    make(map[string]*job),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := 1; i <= size; i++ {
		w := newWorker(i, p)
		p.workers = append(p.workers, w)
		p.idle = append(p.idle, w)
		p.wg.Add(1)
		go w.run()
	}

	p.logger.Info("Worker pool started", zap.Int("size", size))
	return p
}

// Size returns the number of workers
func (p *Pool) Size() int {
	return p.size
}

// Tasks returns the task names the workers can run
func (p *Pool) Tasks() []string {
	return p.tasks.Names()
}

// Submit queues a job and schedules it if a worker is idle. The payload is
// encoded as JSON unless it already is a json.RawMessage.
func (p *Pool) Submit(task string, payload any) (*Future, error) {
	raw, err := encodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	j := &job{
		id:      uuid.NewString(),
		task:    task,
		payload: raw,
	}
	j.future = newFuture(j.id, task)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolShutdown
	}

	p.queue = append(p.queue, j)
	p.schedule()

	p.logger.Debug("Job submitted",
		zap.String("job_id", j.id),
		zap.String("task", task),
		zap.Int("queued", len(p.queue)),
		zap.Int("active", len(p.active)))

	p.commit()
	return j.future, nil
}

// Run submits a job and waits for it. Cancelling ctx stops the wait only.
func (p *Pool) Run(ctx context.Context, task string, payload any) (json.RawMessage, error) {
	f, err := p.Submit(task, payload)
	if err != nil {
		return nil, err
	}
	return f.Wait(ctx)
}

// schedule binds queued jobs to idle workers. Called with mu held.
func (p *Pool) schedule() {
	for len(p.queue) > 0 && len(p.idle) > 0 {
		j := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]

		w := p.idle[0]
		p.idle = p.idle[1:]

		j.worker = w
		j.started = time.Now()
		p.active[j.id] = j

		// An idle worker's inbox is empty, so this never blocks.
		w.inbox <- types.TaskRequest{ID: j.id, Task: j.task, Payload: j.payload}
	}
}

// complete handles a worker's response: it settles the job, returns the
// worker to the idle list and schedules the next queued job.
func (p *Pool) complete(w *worker, resp types.TaskResponse) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	j, ok := p.active[resp.ID]
	if !ok {
		p.mu.Unlock()
		p.logger.Warn("Response for unknown job", zap.String("job_id", resp.ID))
		return
	}

	delete(p.active, resp.ID)
	p.idle = append(p.idle, w)
	p.schedule()

	var (
		result json.RawMessage
		err    error
		status = "ok"
	)
	if resp.Failed() {
		status = "error"
		err = &TaskError{
			JobID:   j.id,
			Task:    j.task,
			Message: resp.Error,
			unknown: resp.Error == unknownTaskMessage(j.task),
		}
		p.logger.Debug("Job failed",
			zap.String("job_id", j.id),
			zap.String("task", j.task),
			zap.String("error", resp.Error))
	} else {
		result = resp.Result
	}
	p.metrics.RecordJob(j.task, status, time.Since(j.started))

	p.commit()
	j.future.settle(result, err)
}

// Destroy stops every worker and rejects all outstanding jobs with
// ErrPoolShutdown. It waits for running handlers to return.
func (p *Pool) Destroy() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true

	outstanding := make([]*job, 0, len(p.queue)+len(p.active))
	outstanding = append(outstanding, p.queue...)
	for _, j := range p.active {
		outstanding = append(outstanding, j)
	}
	p.queue = nil
	clear(p.active)
	p.idle = nil

	for _, w := range p.workers {
		close(w.inbox)
	}
	p.cancel()

	p.logger.Info("Worker pool shut down", zap.Int("rejected", len(outstanding)))
	p.commit()

	for _, j := range outstanding {
		j.future.settle(nil, ErrPoolShutdown)
	}

	p.wg.Wait()
}

// Snapshot returns the queue and active jobs
func (p *Pool) Snapshot() types.PoolSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Subscribe registers a listener and returns its unsubscribe function
func (p *Pool) Subscribe(fn Listener) func() {
	p.notifyMu.Lock()
	key := p.nextListener
	p.nextListener++
	p.listeners[key] = fn
	p.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.notifyMu.Lock()
			delete(p.listeners, key)
			p.notifyMu.Unlock()
		})
	}
}

func (p *Pool) snapshotLocked() types.PoolSnapshot {
	snap := types.PoolSnapshot{
		Queue:      make([]types.JobInfo, len(p.queue)),
		ActiveJobs: make([]types.JobInfo, 0, len(p.active)),
		Size:       p.size,
	}
	for i, j := range p.queue {
		snap.Queue[i] = j.info()
	}
	for _, w := range p.workers {
		for _, j := range p.active {
			if j.worker == w {
				snap.ActiveJobs = append(snap.ActiveJobs, j.info())
			}
		}
	}
	return snap
}

// commit publishes the current state. Must be called with mu held; it
// releases mu before running listeners.
func (p *Pool) commit() {
	snap := p.snapshotLocked()

	p.notifyMu.Lock()
	p.mu.Unlock()
	defer p.notifyMu.Unlock()

	p.metrics.SetPoolState(len(snap.ActiveJobs), len(snap.Queue))

	for _, fn := range p.listeners {
		fn(snap)
	}
}

func encodePayload(payload any) (json.RawMessage, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	default:
		return sonic.Marshal(v)
	}
}
