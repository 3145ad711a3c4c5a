/*
Package worker runs named tasks on a fixed pool of worker goroutines.

Jobs are queued FIFO and bound to whichever worker is on the idle list;
a pool of size K never has more than K active jobs and each worker holds at
most one. Workers talk to the pool only through TaskRequest and
TaskResponse messages, exactly one response per request. Handler errors and
panics become error responses and never stop the pool.

Destroy rejects every queued and active job with ErrPoolShutdown.

	pool := worker.NewPool(3, worker.BuiltinTasks(2*time.Second))
	defer pool.Destroy()

	raw, err := pool.Run(ctx, worker.TaskFibonacci, 10) // raw == 55
*/
package worker
