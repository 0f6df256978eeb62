package syncer

import "sync"

// executor serializes local-store mutations coming from background completion
// callbacks (live-subscription deliveries, pull merges, dirty-flag clearing)
// onto one goroutine, so the object graph is never mutated concurrently.
type executor struct {
	mu      sync.Mutex
	jobs    chan func()
	stopped bool
	wg      sync.WaitGroup
}

func newExecutor() *executor {
	return &executor{jobs: make(chan func(), 64)}
}

func (e *executor) start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for job := range e.jobs {
			job()
		}
	}()
}

// stop drains pending jobs and waits for the worker to exit. Jobs submitted
// after stop are dropped.
func (e *executor) stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.jobs)
	e.mu.Unlock()

	e.wg.Wait()
}

// do enqueues a job, reporting false when the executor is already stopped.
func (e *executor) do(job func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return false
	}
	e.jobs <- job
	return true
}

// doWait runs a job on the worker and blocks until it completes.
func (e *executor) doWait(job func()) bool {
	done := make(chan struct{})
	if !e.do(func() {
		defer close(done)
		job()
	}) {
		return false
	}
	<-done
	return true
}
