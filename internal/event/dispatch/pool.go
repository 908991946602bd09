package dispatch

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Pool executes handlers on a fixed set of worker goroutines fed by a
// bounded queue. Submit never blocks the caller: when the queue is full the
// task runs on a dedicated goroutine instead of being dropped.
type Pool struct {
	// Configuration
	queueSize   int
	workerCount int

	// State
	mu       sync.RWMutex // guards queue against close during Submit
	queue    chan poolTask
	running  atomic.Bool
	wg       sync.WaitGroup
	overflow sync.WaitGroup

	panicHandler PanicHandler

	// Stats
	submitted   atomic.Uint64
	overflowed  atomic.Uint64
	processed   atomic.Uint64
	totalTimeNs atomic.Int64
}

// poolTask represents a handler invocation waiting for a worker.
type poolTask struct {
	ctx     context.Context
	event   any
	handler Handler
	done    Completion
}

// NewPool creates a new worker pool. Call Start before submitting.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		queueSize:    1024,
		workerCount:  8,
		panicHandler: defaultPanicHandler,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithQueueSize sets the task queue size.
func WithQueueSize(size int) PoolOption {
	return func(p *Pool) {
		if size > 0 {
			p.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) PoolOption {
	return func(p *Pool) {
		if count > 0 {
			p.workerCount = count
		}
	}
}

// WithPoolPanicHandler sets the panic handler for pooled execution.
func WithPoolPanicHandler(h PanicHandler) PoolOption {
	return func(p *Pool) {
		if h != nil {
			p.panicHandler = h
		}
	}
}

// Start starts the worker goroutines.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return ErrAlreadyRunning
	}

	p.queue = make(chan poolTask, p.queueSize)
	p.running.Store(true)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return nil
}

// Stop stops accepting tasks and waits for queued and overflow tasks to
// finish, or until the context is done.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		return ErrNotRunning
	}

	p.running.Store(false)
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		p.overflow.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit hands a handler invocation to the pool. The done callback, if
// non-nil, receives the Result on the goroutine that ran the handler.
// Tasks are queued in submission order.
func (p *Pool) Submit(ctx context.Context, event any, handler Handler, done Completion) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running.Load() {
		return ErrNotRunning
	}

	task := poolTask{
		ctx:     ctx,
		event:   event,
		handler: handler,
		done:    done,
	}
	p.submitted.Add(1)

	select {
	case p.queue <- task:
	default:
		p.overflowed.Add(1)
		p.overflow.Add(1)
		go func() {
			defer p.overflow.Done()
			p.run(NewExecutor(WithExecutorPanicHandler(p.panicHandler)), task)
		}()
	}
	return nil
}

// worker processes tasks from the queue.
func (p *Pool) worker() {
	defer p.wg.Done()

	executor := NewExecutor(WithExecutorPanicHandler(p.panicHandler))

	for task := range p.queue {
		p.run(executor, task)
	}
}

// run executes a single task and reports its result.
func (p *Pool) run(executor *Executor, task poolTask) {
	p.processed.Add(1)

	result := executor.Execute(task.ctx, task.event, task.handler)
	p.totalTimeNs.Add(result.Duration.Nanoseconds())

	if task.done == nil {
		return
	}

	// The completion callback runs user-facing feedback code; keep the
	// worker alive if it panics.
	defer func() {
		if r := recover(); r != nil {
			func() {
				defer func() { _ = recover() }()
				p.panicHandler(task.event, r, debug.Stack())
			}()
		}
	}()
	task.done(result)
}

// QueueDepth returns the current number of tasks in the queue.
// Returns 0 if the pool is not running.
func (p *Pool) QueueDepth() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running.Load() {
		return 0
	}
	return len(p.queue)
}

// Stats returns pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Submitted:     p.submitted.Load(),
		Overflowed:    p.overflowed.Load(),
		Processed:     p.processed.Load(),
		QueueDepth:    p.QueueDepth(),
		TotalDuration: time.Duration(p.totalTimeNs.Load()),
	}
}

// PoolStats contains statistics for a worker pool.
type PoolStats struct {
	// Submitted is the total number of tasks handed to the pool.
	Submitted uint64

	// Overflowed is the number of tasks that ran outside the workers
	// because the queue was full.
	Overflowed uint64

	// Processed is the number of tasks that have been executed.
	Processed uint64

	// QueueDepth is the current number of tasks waiting in the queue.
	QueueDepth int

	// TotalDuration is the cumulative time spent processing tasks.
	TotalDuration time.Duration
}
