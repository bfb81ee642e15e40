package pool

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Submit after the pool has been shut down.
var ErrClosed = errors.New("pool: closed")

// Fn is a unit of work executed by the pool.
type Fn func(ctx context.Context) (any, error)

// Task is a handle to a submitted unit of work.
type Task struct {
	done chan struct{}
	res  any
	err  error
}

// Wait blocks until the task completes or the context expires. On context
// expiry the task keeps running in the background; its result is dropped.
func (t *Task) Wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.res, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type submission struct {
	ctx  context.Context
	fn   Fn
	task *Task
}

// Pool is a bounded worker pool with a task queue. Scraper lookups funnel
// through it so the number of concurrent upstream requests stays bounded no
// matter how many resolutions are in flight.
type Pool struct {
	queue chan submission

	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
}

// New starts a pool with the given number of workers and queue capacity.
func New(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	p := &Pool{
		queue:  make(chan submission, queueSize),
		closed: make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.closed:
			return
		case sub := <-p.queue:
			// Skip work whose caller already gave up.
			if sub.ctx.Err() != nil {
				sub.task.err = sub.ctx.Err()
				close(sub.task.done)
				continue
			}
			sub.task.res, sub.task.err = sub.fn(sub.ctx)
			close(sub.task.done)
		}
	}
}

// Submit enqueues fn bound to ctx. It blocks while the queue is full and
// fails with the context error if ctx expires before the task is accepted.
func (p *Pool) Submit(ctx context.Context, fn Fn) (*Task, error) {
	task := &Task{done: make(chan struct{})}
	sub := submission{ctx: ctx, fn: fn, task: task}

	select {
	case <-p.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case p.queue <- sub:
		return task, nil
	}
}

// Run submits fn and waits for its completion under the same context.
func (p *Pool) Run(ctx context.Context, fn Fn) (any, error) {
	task, err := p.Submit(ctx, fn)
	if err != nil {
		return nil, err
	}
	return task.Wait(ctx)
}

// Close stops the workers. Queued tasks that have not started are dropped;
// their waiters unblock via their contexts.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	p.wg.Wait()
}
