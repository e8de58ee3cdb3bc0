// Package worker runs jobs on a single owning goroutine in submission order.
package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrStopped is returned when submitting to a stopped queue.
	ErrStopped = errors.New("worker: queue stopped")
	// ErrJobPanicked is returned by Do when the job panicked.
	ErrJobPanicked = errors.New("worker: job panicked")
)

// Job is a unit of work run on the owning goroutine.
type Job func(ctx context.Context)

// Queue serializes jobs onto one goroutine. Every mutation of the state a
// Queue owns must go through it, so writers never race.
type Queue struct {
	jobs   chan Job
	quit   chan struct{}
	done   chan struct{}
	logger *zap.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	mu        sync.Mutex
}

// NewQueue creates a queue buffering up to queueSize pending jobs.
func NewQueue(queueSize int, logger *zap.Logger) *Queue {
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		jobs:   make(chan Job, queueSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start launches the owning goroutine. Jobs receive ctx.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		q.mu.Lock()
		q.started = true
		q.mu.Unlock()
		go q.run(ctx)
	})
}

// Stop rejects new jobs, runs the ones already queued, and waits for the
// owning goroutine to exit.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() { close(q.quit) })
	q.mu.Lock()
	started := q.started
	q.mu.Unlock()
	if started {
		<-q.done
	}
}

// Submit enqueues job, blocking while the queue is full.
func (q *Queue) Submit(ctx context.Context, job Job) error {
	select {
	case <-q.quit:
		return ErrStopped
	default:
	}
	select {
	case q.jobs <- job:
		return nil
	case <-q.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit enqueues job without blocking and reports whether it was accepted.
func (q *Queue) TrySubmit(job Job) bool {
	select {
	case <-q.quit:
		return false
	default:
	}
	select {
	case q.jobs <- job:
		return true
	default:
		q.logger.Warn("worker: dropping job, queue full")
		return false
	}
}

// Do runs fn on the owning goroutine and waits for its result.
func (q *Queue) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	errc := make(chan error, 1)
	job := func(jobCtx context.Context) {
		err := ErrJobPanicked
		defer func() { errc <- err }()
		err = fn(jobCtx)
	}
	if err := q.Submit(ctx, job); err != nil {
		return err
	}
	select {
	case err := <-errc:
		return err
	case <-q.done:
		select {
		case err := <-errc:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case job := <-q.jobs:
			q.execute(ctx, job)
		case <-q.quit:
			for {
				select {
				case job := <-q.jobs:
					q.execute(ctx, job)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) execute(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("worker: job panicked", zap.Any("panic", r))
		}
	}()
	job(ctx)
}
