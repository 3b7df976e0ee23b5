package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Queue manages a batch of concurrent jobs.
type Queue struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	sem      chan struct{}
	shutdown atomic.Bool
	running  atomic.Int64
	errs     []error
}

// NewQueue creates a Queue running at most maxConcurrent jobs at once.
// If maxConcurrent <= 0, concurrency is unlimited.
func NewQueue(maxConcurrent int) *Queue {
	q := &Queue{}
	if maxConcurrent > 0 {
		q.sem = make(chan struct{}, maxConcurrent)
	}
	return q
}

// Wait blocks until every started job completes.
// Returns all errors joined via errors.Join.
func (q *Queue) Wait() error {
	q.wg.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()

	return errors.Join(q.errs...)
}

// Shutdown prevents queued jobs that have not started from running.
// Jobs already running are left to finish.
func (q *Queue) Shutdown() {
	q.shutdown.Store(true)
}

// Running reports how many jobs currently hold a concurrency slot.
func (q *Queue) Running() int {
	return int(q.running.Load())
}

// Start launches fn in a new goroutine managed by the queue
// and returns a Result for tracking the individual job.
func (q *Queue) Start(ctx context.Context, fn WorkFunc) *Result {
	ctx, cancel := context.WithCancel(ctx)
	r := &Result{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	q.wg.Go(func() {
		defer func() {
			cancel()
			close(r.done)
		}()

		if err := ctx.Err(); err != nil {
			q.fail(r, fmt.Errorf("queue job canceled early: %w", context.Cause(ctx)))
			return
		}

		if q.sem != nil {
			select {
			case q.sem <- struct{}{}:
				defer func() {
					<-q.sem
				}()
			case <-ctx.Done():
				q.fail(r, fmt.Errorf("waiting for a queue slot: %w", context.Cause(ctx)))
				return
			}
		}

		if q.shutdown.Load() {
			q.fail(r, ErrQueueShutdown)
			return
		}

		q.running.Add(1)
		defer q.running.Add(-1)

		if err := fn(ctx); err != nil {
			q.fail(r, err)
		}
	})

	return r
}

// fail stores err on r and appends it to the queue's errors.
func (q *Queue) fail(r *Result, err error) {
	r.err = err

	q.mu.Lock()
	defer q.mu.Unlock()
	q.errs = append(q.errs, err)
}
