// Package execute provides the bounded-concurrency task runner shared by all
// batch operations. Tasks are started in input order under a concurrency
// ceiling; once a failure is observed no new task is dispatched, already
// in-flight tasks drain, and the first error is returned.
package execute

import (
	"context"
	"fmt"
	"sync"
)

// Runner executes indexed tasks with a concurrency ceiling.
type Runner struct {
	semaphore chan struct{}
}

// New creates a runner with the given concurrency ceiling. A limit of zero
// or less means unbounded.
func New(limit int) *Runner {
	r := &Runner{}
	if limit > 0 {
		r.semaphore = make(chan struct{}, limit)
	}
	return r
}

// Sequential creates a runner that completes task i before starting task i+1.
func Sequential() *Runner {
	return New(1)
}

// Run dispatches task(0) .. task(n-1) in order, at most limit in flight at
// once. Dispatch stops at the first observed error or context cancellation;
// tasks already in flight are not preempted. Run returns the number of tasks
// dispatched and the first error observed.
//
// With a limit of 1 the runner degenerates to strict sequential execution:
// task i+1 is dispatched only after task i has settled.
func (r *Runner) Run(ctx context.Context, n int, task func(i int) error) (int, error) {
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		firstErr   error
		dispatched int
	)

	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for i := range n {
		if failed() {
			break
		}

		if err := ctx.Err(); err != nil {
			wg.Wait()
			record(fmt.Errorf("cancelled before dispatch: %w", err))
			mu.Lock()
			defer mu.Unlock()
			return dispatched, firstErr
		}

		if r.semaphore != nil {
			select {
			case r.semaphore <- struct{}{}:
			case <-ctx.Done():
				wg.Wait()
				record(fmt.Errorf("cancelled while waiting for a concurrency slot: %w", ctx.Err()))
				mu.Lock()
				defer mu.Unlock()
				return dispatched, firstErr
			}
			// A task may have failed while we were blocked on the slot.
			if failed() {
				<-r.semaphore
				break
			}
		}

		dispatched++
		wg.Add(1)
		go func(i int) {
			defer func() {
				if r.semaphore != nil {
					<-r.semaphore
				}
				wg.Done()
			}()

			if err := task(i); err != nil {
				record(err)
			}
		}(i)
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	return dispatched, firstErr
}
