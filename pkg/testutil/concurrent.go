package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/platform/sentinel"
)

// ConcurrentResult counts outcomes of a concurrent run by category.
type ConcurrentResult struct {
	Successes int32
	Conflicts int32
	NotFounds int32
	// Forbidden also covers "not found or not yours" on record changes.
	Forbidden int32
	Errors    int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.Forbidden + r.Errors
}

// RunConcurrent runs fn on goroutines goroutines released together, then
// buckets each outcome. Store sentinels and domain codes land in the same
// bucket.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var (
		successes, conflicts, notFounds, forbidden, errs atomic.Int32
	)
	run(goroutines, fn, func(err error) {
		switch {
		case err == nil:
			successes.Add(1)
		case errors.Is(err, sentinel.ErrConflict), errors.Is(err, sentinel.ErrAlreadyUsed),
			dErrors.HasCode(err, dErrors.CodeConflict):
			conflicts.Add(1)
		case errors.Is(err, sentinel.ErrNotFound), dErrors.HasCode(err, dErrors.CodeNotFound):
			notFounds.Add(1)
		case dErrors.HasCode(err, dErrors.CodeForbidden):
			forbidden.Add(1)
		default:
			errs.Add(1)
		}
	})
	return &ConcurrentResult{
		Successes: successes.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: notFounds.Load(),
		Forbidden: forbidden.Load(),
		Errors:    errs.Load(),
	}
}

func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, func(idx int) error {
		return fn(ctx, idx)
	})
}

// RunConcurrentCollect returns the success count and every error, for tests
// that assert on the errors themselves.
func RunConcurrentCollect(goroutines int, fn func(idx int) error) (successes int32, errs []error) {
	var (
		mu    sync.Mutex
		count atomic.Int32
	)
	run(goroutines, fn, func(err error) {
		if err == nil {
			count.Add(1)
			return
		}
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	})
	return count.Load(), errs
}

// run starts every goroutine before releasing them at once so the calls overlap.
func run(goroutines int, fn func(idx int) error, record func(error)) {
	var (
		ready sync.WaitGroup
		done  sync.WaitGroup
	)
	start := make(chan struct{})
	ready.Add(goroutines)
	done.Add(goroutines)
	for i := range goroutines {
		go func() {
			defer done.Done()
			ready.Done()
			<-start
			record(fn(i))
		}()
	}
	ready.Wait()
	close(start)
	done.Wait()
}
