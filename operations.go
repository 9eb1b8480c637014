package s3batch

import (
	"context"
	"sync"
	"time"

	"github.com/batchlabs/s3batch/batchtypes"
	"github.com/batchlabs/s3batch/errors"
	"github.com/batchlabs/s3batch/internal/execute"
	"github.com/batchlabs/s3batch/internal/output"
)

// ForEach fetches every object in the source set and invokes fn strictly in
// order: callback i+1 starts only after callback i has settled. It returns
// the number of objects processed and the last reference processed.
func (r *Request) ForEach(ctx context.Context, fn batchtypes.EachFunc) (*batchtypes.BatchResult, error) {
	return r.each(ctx, "forEach", fn, execute.Sequential())
}

// Each is ForEach under the configured concurrency ceiling: tasks are
// started in source order but may complete out of order.
func (r *Request) Each(ctx context.Context, fn batchtypes.EachFunc) (*batchtypes.BatchResult, error) {
	return r.each(ctx, "each", fn, execute.New(r.concurrency))
}

func (r *Request) each(
	ctx context.Context,
	op string,
	fn batchtypes.EachFunc,
	runner *execute.Runner,
) (*batchtypes.BatchResult, error) {
	if fn == nil {
		return nil, errors.NewError(op, errors.ErrNilCallback)
	}

	source, err := r.resolveSource(ctx)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	pipeline := r.pipeline()

	var mu sync.Mutex
	processed := 0

	dispatched, err := runner.Run(ctx, len(source), func(i int) error {
		ref := source[i]
		value, err := pipeline.Fetch(ctx, ref)
		if err != nil {
			return err
		}
		if err := fn(ctx, ref.Key, value); err != nil {
			return errors.NewObjectError(op, ref.Bucket, ref.Key, err)
		}
		mu.Lock()
		processed++
		mu.Unlock()
		return nil
	})

	result := &batchtypes.BatchResult{
		Processed: processed,
		Duration:  time.Since(startTime),
	}
	if dispatched > 0 {
		result.Last = &source[dispatched-1]
	}
	return result, err
}

// Map fetches every object, invokes fn, and writes each result back: in
// place when InPlace was called, or to the Output target otherwise. The
// request refuses to run without one of the two. fn must return a non-nil
// value of type []byte, string, fmt.Stringer or encoding.TextMarshaler.
func (r *Request) Map(ctx context.Context, fn batchtypes.MapFunc) (*batchtypes.MapResult, error) {
	if fn == nil {
		return nil, errors.NewError("map", errors.ErrNilCallback)
	}
	if err := r.requireWritable("map"); err != nil {
		return nil, err
	}

	source, err := r.resolveSource(ctx)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	pipeline := r.pipeline()
	writer := output.New(r.client.api, r.target)

	var mu sync.Mutex
	written := 0

	dispatched, err := execute.New(r.concurrency).Run(ctx, len(source), func(i int) error {
		ref := source[i]
		value, err := pipeline.Fetch(ctx, ref)
		if err != nil {
			return err
		}

		result, err := fn(ctx, ref.Key, value)
		if err != nil {
			return errors.NewObjectError("map", ref.Bucket, ref.Key, err)
		}
		if result == nil {
			return errors.NewObjectError("map", ref.Bucket, ref.Key, errors.ErrNilMapResult)
		}

		if err := writer.WriteMapResult(ctx, ref, result); err != nil {
			return err
		}
		mu.Lock()
		written++
		mu.Unlock()
		return nil
	})

	result := &batchtypes.MapResult{
		Written:  written,
		Duration: time.Since(startTime),
	}
	if dispatched > 0 {
		result.Last = &source[dispatched-1]
	}
	return result, err
}

// Reduce folds the source set into a single value, strictly in order:
// acc = fn(acc, key, value) for each object. Concurrency is forced to 1
// because the accumulator is shared state with an ordering dependency. A nil
// initial value is seeded from the first object's value, with reduction
// starting at the second.
func (r *Request) Reduce(ctx context.Context, fn batchtypes.ReduceFunc, initial any) (any, error) {
	if fn == nil {
		return nil, errors.NewError("reduce", errors.ErrNilCallback)
	}

	source, err := r.resolveSource(ctx)
	if err != nil {
		return nil, err
	}

	pipeline := r.pipeline()
	acc := initial
	seeded := initial != nil

	_, err = execute.Sequential().Run(ctx, len(source), func(i int) error {
		ref := source[i]
		value, err := pipeline.Fetch(ctx, ref)
		if err != nil {
			return err
		}

		if !seeded {
			acc = value
			seeded = true
			return nil
		}

		next, err := fn(ctx, acc, ref.Key, value)
		if err != nil {
			return errors.NewObjectError("reduce", ref.Bucket, ref.Key, err)
		}
		acc = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Filter evaluates fn over every object and partitions the source set into
// kept and removed objects. Evaluation may run concurrently, but side
// effects are applied only after every item has settled: with an Output
// target, kept objects are copied there and sources are untouched; in place,
// removed objects are batch-deleted and kept objects simply survive.
func (r *Request) Filter(ctx context.Context, fn batchtypes.FilterFunc) (*batchtypes.FilterResult, error) {
	if fn == nil {
		return nil, errors.NewError("filter", errors.ErrNilCallback)
	}
	if err := r.requireWritable("filter"); err != nil {
		return nil, err
	}

	source, err := r.resolveSource(ctx)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	pipeline := r.pipeline()

	// Decisions are recorded per index so the partition preserves source
	// order regardless of completion order.
	decisions := make([]bool, len(source))

	_, err = execute.New(r.concurrency).Run(ctx, len(source), func(i int) error {
		ref := source[i]
		value, err := pipeline.Fetch(ctx, ref)
		if err != nil {
			return err
		}

		keep, err := fn(ctx, ref.Key, value)
		if err != nil {
			return errors.NewObjectError("filter", ref.Bucket, ref.Key, err)
		}
		decisions[i] = keep
		return nil
	})
	if err != nil {
		// No side effects have been applied; evaluation failed.
		return nil, err
	}

	result := &batchtypes.FilterResult{}
	for i, ref := range source {
		if decisions[i] {
			result.Kept = append(result.Kept, ref)
		} else {
			result.Removed = append(result.Removed, ref)
		}
	}

	writer := output.New(r.client.api, r.target)
	if err := writer.ApplyFilter(ctx, result.Kept, result.Removed); err != nil {
		return nil, err
	}

	result.Duration = time.Since(startTime)
	return result, nil
}
