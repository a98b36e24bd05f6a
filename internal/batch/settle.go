// Package batch runs independent calls in bounded batches.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one call.
type Result[T any] struct {
	Value T
	Err   error
}

// Settle calls fn for every item, at most size at a time. Each batch is
// waited for completely before the next one starts, and a failing call never
// cancels its siblings. Results are returned in item order.
func Settle[I, O any](ctx context.Context, items []I, size int, fn func(context.Context, I) (O, error)) []Result[O] {
	if size < 1 {
		size = 1
	}

	results := make([]Result[O], 0, len(items))

	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		settled := make([]Result[O], end-start)

		var g errgroup.Group
		for i, item := range items[start:end] {
			g.Go(func() error {
				v, err := fn(ctx, item)
				settled[i] = Result[O]{Value: v, Err: err}
				return nil
			})
		}
		_ = g.Wait()

		results = append(results, settled...)
	}

	return results
}
