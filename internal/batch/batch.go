// Package batch runs a function over many items with bounded parallelism.
package batch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome for one item.
type Result[T, R any] struct {
	Item  T
	Value R
	Err   error
}

// Run applies fn to every item with at most workers calls in flight and returns the results in
// input order. A failing item does not stop the others. Once ctx is done, items not yet started
// are skipped with the context error.
func Run[T, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) []Result[T, R] {
	results := make([]Result[T, R], len(items))

	var group errgroup.Group

	group.SetLimit(max(workers, 1))

	slog.Debug("batch.Run", "items", len(items), "workers", max(workers, 1), "stage", "start")

	for idx, item := range items {
		results[idx].Item = item

		if err := ctx.Err(); err != nil {
			results[idx].Err = err

			continue
		}

		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[idx].Err = err

				return nil
			}

			results[idx].Value, results[idx].Err = fn(ctx, item)

			return nil
		})
	}

	_ = group.Wait()

	slog.Debug("batch.Run", "items", len(items), "stage", "done")

	return results
}
