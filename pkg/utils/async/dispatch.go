package async

import (
	"context"
	"runtime/debug"

	"github.com/secmon-lab/stormfront/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Ordered executes fn for every index in [0, n) on at most workers goroutines
// and returns the results in index order regardless of completion order.
// A panic inside fn is recovered and converted by recoverFn for that index
// only, so one crashing task never aborts the others.
func Ordered[T any](ctx context.Context, n, workers int, fn func(ctx context.Context, i int) T, recoverFn func(i int, r any) T) []T {
	results := make([]T, n)
	if n == 0 {
		return results
	}
	if workers < 1 {
		workers = 1
	}

	var eg errgroup.Group
	eg.SetLimit(workers)

	for i := 0; i < n; i++ {
		eg.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logging.From(ctx).Error("panic in ordered task",
						"index", i,
						"panic", r,
						"stack", string(debug.Stack()),
					)
					results[i] = recoverFn(i, r)
				}
			}()
			results[i] = fn(ctx, i)
			return nil
		})
	}

	// tasks never return errors; panics are converted above
	_ = eg.Wait()
	return results
}
