// Package flight collapses concurrent one-time computations onto a single call.
package flight

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Do runs fn at most once at a time per key within g. Callers arriving while
// a call is in flight share its result. fn runs detached from the caller's
// cancellation so that a caller giving up does not fail the others; the caller
// itself stops waiting when ctx is done.
func Do[T any](ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (T, error)) (T, error) {
	detached := context.WithoutCancel(ctx)
	ch := g.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
