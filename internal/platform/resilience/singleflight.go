package resilience

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// SingleFlight deduplicates concurrent calls for the same key.
//
// The shared call runs on a context that keeps the starting caller's values but
// not its cancellation, so one caller giving up never fails the others. Waiters
// still return as soon as their own context is done.
type SingleFlight struct {
	// Timeout bounds a shared call. Zero leaves it unbounded.
	Timeout time.Duration

	group singleflight.Group
}

func (g *SingleFlight) Do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, bool, error) {
	retried := false
	for {
		ch := g.group.DoChan(key, func() (any, error) {
			shared := context.WithoutCancel(ctx)
			if g.Timeout > 0 {
				var cancel context.CancelFunc
				shared, cancel = context.WithTimeout(shared, g.Timeout)
				defer cancel()
			}
			return fn(shared)
		})

		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case res := <-ch:
			// A cancellation this caller did not ask for belongs to someone else's call.
			if !retried && errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
				g.group.Forget(key)
				retried = true
				continue
			}
			return res.Val, res.Shared, res.Err
		}
	}
}
