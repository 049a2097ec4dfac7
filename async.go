package graw

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jamesprial/go-reddit-dispatch/internal"
)

// Future is the completion handle of an asynchronous controller operation. The operation runs
// once on its own goroutine; Wait blocks until it finishes and returns exactly what the
// synchronous call would have, and Done is closed on completion.
type Future[T any] = internal.Task[T]

func async[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	return internal.Go(ctx, fn)
}

// asyncAct runs an error-only action and resolves to recv.
func asyncAct[T any](ctx context.Context, recv T, fn func(context.Context) error) *Future[T] {
	return async(ctx, func(ctx context.Context) (T, error) { return recv, fn(ctx) })
}

// Waiter is satisfied by every *Future.
type Waiter interface {
	Done() <-chan struct{}
	Err() error
}

// WaitAll waits for every future to complete and returns the first error to occur.
// It never cancels the operations: each one runs to completion regardless.
func WaitAll(futures ...Waiter) error {
	var g errgroup.Group
	for _, f := range futures {
		g.Go(func() error {
			<-f.Done()
			return f.Err()
		})
	}
	return g.Wait()
}
