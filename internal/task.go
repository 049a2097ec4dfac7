package internal

import (
	"context"
	"sync"
)

// Task runs a function exactly once on its own goroutine and holds its result.
// Wait may be called any number of times from any goroutine.
type Task[T any] struct {
	once  sync.Once
	value T
	err   error
	ready chan struct{}
}

// Go starts fn on a new goroutine. ctx is handed to fn unchanged; the task itself never cancels it.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{ready: make(chan struct{})}
	go t.run(ctx, fn)
	return t
}

func (t *Task[T]) run(ctx context.Context, fn func(context.Context) (T, error)) {
	t.once.Do(func() {
		defer close(t.ready)
		t.value, t.err = fn(ctx)
	})
}

// Wait blocks until the task completes and returns its result.
func (t *Task[T]) Wait() (T, error) {
	<-t.ready
	return t.value, t.err
}

// Done is closed once the task has completed.
func (t *Task[T]) Done() <-chan struct{} {
	return t.ready
}

// Err returns the task's error, or nil while it is still running.
func (t *Task[T]) Err() error {
	select {
	case <-t.ready:
		return t.err
	default:
		return nil
	}
}

// IsDone reports whether the task has completed.
func (t *Task[T]) IsDone() bool {
	select {
	case <-t.ready:
		return true
	default:
		return false
	}
}
