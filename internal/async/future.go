// Package async provides a small future type for work that completes later.
package async

import (
	"context"
	"sync"
	"time"
)

// Future holds the eventual result of a computation.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error

	mu        sync.Mutex
	callbacks []func(T, error)
}

// Run starts fn after delay on its own goroutine. If ctx ends before the delay
// elapses fn is not called and the future fails with ctx.Err().
func Run[T any](ctx context.Context, delay time.Duration, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			var zero T
			f.complete(zero, ctx.Err())
		case <-timer.C:
			f.complete(fn())
		}
	}()
	return f
}

func (f *Future[T]) complete(value T, err error) {
	f.mu.Lock()
	f.value, f.err = value, err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(value, err)
	}
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the result is available or ctx ends.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then registers continuations for success and failure. Exactly one of them
// runs, on the completing goroutine, or immediately if already complete.
// Either may be nil.
func (f *Future[T]) Then(onValue func(T), onError func(error)) *Future[T] {
	cb := func(value T, err error) {
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onValue != nil {
			onValue(value)
		}
	}

	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		cb(f.value, f.err)
	default:
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
	}
	return f
}
