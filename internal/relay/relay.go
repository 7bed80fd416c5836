// Package relay hands results produced outside the process back to the
// goroutine waiting for them. The view owns capabilities such as the
// microphone and the geolocation prompt; it starts them when told to and
// posts the outcome to the gateway, which delivers it here.
package relay

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNoPending is returned by Deliver when nothing is awaiting a result.
	ErrNoPending = errors.New("relay: no pending request")
	// ErrPending is returned by Await when another caller is already waiting.
	ErrPending = errors.New("relay: request already pending")
)

type outcome[T any] struct {
	value T
	err   error
}

// Relay carries at most one outstanding request at a time.
type Relay[T any] struct {
	mu      sync.Mutex
	pending chan outcome[T]
}

func New[T any]() *Relay[T] {
	return &Relay[T]{}
}

// Await registers a pending request, runs start (if non-nil) to tell the view
// to begin, and blocks until a result is delivered or ctx is done.
func (r *Relay[T]) Await(ctx context.Context, start func()) (T, error) {
	var zero T

	r.mu.Lock()
	if r.pending != nil {
		r.mu.Unlock()
		return zero, ErrPending
	}
	ch := make(chan outcome[T], 1)
	r.pending = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if r.pending == ch {
			r.pending = nil
		}
		r.mu.Unlock()
	}()

	if start != nil {
		start()
	}

	select {
	case out := <-ch:
		return out.value, out.err
	case <-ctx.Done():
		r.mu.Lock()
		taken := r.pending != ch
		if !taken {
			r.pending = nil
		}
		r.mu.Unlock()
		if !taken {
			return zero, ctx.Err()
		}
		// A Deliver that already reported success must not be lost.
		out := <-ch
		return out.value, out.err
	}
}

// Deliver completes the pending request with a value.
func (r *Relay[T]) Deliver(value T) error {
	return r.complete(outcome[T]{value: value})
}

// Fail completes the pending request with an error.
func (r *Relay[T]) Fail(err error) error {
	return r.complete(outcome[T]{err: err})
}

// Pending reports whether a request is waiting for a result.
func (r *Relay[T]) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}

func (r *Relay[T]) complete(out outcome[T]) error {
	r.mu.Lock()
	ch := r.pending
	r.pending = nil
	r.mu.Unlock()

	if ch == nil {
		return ErrNoPending
	}
	ch <- out
	return nil
}
