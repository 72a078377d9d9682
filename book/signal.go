package book

import (
	"context"
	"sync"
)

// Signal is a one-shot value which may be waited for from any goroutine.
// It settles exactly once, either with value or with error.
type Signal[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// NewSignal returns unsettled signal.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{done: make(chan struct{})}
}

func (s *Signal[T]) settle(v T, err error) bool {
	settled := false
	s.once.Do(func() {
		s.val, s.err = v, err
		close(s.done)
		settled = true
	})
	return settled
}

func (s *Signal[T]) resolve(v T) bool {
	return s.settle(v, nil)
}

func (s *Signal[T]) reject(err error) bool {
	var zero T
	return s.settle(zero, err)
}

// Done is closed when signal settles.
func (s *Signal[T]) Done() <-chan struct{} {
	return s.done
}

// Settled reports whether signal already has a result.
func (s *Signal[T]) Settled() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Wait blocks until signal settles or ctx is done.
func (s *Signal[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-s.done:
		return s.val, s.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
