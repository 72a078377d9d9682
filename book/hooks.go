package book

import (
	"context"
	"sync"
	"sync/atomic"
)

// Gate is asynchronous hook function. It must call done exactly once when
// finished, a gate which never calls done holds the transition forever.
type Gate func(done func(), ch *Chapter)

// Hooks is registry of gates per transition point.
type Hooks struct {
	mu    sync.Mutex
	gates map[HookPoint][]Gate
}

// NewHooks returns empty registry.
func NewHooks() *Hooks {
	return &Hooks{gates: make(map[HookPoint][]Gate)}
}

// Register appends gates to transition point, creating it on first use.
func (h *Hooks) Register(point HookPoint, gates ...Gate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gates[point] = append(h.gates[point], gates...)
}

// Count returns number of gates registered for point.
func (h *Hooks) Count(point HookPoint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.gates[point])
}

// Trigger starts every gate registered for point concurrently and calls
// onComplete once all of them reported done. Number of gates to wait for is
// fixed at the moment of the call. Returns false if nothing was ever
// registered for point, onComplete is not called in this case.
func (h *Hooks) Trigger(point HookPoint, ch *Chapter, onComplete func()) bool {
	h.mu.Lock()
	registered, ok := h.gates[point]
	gates := append([]Gate(nil), registered...)
	h.mu.Unlock()

	if !ok {
		return false
	}
	if onComplete == nil {
		onComplete = func() {}
	}
	if len(gates) == 0 {
		onComplete()
		return true
	}

	var remaining atomic.Int64
	remaining.Store(int64(len(gates)))
	for _, gate := range gates {
		done := sync.OnceFunc(func() {
			if remaining.Add(-1) == 0 {
				onComplete()
			}
		})
		go gate(done, ch)
	}
	return true
}

// Wait is blocking form of Trigger. Unregistered points pass through.
func (h *Hooks) Wait(ctx context.Context, point HookPoint, ch *Chapter) error {
	finished := make(chan struct{})
	if !h.Trigger(point, ch, func() { close(finished) }) {
		return nil
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
