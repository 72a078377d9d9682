package storage

import (
	"context"
	"slices"
	"sync"
)

type ram struct {
	mu      sync.RWMutex
	blobs   map[string]*blob
	records map[string][]byte
}

func newRAM() *ram {
	return &ram{
		blobs:   make(map[string]*blob),
		records: make(map[string][]byte),
	}
}

func (r *ram) loadBlob(_ context.Context, addr string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[addr]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(b.data), true, nil
}

func (r *ram) hasBlob(_ context.Context, addr string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.blobs[addr]
	return ok, nil
}

func (r *ram) saveBlob(_ context.Context, b *blob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	cp.data = slices.Clone(b.data)
	r.blobs[b.addr] = &cp
	return nil
}

func (r *ram) loadRecord(_ context.Context, key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.records[key]
	return slices.Clone(data), ok, nil
}

func (r *ram) saveRecord(_ context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[key] = slices.Clone(data)
	return nil
}

func (r *ram) deleteRecord(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, key)
	return nil
}

func (r *ram) location() string { return "" }

func (r *ram) close() error { return nil }
