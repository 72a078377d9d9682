package book

import (
	"context"
	"sync"

	"epubr/storage"
)

// Chapter describes spine item being displayed.
type Chapter struct {
	Index  int
	ID     string
	Href   string
	Linear bool

	fetch func(ctx context.Context, addr string, format storage.Format) ([]byte, error)
}

// NewChapter returns chapter obtaining its resources with fetch. Sessions
// create chapters themselves, this is for renderers driven directly.
func NewChapter(index int, id, href string, fetch func(ctx context.Context, addr string, format storage.Format) ([]byte, error)) *Chapter {
	return &Chapter{Index: index, ID: id, Href: href, Linear: true, fetch: fetch}
}

// Content returns chapter document, fetched the same way as every other book
// resource.
func (c *Chapter) Content(ctx context.Context) ([]byte, error) {
	return c.fetch(ctx, c.Href, storage.FormatXml)
}

// Resource returns any book resource by absolute address.
func (c *Chapter) Resource(ctx context.Context, addr string, format storage.Format) ([]byte, error) {
	return c.fetch(ctx, addr, format)
}

// prefetched keeps documents fetched ahead of navigation until first use.
type prefetched struct {
	mu    sync.Mutex
	items map[string][]byte
}

const prefetchedLimit = 2

func (p *prefetched) put(addr string, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.items == nil {
		p.items = make(map[string][]byte)
	}
	if len(p.items) >= prefetchedLimit {
		clear(p.items)
	}
	p.items[addr] = data
}

func (p *prefetched) take(addr string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, ok := p.items[addr]
	if ok {
		delete(p.items, addr)
	}
	return data, ok
}
