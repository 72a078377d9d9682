package book

import (
	"context"
	"sync"

	"epubr/epub"
)

// Ready holds readiness signals of every structural facet. Manifest, spine,
// metadata and cover become ready together as soon as package document is
// parsed, table of contents always comes last.
type Ready struct {
	Manifest *Signal[map[string]epub.Item]
	Spine    *Signal[[]epub.SpineItem]
	Metadata *Signal[map[string]string]
	Cover    *Signal[string]
	TOC      *Signal[[]epub.TOCEntry]

	all    *Signal[struct{}]
	notify func(Facet)

	mu      sync.Mutex
	pending int
}

func newReady(notify func(Facet)) *Ready {
	if notify == nil {
		notify = func(Facet) {}
	}
	return &Ready{
		Manifest: NewSignal[map[string]epub.Item](),
		Spine:    NewSignal[[]epub.SpineItem](),
		Metadata: NewSignal[map[string]string](),
		Cover:    NewSignal[string](),
		TOC:      NewSignal[[]epub.TOCEntry](),
		all:      NewSignal[struct{}](),
		notify:   notify,
		pending:  5,
	}
}

// All waits for every facet. It fails with load error if any of them could
// not be obtained.
func (r *Ready) All(ctx context.Context) error {
	_, err := r.all.Wait(ctx)
	return err
}

// AllDone is closed once every facet is ready or loading failed.
func (r *Ready) AllDone() <-chan struct{} {
	return r.all.Done()
}

func (r *Ready) facetDone(f Facet) {
	r.notify(f)

	r.mu.Lock()
	r.pending--
	last := r.pending == 0
	r.mu.Unlock()

	if last && r.all.resolve(struct{}{}) {
		r.notify(FacetAll)
	}
}

func (r *Ready) resolveStructure(c *Contents) {
	if r.Manifest.resolve(c.Manifest) {
		r.facetDone(FacetManifest)
	}
	if r.Spine.resolve(c.Spine) {
		r.facetDone(FacetSpine)
	}
	if r.Metadata.resolve(c.Metadata) {
		r.facetDone(FacetMetadata)
	}
	if r.Cover.resolve(c.Cover) {
		r.facetDone(FacetCover)
	}
}

func (r *Ready) resolveTOC(toc []epub.TOCEntry) {
	if r.TOC.resolve(toc) {
		r.facetDone(FacetToc)
	}
}

// fail rejects every facet which is not ready yet. Facets already resolved
// stay usable.
func (r *Ready) fail(err error) {
	r.Manifest.reject(err)
	r.Spine.reject(err)
	r.Metadata.reject(err)
	r.Cover.reject(err)
	r.TOC.reject(err)
	r.all.reject(err)
}
