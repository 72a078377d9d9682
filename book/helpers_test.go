package book

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"epubr/config"
	"epubr/epub"
	"epubr/epub/epubtest"
	"epubr/fetch"
	"epubr/storage"
)

const bookPrefix = "/books/test/"

// fixture serves generated book over http and counts requests.
type fixture struct {
	t     *testing.T
	book  *epubtest.Book
	srv   *httptest.Server
	files map[string][]byte

	mu      sync.Mutex
	hits    map[string]int
	missing map[string]bool
}

func newFixture(t *testing.T, b *epubtest.Book) *fixture {
	t.Helper()
	files, err := b.Files()
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	f := &fixture{t: t, book: b, files: files, hits: make(map[string]int), missing: make(map[string]bool)}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) serve(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, bookPrefix)

	f.mu.Lock()
	f.hits[name]++
	missing := f.missing[name]
	f.mu.Unlock()

	data, ok := f.files[name]
	if !ok || missing {
		http.NotFound(w, r)
		return
	}
	w.Write(data)
}

// url returns book reference as user would pass it.
func (f *fixture) url() string {
	return f.srv.URL + strings.TrimSuffix(bookPrefix, "/")
}

// base returns resolved book address.
func (f *fixture) base() string {
	return f.srv.URL + bookPrefix
}

func (f *fixture) remove(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[name] = true
}

func (f *fixture) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.hits {
		n += c
	}
	return n
}

func (f *fixture) hitsOf(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[name]
}

func (f *fixture) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.hits)
}

func testSettings() Settings {
	return Settings{
		Storage:    config.StorageModeOff,
		Online:     true,
		Spreads:    true,
		Responsive: true,
		Version:    1,
		Restore:    true,
		Prefetch:   true,
	}
}

func newRecords(t *testing.T) *storage.Store {
	t.Helper()
	st, err := storage.Open(config.StorageModeRam, "", nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newSession(t *testing.T, f *fixture, mutate func(*Options)) *Session {
	t.Helper()
	log := zaptest.NewLogger(t)
	opts := Options{
		Settings:       testSettings(),
		Log:            log,
		Resolver:       Resolver{Origin: "file://", Location: "/"},
		LibraryVersion: "test",
	}
	if f != nil {
		opts.Fetcher = fetch.New(f.srv.Client(), log)
	} else {
		opts.Fetcher = fetch.New(nil, log)
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(context.Background()); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func openSession(t *testing.T, f *fixture, mutate func(*Options)) *Session {
	t.Helper()
	s := newSession(t, f, mutate)
	if err := s.Open(testContext(t), f.url(), OpenOptions{}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// fakeRenderer paginates every chapter into fixed number of pages.
type fakeRenderer struct {
	pages int

	mu       sync.Mutex
	ch       *Chapter
	page     int
	rendered []int
	locators []string
	sections []string
	journal  *[]string
}

func newRenderer(pages int) *fakeRenderer {
	return &fakeRenderer{pages: pages}
}

func (r *fakeRenderer) Render(ctx context.Context, ch *Chapter) error {
	if _, err := ch.Content(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ch, r.page = ch, 0
	r.rendered = append(r.rendered, ch.Index)
	if r.journal != nil {
		*r.journal = append(*r.journal, fmt.Sprintf("render %d", ch.Index))
	}
	return nil
}

func (r *fakeRenderer) GotoLocator(loc string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locators = append(r.locators, loc)
	var page int
	if _, err := fmt.Sscanf(loc, "/4:%d", &page); err != nil || page < 0 || page >= r.pages {
		return false
	}
	r.page = page
	return true
}

func (r *fakeRenderer) GotoEnd() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.page = r.pages - 1
}

func (r *fakeRenderer) NextPage() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.page+1 >= r.pages {
		return false
	}
	r.page++
	return true
}

func (r *fakeRenderer) PrevPage() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.page == 0 {
		return false
	}
	r.page--
	return true
}

func (r *fakeRenderer) GotoSection(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = append(r.sections, id)
	return true
}

func (r *fakeRenderer) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch == nil {
		return ""
	}
	return epub.CFI{Spine: r.ch.Index, IDRef: r.ch.ID, Path: fmt.Sprintf("/4:%d", r.page)}.String()
}

func (r *fakeRenderer) state() (chapter, page int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch == nil {
		return -1, -1
	}
	return r.ch.Index, r.page
}

func (r *fakeRenderer) renders() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.rendered...)
}

// waitEvent subscribes to event kind, returned channel is closed on first
// occurrence.
func waitEvent(s *Session, kind EventKind) <-chan struct{} {
	ch := make(chan struct{})
	var once sync.Once
	s.Events().On(kind, func(Event) { once.Do(func() { close(ch) }) })
	return ch
}

func mustReceive(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}
