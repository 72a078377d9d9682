package render

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"

	"epubr/book"
	"epubr/epub/epubtest"
	"epubr/fetch"
	"epubr/storage"
)

const chapterDoc = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Ignored</title><style>p { margin: 0 }</style></head>
<body>
<h1 id="top">Chapter One</h1>
<p id="a">alpha beta gamma delta epsilon</p>
<p>short <span id="inner">inline</span> text</p>
<p id="b">one<br/>two</p>
<div id="empty"></div>
</body>
</html>`

func staticChapter(content []byte) *book.Chapter {
	return book.NewChapter(0, "c1", "file:///book/c1.xhtml",
		func(_ context.Context, addr string, _ storage.Format) ([]byte, error) {
			if addr != "file:///book/c1.xhtml" {
				return nil, errors.New("unexpected address " + addr)
			}
			return content, nil
		})
}

func renderDoc(t *testing.T, height int) *Pager {
	t.Helper()
	p := New(20, height, zaptest.NewLogger(t))
	if err := p.Render(context.Background(), staticChapter([]byte(chapterDoc))); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return p
}

func TestRender_Layout(t *testing.T) {
	p := renderDoc(t, 3)

	want := []string{
		"Chapter One",
		"",
		"alpha beta gamma",
		"delta epsilon",
		"",
		"short inline text",
		"",
		"one",
		"",
		"two",
	}
	if !slices.Equal(p.lines, want) {
		t.Errorf("lines = %q, want %q", p.lines, want)
	}

	anchors := map[string]int{"top": 0, "a": 2, "inner": 5, "b": 7, "empty": 9}
	for id, line := range anchors {
		if got, ok := p.anchors[id]; !ok || got != line {
			t.Errorf("anchor %q at %d (%v), want %d", id, got, ok, line)
		}
	}

	lines, page, total := p.Page()
	if page != 1 || total != 4 || !slices.Equal(lines, want[:3]) {
		t.Errorf("Page() = %q, %d, %d", lines, page, total)
	}
}

func TestPager_Navigation(t *testing.T) {
	p := renderDoc(t, 3)

	steps := []struct {
		name string
		move func() bool
		ok   bool
		page int
	}{
		{"prev on first page", p.PrevPage, false, 1},
		{"next", p.NextPage, true, 2},
		{"section", func() bool { return p.GotoSection("b") }, true, 3},
		{"unknown section", func() bool { return p.GotoSection("nope") }, false, 3},
		{"end", func() bool { p.GotoEnd(); return true }, true, 4},
		{"next on last page", p.NextPage, false, 4},
		{"line locator", func() bool { return p.GotoLocator("/4:4") }, true, 2},
		{"line out of range", func() bool { return p.GotoLocator("/4:10") }, false, 2},
		{"anchor locator", func() bool { return p.GotoLocator("/4[a]") }, true, 1},
		{"anchor fallback", func() bool { return p.GotoLocator("/4:99[empty]") }, true, 4},
		{"garbage", func() bool { return p.GotoLocator("/6/2") }, false, 4},
	}
	for _, st := range steps {
		ok := st.move()
		_, page, _ := p.Page()
		if ok != st.ok || page != st.page {
			t.Errorf("%s: ok %v on page %d, want %v on page %d", st.name, ok, page, st.ok, st.page)
		}
	}
}

func TestPager_Location(t *testing.T) {
	p := New(40, 3, zaptest.NewLogger(t))
	if loc := p.Location(); loc != "" {
		t.Errorf("Location() before render = %q", loc)
	}

	p = renderDoc(t, 3)
	if loc := p.Location(); loc != "epubcfi(/6/2[c1]!/4:0)" {
		t.Errorf("Location() = %q", loc)
	}
	p.GotoSection("inner")
	loc := p.Location()
	if loc != "epubcfi(/6/2[c1]!/4:3)" {
		t.Errorf("Location() = %q", loc)
	}

	p.GotoLocator("/4:0")
	if !p.GotoLocator("/4:3") || p.Location() != loc {
		t.Errorf("location %q does not round trip, got %q", loc, p.Location())
	}
}

func TestRender_EmptyChapter(t *testing.T) {
	p := New(20, 5, zaptest.NewLogger(t))
	if err := p.Render(context.Background(), staticChapter([]byte(`<html><body><p id="x"></p></body></html>`))); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	lines, page, total := p.Page()
	if len(lines) != 0 || page != 1 || total != 1 {
		t.Errorf("Page() = %q, %d, %d", lines, page, total)
	}
	if !p.GotoSection("x") || !p.GotoLocator("/4:0") || p.NextPage() {
		t.Error("navigation in empty chapter")
	}
}

func TestRender_Charset(t *testing.T) {
	doc := `<html><head><meta charset="windows-1251"/></head><body><p>Привет мир</p></body></html>`
	data, err := charmap.Windows1251.NewEncoder().Bytes([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	p := New(20, 5, zaptest.NewLogger(t))
	if err := p.Render(context.Background(), staticChapter(data)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if lines, _, _ := p.Page(); len(lines) != 1 || lines[0] != "Привет мир" {
		t.Errorf("Page() = %q", lines)
	}
}

func TestRender_FetchError(t *testing.T) {
	ch := book.NewChapter(0, "c1", "file:///elsewhere.xhtml",
		func(context.Context, string, storage.Format) ([]byte, error) { return nil, errors.New("boom") })
	if err := New(20, 5, zaptest.NewLogger(t)).Render(context.Background(), ch); err == nil {
		t.Error("Render() error = nil")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"empty", "", 20, nil},
		{"fits", "a  b\tc", 20, []string{"a b c"}},
		{"breaks at words", "alpha beta gamma delta", 11, []string{"alpha beta", "gamma delta"}},
		{"long word", "abcdefghijklmnopqrstuvwxyz", 10, []string{"abcdefghij", "klmnopqrst", "uvwxyz"}},
		{"long word after short", "ab abcdefghijkl", 10, []string{"ab", "abcdefghij", "kl"}},
		{"runes", "привет мир", 6, []string{"привет", "мир"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrap(tt.text, tt.width); !slices.Equal(got, tt.want) {
				t.Errorf("wrap() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPager_DrivenBySession(t *testing.T) {
	dir := t.TempDir()
	b := epubtest.New(2, 3)
	if err := b.WriteDir(dir); err != nil {
		t.Fatalf("WriteDir() error = %v", err)
	}

	log := zaptest.NewLogger(t)
	s, err := book.New(book.Options{
		Settings:       book.Settings{Version: 1, Online: true},
		Log:            log,
		Fetcher:        fetch.New(nil, log),
		Resolver:       book.Resolver{Origin: "file://", Location: "/"},
		LibraryVersion: "test",
	})
	if err != nil {
		t.Fatalf("book.New() error = %v", err)
	}
	ctx := context.Background()
	t.Cleanup(func() { s.Close(ctx) })

	if err := s.Open(ctx, "file://"+filepath.ToSlash(dir), book.OpenOptions{}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	p := New(30, 4, log)
	if _, err := s.RenderTo(ctx, p); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}
	if lines, _, _ := p.Page(); len(lines) == 0 || lines[0] != "Chapter 1" {
		t.Errorf("first page = %q", lines)
	}

	if ok, err := s.Goto(ctx, "ch2.xhtml#ch2-p3"); !ok || err != nil {
		t.Fatalf("Goto() = %v, %v", ok, err)
	}
	if _, page, _ := p.Page(); s.Position() != 1 || page < 2 {
		t.Errorf("Goto() landed at chapter %d page %d", s.Position(), page)
	}

	// page turns past the end of the first chapter land in the second one
	if _, _, err := s.Display(ctx, book.AtSpine(0)); err != nil {
		t.Fatal(err)
	}
	for range 50 {
		if s.Position() == 1 {
			break
		}
		if _, err := s.NextPage(ctx); err != nil {
			t.Fatalf("NextPage() error = %v", err)
		}
	}
	if _, page, _ := p.Page(); s.Position() != 1 || page != 1 {
		t.Errorf("page turns reached chapter %d page %d", s.Position(), page)
	}
}
