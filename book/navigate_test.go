package book

import (
	"errors"
	"slices"
	"testing"

	"epubr/epub"
	"epubr/epub/epubtest"
)

func TestDisplay_Bounds(t *testing.T) {
	f := newFixture(t, epubtest.New(3, 2))
	s := openSession(t, f, nil)
	ctx := testContext(t)
	r := newRenderer(1)

	if _, err := s.RenderTo(ctx, r); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}
	if s.Position() != 0 {
		t.Fatalf("initial position = %d", s.Position())
	}

	for i := range 3 {
		ch, ok, err := s.Display(ctx, AtSpine(i))
		if err != nil || !ok {
			t.Fatalf("Display(%d) = %v, %v", i, ok, err)
		}
		if ch.Index != i || s.Position() != i {
			t.Errorf("Display(%d) chapter %d, position %d", i, ch.Index, s.Position())
		}
		if c, _ := r.state(); c != i {
			t.Errorf("renderer shows %d, want %d", c, i)
		}
	}

	for _, i := range []int{-1, 3, 100} {
		ch, ok, err := s.Display(ctx, AtSpine(i))
		if err != nil || ok || ch != nil {
			t.Errorf("Display(%d) = %v, %v, %v; want no-op", i, ch, ok, err)
		}
		if s.Position() != 2 {
			t.Errorf("position changed to %d by out of range display", s.Position())
		}
	}
}

func TestNextChapter_EndToEnd(t *testing.T) {
	f := newFixture(t, epubtest.New(3, 1))
	s := openSession(t, f, nil)
	ctx := testContext(t)

	if _, err := s.RenderTo(ctx, newRenderer(1)); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}
	if s.Position() != 0 {
		t.Fatalf("position after initial display = %d", s.Position())
	}

	var results []bool
	for range 3 {
		ok, err := s.NextChapter(ctx)
		if err != nil {
			t.Fatalf("NextChapter() error = %v", err)
		}
		results = append(results, ok)
	}
	if !slices.Equal(results, []bool{true, true, false}) || s.Position() != 2 {
		t.Errorf("NextChapter() x3 = %v, position %d", results, s.Position())
	}
	if ok, err := s.NextChapter(ctx); ok || err != nil {
		t.Errorf("fourth NextChapter() = %v, %v", ok, err)
	}
	if s.Position() != 2 {
		t.Errorf("position = %d, want 2", s.Position())
	}
}

func TestPages_CrossChapters(t *testing.T) {
	f := newFixture(t, epubtest.New(2, 1))
	s := openSession(t, f, nil)
	ctx := testContext(t)
	r := newRenderer(2)

	pageChanges := 0
	s.Events().On(EventKindPageChanged, func(ev Event) {
		if ev.Location == "" {
			t.Error("page change without location")
		}
		pageChanges++
	})

	if _, err := s.RenderTo(ctx, r); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}

	type state struct{ ch, page int }
	steps := []struct {
		name string
		move func() (bool, error)
		ok   bool
		want state
	}{
		{"next within chapter", func() (bool, error) { return s.NextPage(ctx) }, true, state{0, 1}},
		{"next crosses chapter", func() (bool, error) { return s.NextPage(ctx) }, true, state{1, 0}},
		{"next within last", func() (bool, error) { return s.NextPage(ctx) }, true, state{1, 1}},
		{"next at the end", func() (bool, error) { return s.NextPage(ctx) }, false, state{1, 1}},
		{"prev within chapter", func() (bool, error) { return s.PrevPage(ctx) }, true, state{1, 0}},
		{"prev lands on end of previous", func() (bool, error) { return s.PrevPage(ctx) }, true, state{0, 1}},
		{"prev within first", func() (bool, error) { return s.PrevPage(ctx) }, true, state{0, 0}},
		{"prev at the start", func() (bool, error) { return s.PrevPage(ctx) }, false, state{0, 0}},
	}
	for _, st := range steps {
		ok, err := st.move()
		if err != nil {
			t.Fatalf("%s: error = %v", st.name, err)
		}
		ch, page := r.state()
		if ok != st.ok || (state{ch, page}) != st.want {
			t.Errorf("%s: ok %v at %d/%d, want %v at %+v", st.name, ok, ch, page, st.ok, st.want)
		}
	}
	if pageChanges != 4 {
		t.Errorf("page change events = %d, want 4", pageChanges)
	}
}

func TestDisplay_Location(t *testing.T) {
	f := newFixture(t, epubtest.New(3, 1))
	s := openSession(t, f, nil)
	ctx := testContext(t)
	r := newRenderer(3)
	if _, err := s.RenderTo(ctx, r); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}

	ch, ok, err := s.Display(ctx, AtLocation("epubcfi(/6/4[ch2]!/4:2)"))
	if err != nil || !ok || ch.Index != 1 {
		t.Fatalf("Display(cfi) = %+v, %v, %v", ch, ok, err)
	}
	if c, p := r.state(); c != 1 || p != 2 {
		t.Errorf("renderer at %d/%d, want 1/2", c, p)
	}

	if _, ok, err := s.Display(ctx, AtLocation("epubcfi(/6/20!/4:0)")); ok || err != nil {
		t.Errorf("Display(out of range cfi) = %v, %v", ok, err)
	}
	if _, _, err := s.Display(ctx, AtLocation("ch2.xhtml")); !errors.Is(err, epub.ErrBadLocation) {
		t.Errorf("Display(bad cfi) error = %v", err)
	}
}

func TestDisplay_NoRenderer(t *testing.T) {
	f := newFixture(t, epubtest.New(1, 1))
	s := openSession(t, f, nil)
	if _, _, err := s.Display(testContext(t), AtSpine(0)); !errors.Is(err, ErrNoRenderer) {
		t.Errorf("Display() without renderer = %v", err)
	}
	if _, err := s.NextPage(testContext(t)); !errors.Is(err, ErrNoRenderer) {
		t.Errorf("NextPage() without renderer = %v", err)
	}
}

func TestDisplay_HooksRunBeforeRender(t *testing.T) {
	f := newFixture(t, epubtest.New(2, 1))
	var journal []string
	s := openSession(t, f, func(o *Options) {
		o.Hooks = map[HookPoint][]Gate{
			HookPointBeforeChapterDisplay: {func(done func(), ch *Chapter) {
				journal = append(journal, "gate")
				done()
			}},
		}
	})
	ctx := testContext(t)
	r := newRenderer(1)
	r.journal = &journal

	if _, err := s.RenderTo(ctx, r); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}
	if _, err := s.NextChapter(ctx); err != nil {
		t.Fatalf("NextChapter() error = %v", err)
	}
	want := []string{"gate", "render 0", "gate", "render 1"}
	if !slices.Equal(journal, want) {
		t.Errorf("journal = %v, want %v", journal, want)
	}
}

func TestResolveLink(t *testing.T) {
	s := &Session{
		contents: &Contents{
			ContentsPath:    "/a/",
			SpineIndexByURL: map[string]int{"/a/ch1.html": 0, "/a/ch2.html": 1},
		},
		pos: 0,
	}
	tests := []struct {
		link string
		want Position
		ok   bool
	}{
		{"ch2.html#sec3", Position{Spine: 1, Section: "sec3"}, true},
		{"#sec3", Position{Spine: 0, Section: "sec3"}, true},
		{"ch1.html", Position{Spine: 0}, true},
		{"/a/ch2.html", Position{Spine: 1}, true},
		{"ch3.html#x", Position{}, false},
		{"http://elsewhere.org/ch1.html", Position{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			got, ok := s.ResolveLink(tt.link)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ResolveLink(%q) = %+v, %v; want %+v, %v", tt.link, got, ok, tt.want, tt.ok)
			}
		})
	}

	if _, ok := (&Session{}).ResolveLink("#x"); ok {
		t.Error("link resolved without loaded book")
	}
}

func TestGoto(t *testing.T) {
	f := newFixture(t, epubtest.New(3, 2))
	s := openSession(t, f, nil)
	ctx := testContext(t)
	r := newRenderer(1)
	if _, err := s.RenderTo(ctx, r); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}

	if ok, err := s.Goto(ctx, "ch2.xhtml#ch2-p2"); !ok || err != nil {
		t.Fatalf("Goto(other chapter) = %v, %v", ok, err)
	}
	if s.Position() != 1 || !slices.Equal(r.renders(), []int{0, 1}) {
		t.Errorf("position %d, renders %v", s.Position(), r.renders())
	}

	if ok, err := s.Goto(ctx, "#ch2-p1"); !ok || err != nil {
		t.Fatalf("Goto(fragment) = %v, %v", ok, err)
	}
	if ok, err := s.Goto(ctx, f.base()+"OEBPS/ch2.xhtml#ch2-p2"); !ok || err != nil {
		t.Fatalf("Goto(absolute, same chapter) = %v, %v", ok, err)
	}
	if !slices.Equal(r.renders(), []int{0, 1}) {
		t.Errorf("same chapter link rendered again: %v", r.renders())
	}
	if !slices.Equal(r.sections, []string{"ch2-p2", "ch2-p1", "ch2-p2"}) {
		t.Errorf("sections = %v", r.sections)
	}

	if ok, err := s.Goto(ctx, "missing.xhtml#x"); ok || err != nil {
		t.Errorf("Goto(missing) = %v, %v", ok, err)
	}
}

func TestPrefetch(t *testing.T) {
	f := newFixture(t, epubtest.New(3, 1))
	s := openSession(t, f, nil)
	ctx := testContext(t)
	if _, err := s.RenderTo(ctx, newRenderer(1)); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}
	s.wg.Wait()

	if n := f.hitsOf("OEBPS/ch2.xhtml"); n != 1 {
		t.Fatalf("next chapter fetched %d times after display, want 1", n)
	}
	if _, err := s.NextChapter(ctx); err != nil {
		t.Fatalf("NextChapter() error = %v", err)
	}
	s.wg.Wait()
	if n := f.hitsOf("OEBPS/ch2.xhtml"); n != 1 {
		t.Errorf("prefetched chapter fetched again, %d requests", n)
	}
	if n := f.hitsOf("OEBPS/ch3.xhtml"); n != 1 {
		t.Errorf("third chapter prefetch requests = %d", n)
	}
}

func TestPrefetch_Disabled(t *testing.T) {
	f := newFixture(t, epubtest.New(2, 1))
	s := openSession(t, f, func(o *Options) { o.Settings.Prefetch = false })
	if _, err := s.RenderTo(testContext(t), newRenderer(1)); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}
	s.wg.Wait()
	if n := f.hitsOf("OEBPS/ch2.xhtml"); n != 0 {
		t.Errorf("next chapter fetched %d times with prefetch disabled", n)
	}
}

func TestPrefetch_FailureIsQuiet(t *testing.T) {
	f := newFixture(t, epubtest.New(2, 1))
	f.remove("OEBPS/ch2.xhtml")
	s := openSession(t, f, nil)
	ctx := testContext(t)
	if _, err := s.RenderTo(ctx, newRenderer(1)); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}
	s.wg.Wait()
	if _, err := s.NextChapter(ctx); err == nil {
		t.Error("expected render error for missing chapter")
	}
}
