package book

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"epubr/epub"
	"epubr/storage"
)

// Target is navigation destination: either spine index or fragment
// identifier string.
type Target struct {
	spine    int
	location string
}

// AtSpine addresses spine item by index.
func AtSpine(i int) Target { return Target{spine: i} }

// AtLocation addresses place inside the book by fragment identifier.
func AtLocation(cfi string) Target { return Target{location: cfi} }

func (t Target) String() string {
	if t.location != "" {
		return t.location
	}
	return fmt.Sprintf("spine %d", t.spine)
}

type position struct {
	spine   int
	locator string
	// locator is fragment identifier path rather than section id
	structured bool
}

func (t Target) position() (position, error) {
	if t.location == "" {
		return position{spine: t.spine}, nil
	}
	cfi, err := epub.ParseCFI(t.location)
	if err != nil {
		return position{}, err
	}
	return position{spine: cfi.Spine, locator: cfi.Path, structured: true}, nil
}

// Position is resolved link.
type Position struct {
	Spine   int
	Section string
}

// Display shows target chapter. Returns false without error when target is
// outside of spine, position is not changed in this case.
func (s *Session) Display(ctx context.Context, t Target) (*Chapter, bool, error) {
	p, err := t.position()
	if err != nil {
		return nil, false, fmt.Errorf("unable to address %s: %w", t, err)
	}

	s.navMu.Lock()
	defer s.navMu.Unlock()
	return s.displayAt(ctx, p, false)
}

// displayAt expects navMu to be held.
func (s *Session) displayAt(ctx context.Context, p position, end bool) (*Chapter, bool, error) {
	spine, err := s.ready.Spine.Wait(ctx)
	if err != nil {
		return nil, false, err
	}
	if p.spine < 0 || p.spine >= len(spine) {
		s.log.Debug("Navigation out of range", zap.Int("position", p.spine), zap.Int("spine", len(spine)))
		return nil, false, nil
	}

	s.mu.Lock()
	r := s.renderer
	if r == nil {
		s.mu.Unlock()
		return nil, false, ErrNoRenderer
	}
	item := spine[p.spine]
	ch := &Chapter{Index: item.Index, ID: item.ID, Href: item.Href, Linear: item.Linear, fetch: s.fetch}
	s.pos = p.spine
	s.current = ch
	prefetch := s.blobs == nil && s.settings.Prefetch
	s.mu.Unlock()

	if err := s.hooks.Wait(ctx, HookPointBeforeChapterDisplay, ch); err != nil {
		return nil, false, err
	}
	if err := r.Render(ctx, ch); err != nil {
		return nil, false, fmt.Errorf("unable to render %s: %w", ch.Href, err)
	}
	switch {
	case p.structured:
		if !r.GotoLocator(p.locator) {
			s.log.Debug("Locator not found", zap.String("locator", p.locator), zap.String("chapter", ch.Href))
		}
	case end:
		r.GotoEnd()
	}

	s.events.emit(Event{Kind: EventKindChapterDisplayed, Chapter: ch, Location: r.Location()})
	if err := s.saveSettings(ctx); err != nil {
		s.log.Warn("Unable to save settings", zap.Error(err))
	}
	if prefetch && p.spine+1 < len(spine) {
		s.prefetch(ctx, spine[p.spine+1].Href)
	}
	return ch, true, nil
}

// prefetch fetches next chapter in background. Nothing waits for it and its
// failure is only logged.
func (s *Session) prefetch(ctx context.Context, addr string) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Go(func() {
		data, err := s.fetcher.Fetch(ctx, addr)
		if err != nil {
			s.log.Debug("Prefetch failed", zap.String("address", addr), zap.Error(err))
			return
		}
		s.ahead.put(addr, data)
	})
}

// NextChapter displays next spine item, false at the end of the book.
func (s *Session) NextChapter(ctx context.Context) (bool, error) {
	s.navMu.Lock()
	defer s.navMu.Unlock()
	return s.nextChapter(ctx)
}

// PrevChapter displays last page of previous spine item, false at the start
// of the book.
func (s *Session) PrevChapter(ctx context.Context) (bool, error) {
	s.navMu.Lock()
	defer s.navMu.Unlock()
	return s.prevChapter(ctx)
}

func (s *Session) nextChapter(ctx context.Context) (bool, error) {
	_, ok, err := s.displayAt(ctx, position{spine: s.Position() + 1}, false)
	return ok, err
}

func (s *Session) prevChapter(ctx context.Context) (bool, error) {
	_, ok, err := s.displayAt(ctx, position{spine: s.Position() - 1}, true)
	return ok, err
}

// NextPage turns page, moving to next chapter when current one is exhausted.
func (s *Session) NextPage(ctx context.Context) (bool, error) {
	s.navMu.Lock()
	defer s.navMu.Unlock()

	r, ch, err := s.displayed()
	if err != nil {
		return false, err
	}
	if r.NextPage() {
		s.events.emit(Event{Kind: EventKindPageChanged, Chapter: ch, Location: r.Location()})
		return true, nil
	}
	return s.nextChapter(ctx)
}

// PrevPage turns page back, moving to the end of previous chapter when
// current one is at its start.
func (s *Session) PrevPage(ctx context.Context) (bool, error) {
	s.navMu.Lock()
	defer s.navMu.Unlock()

	r, ch, err := s.displayed()
	if err != nil {
		return false, err
	}
	if r.PrevPage() {
		s.events.emit(Event{Kind: EventKindPageChanged, Chapter: ch, Location: r.Location()})
		return true, nil
	}
	return s.prevChapter(ctx)
}

func (s *Session) displayed() (Renderer, *Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.renderer == nil {
		return nil, nil, ErrNoRenderer
	}
	if s.current == nil {
		return nil, nil, ErrNotOpened
	}
	return s.renderer, s.current, nil
}

// ResolveLink maps link found in book content to spine position. Links
// without address part stay in current chapter. Returns false for links
// outside of spine.
func (s *Session) ResolveLink(link string) (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLink(link)
}

func (s *Session) resolveLink(link string) (Position, bool) {
	if s.contents == nil {
		return Position{}, false
	}
	addr, section := epub.SplitFragment(link)
	if addr == "" {
		return Position{Spine: s.pos, Section: section}, true
	}
	if !strings.Contains(addr, "://") {
		addr = epub.ResolveHref(s.contents.ContentsPath, addr)
	}
	pos, ok := s.contents.SpineIndexByURL[addr]
	if !ok {
		return Position{}, false
	}
	return Position{Spine: pos, Section: section}, true
}

// Goto follows link. Different chapter is displayed first, then renderer
// moves to linked section. Returns false when link cannot be resolved.
func (s *Session) Goto(ctx context.Context, link string) (bool, error) {
	s.navMu.Lock()
	defer s.navMu.Unlock()

	s.mu.Lock()
	p, ok := s.resolveLink(link)
	current, r := s.current, s.renderer
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	if current == nil || current.Index != p.Spine {
		if _, ok, err := s.displayAt(ctx, position{spine: p.Spine}, false); err != nil || !ok {
			return ok, err
		}
		s.mu.Lock()
		r = s.renderer
		s.mu.Unlock()
	}
	if p.Section != "" && r != nil && !r.GotoSection(p.Section) {
		s.log.Debug("Section not found", zap.String("link", link))
	}
	return true, nil
}

// Resource fetches book resource using session fetch policy.
func (s *Session) Resource(ctx context.Context, addr string, format storage.Format) ([]byte, error) {
	return s.fetch(ctx, addr, format)
}
