// Package book drives reading of a single packaged book: it discovers book
// structure (or restores it from records saved by earlier sessions), keeps
// reading position and hands chapters to a renderer.
package book

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"epubr/epub"
	"epubr/misc"
	"epubr/storage"
)

// Unarchiver unpacks packaged book and returns base address of its content.
// Remove drops unpacked content so next Unarchive starts clean.
type Unarchiver interface {
	Unarchive(ctx context.Context, addr string) (string, error)
	Remove(addr string) error
}

// Renderer displays chapters. Locators and section ids are interpreted by
// renderer, Location returns fragment identifier of what is currently shown.
type Renderer interface {
	Render(ctx context.Context, ch *Chapter) error
	GotoLocator(locator string) bool
	GotoEnd()
	NextPage() bool
	PrevPage() bool
	GotoSection(id string) bool
	Location() string
}

// Options configure new session.
type Options struct {
	Settings Settings
	Log      *zap.Logger
	// Fetcher is used for direct resource access, required.
	Fetcher storage.Fetcher
	// Blobs enables resource storage when set.
	Blobs storage.Blobs
	// Records keep settings and structure between sessions, nothing is
	// persisted when nil.
	Records    storage.Records
	Unarchiver Unarchiver
	Resolver   Resolver
	// LibraryVersion qualifies persisted records, defaults to program
	// version.
	LibraryVersion string
	// Hooks are registered before session starts.
	Hooks map[HookPoint][]Gate
}

// OpenOptions modify Open behavior.
type OpenOptions struct {
	// ForceReload drops saved settings so structure is parsed again.
	ForceReload bool
}

// Session is a single book being read.
type Session struct {
	ID string

	log        *zap.Logger
	fetcher    storage.Fetcher
	blobs      storage.Blobs
	cache      *cacheManager
	unarchiver Unarchiver
	resolver   Resolver
	hooks      *Hooks
	events     *Events
	ready      *Ready
	ahead      prefetched

	// navigation calls are executed one at a time
	navMu sync.Mutex

	mu       sync.Mutex
	settings Settings
	opened   bool
	bookURL  string
	contents *Contents
	pos      int
	current  *Chapter
	online   bool
	renderer Renderer

	// detached work: offline storing and prefetch
	wg sync.WaitGroup
}

// New creates session, no book is loaded until Open.
func New(opts Options) (*Session, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	version := opts.LibraryVersion
	if version == "" {
		version = misc.GetVersion()
	}
	if opts.Resolver.Origin == "" {
		r, err := LocalResolver()
		if err != nil {
			return nil, err
		}
		opts.Resolver = r
	}

	id := uuid.NewString()
	log = log.Named("book").With(zap.String("session", id))

	s := &Session{
		ID:         id,
		log:        log,
		fetcher:    opts.Fetcher,
		blobs:      opts.Blobs,
		unarchiver: opts.Unarchiver,
		resolver:   opts.Resolver,
		hooks:      NewHooks(),
		events:     newEvents(),
		settings:   opts.Settings,
		online:     opts.Settings.Online,
		cache:      &cacheManager{records: opts.Records, version: version, log: log.Named("cache")},
	}
	s.ready = newReady(func(f Facet) {
		s.events.emit(Event{Kind: EventKindReady, Facet: f})
	})
	for point, gates := range opts.Hooks {
		s.hooks.Register(point, gates...)
	}
	return s, nil
}

// Hooks returns session hook registry.
func (s *Session) Hooks() *Hooks { return s.hooks }

// Events returns session listener registry.
func (s *Session) Events() *Events { return s.events }

// Ready returns readiness signals of book structure.
func (s *Session) Ready() *Ready { return s.ready }

// BookURL returns resolved address of opened book.
func (s *Session) BookURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookURL
}

// Settings returns copy of effective settings.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Position returns current spine position.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Current returns chapter displayed last, nil before first display.
func (s *Session) Current() *Chapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Contents returns loaded book structure, nil until package is parsed.
func (s *Session) Contents() *Contents {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contents
}

// Metadata waits for book metadata.
func (s *Session) Metadata(ctx context.Context) (map[string]string, error) {
	return s.ready.Metadata.Wait(ctx)
}

// TOC waits for table of contents.
func (s *Session) TOC(ctx context.Context) ([]epub.TOCEntry, error) {
	return s.ready.TOC.Wait(ctx)
}

// Open resolves book reference and loads book structure, either restoring
// it from records or parsing book documents. On failure every readiness
// signal not yet resolved is rejected with returned error.
func (s *Session) Open(ctx context.Context, ref string, opts OpenOptions) error {
	s.mu.Lock()
	if s.opened {
		s.mu.Unlock()
		return ErrAlreadyOpened
	}
	s.opened = true
	s.bookURL = s.resolver.Resolve(ref)
	s.mu.Unlock()

	log := s.log.With(zap.String("book", s.bookURL))
	if opts.ForceReload {
		s.cache.removeSettings(ctx, s.bookURL, s.settings.Version)
		if s.unarchiver != nil && (s.settings.Contained || isContained(s.bookURL)) {
			if err := s.unarchiver.Remove(s.bookURL); err != nil {
				log.Warn("Unable to remove unpacked book", zap.Error(err))
			}
		}
	}

	strategy := s.decideLoadStrategy(ctx)
	log.Debug("Opening book", zap.Stringer("strategy", strategy))

	var err error
	switch strategy {
	case StrategyRestore:
		err = s.restore(ctx)
	case StrategyUnarchive:
		err = s.unarchive(ctx)
	default:
		err = s.unpack(ctx, s.bookURL)
	}
	if err != nil {
		s.ready.fail(err)
		log.Error("Unable to open book", zap.Error(err))
		return err
	}

	if s.shouldStore() {
		s.storeDetached(ctx)
	}
	return nil
}

// decideLoadStrategy picks how structure is obtained. Saved settings are
// merged into session settings here.
func (s *Session) decideLoadStrategy(ctx context.Context) Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()

	if saved := s.cache.loadSettings(ctx, s.bookURL, s.settings.Version); saved != nil {
		saved.applyTo(&s.settings)
		if !s.settings.Storage.Persistent() {
			// resources stored by earlier process did not survive it
			s.settings.Stored = false
		}
		switch {
		case s.settings.Restore:
			return StrategyRestore
		case s.settings.Contained:
			return StrategyUnarchive
		default:
			return StrategyUnpack
		}
	}
	if s.settings.Contained || isContained(s.bookURL) {
		s.settings.Contained = true
		s.settings.Restore = true
		return StrategyUnarchive
	}
	return StrategyUnpack
}

// RenderTo attaches renderer and displays starting chapter.
func (s *Session) RenderTo(ctx context.Context, r Renderer) (*Chapter, error) {
	s.mu.Lock()
	s.renderer = r
	s.mu.Unlock()
	return s.StartDisplay(ctx)
}

// StartDisplay shows location saved by previous session or current position.
func (s *Session) StartDisplay(ctx context.Context) (*Chapter, error) {
	s.navMu.Lock()
	defer s.navMu.Unlock()

	s.mu.Lock()
	prev, pos := s.settings.PreviousLocation, s.pos
	s.mu.Unlock()

	if prev != "" {
		t := AtLocation(prev)
		if p, err := t.position(); err == nil {
			ch, ok, err := s.displayAt(ctx, p, false)
			if err != nil || ok {
				return ch, err
			}
		}
		s.log.Warn("Unable to return to previous location", zap.String("location", prev))
	}
	ch, ok, err := s.displayAt(ctx, position{spine: pos}, false)
	if err == nil && !ok {
		err = fmt.Errorf("position %d is out of range", pos)
	}
	return ch, err
}

// Close waits for detached work, persists settings (and structure when
// restore is enabled) and notifies listeners. Session cannot be used after
// Close.
func (s *Session) Close(ctx context.Context) error {
	s.wg.Wait()

	var errs error
	if base := s.BookURL(); base != "" {
		errs = multierr.Append(errs, s.saveSettings(ctx))

		settings, contents := s.Settings(), s.Contents()
		if settings.Restore && contents.complete() {
			errs = multierr.Append(errs, s.cache.saveContents(ctx, base, settings.Version, contents))
		}
	}
	s.events.emit(Event{Kind: EventKindUnload})
	return errs
}

func (s *Session) saveSettings(ctx context.Context) error {
	s.mu.Lock()
	if s.renderer != nil {
		if loc := s.renderer.Location(); loc != "" {
			s.settings.PreviousLocation = loc
		}
	}
	settings, base := s.settings, s.bookURL
	s.mu.Unlock()

	return s.cache.saveSettings(ctx, base, settings.Version, settings)
}

// fetch obtains book resource: through storage when configured, directly
// otherwise. Decision is made for every request.
func (s *Session) fetch(ctx context.Context, addr string, format storage.Format) ([]byte, error) {
	if s.blobs != nil {
		return s.blobs.Fetch(ctx, addr, format)
	}
	if data, ok := s.ahead.take(addr); ok {
		return data, nil
	}
	return s.fetcher.Fetch(ctx, addr)
}
