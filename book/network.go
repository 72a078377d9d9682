package book

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// IsOnline reports connectivity state of the session.
func (s *Session) IsOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// GoOffline records loss of connectivity.
func (s *Session) GoOffline() {
	s.mu.Lock()
	changed := s.online
	s.online = false
	s.mu.Unlock()

	if changed {
		s.log.Info("Went offline")
		s.events.emit(Event{Kind: EventKindOffline})
	}
}

// GoOnline records restored connectivity. Book not yet available offline
// is stored in background.
func (s *Session) GoOnline(ctx context.Context) {
	s.mu.Lock()
	changed := !s.online
	s.online = true
	s.mu.Unlock()

	if !changed {
		return
	}
	s.log.Info("Went online")
	s.events.emit(Event{Kind: EventKindOnline})
	if s.shouldStore() {
		s.storeDetached(ctx)
	}
}

// Watch calls reachable every interval and reports connectivity transitions
// until ctx is done.
func (s *Session) Watch(ctx context.Context, reachable func(context.Context) bool, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			up := reachable(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			switch {
			case up && !s.IsOnline():
				s.GoOnline(ctx)
			case !up && s.IsOnline():
				s.GoOffline()
			}
		}
	}
}

// AvailableOffline reports whether every book resource was stored.
func (s *Session) AvailableOffline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Stored
}

func (s *Session) shouldStore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online && s.blobs != nil && !s.settings.Contained && !s.settings.Stored && s.contents != nil
}

func (s *Session) storeDetached(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Go(func() {
		if err := s.StoreOffline(ctx); err != nil {
			s.log.Warn("Unable to store book offline", zap.Error(err))
		}
	})
}

// StoreOffline puts every manifest resource into storage.
func (s *Session) StoreOffline(ctx context.Context) error {
	if s.blobs == nil {
		return ErrNoStorage
	}
	manifest, err := s.ready.Manifest.Wait(ctx)
	if err != nil {
		return err
	}

	addrs := slices.Collect(maps.Keys(hrefSet(manifest)))
	slices.SortFunc(addrs, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	if err := s.blobs.Batch(ctx, addrs); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings.Stored = true
	s.mu.Unlock()

	s.log.Info("Book stored offline", zap.Int("resources", len(addrs)))
	s.events.emit(Event{Kind: EventKindStored})
	return nil
}
