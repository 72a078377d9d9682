package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"epubr/archive"
	"epubr/book"
	"epubr/config"
	"epubr/fetch"
	"epubr/state"
	"epubr/storage"
)

// library is opened book together with everything serving it.
type library struct {
	session *book.Session
	store   *storage.Store
	fetcher *fetch.Client
	log     *zap.Logger
}

// bookRef turns command line argument into address. Local paths become
// "file://" addresses so drive letters and separators never reach resolver.
func bookRef(arg string) (string, error) {
	if strings.Contains(arg, "://") {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("unable to resolve path '%s': %w", arg, err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}

func openLibrary(ctx context.Context, cmd *cli.Command) (*library, error) {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return nil, errors.New("no book specified")
	}
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many books", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	ref, err := bookRef(cmd.Args().First())
	if err != nil {
		return nil, err
	}

	dir, err := env.PrepareStorageDir()
	if err != nil {
		return nil, err
	}

	lib := &library{fetcher: fetch.New(nil, env.Log), log: env.Log}
	settings := book.SettingsFrom(&env.Cfg.Reader)
	settings.Online = initialOnline(ctx, &env.Cfg.Reader, ref, lib.fetcher.Reachable)

	if lib.store, err = storage.Open(settings.Storage, dir, lib.fetcher, env.Log); err != nil {
		return nil, err
	}
	env.ReportStorage(lib.store.Location())

	opts := book.Options{
		Settings:   settings,
		Log:        env.Log,
		Fetcher:    lib.fetcher,
		Records:    lib.store,
		Unarchiver: archive.NewExtractor(env.BooksDir(), lib.fetcher, env.Log),
		Hooks: map[book.HookPoint][]book.Gate{
			book.HookPointBeforeChapterDisplay: {func(done func(), ch *book.Chapter) {
				defer done()
				env.Log.Debug("Displaying chapter", zap.Int("index", ch.Index), zap.String("href", ch.Href))
			}},
		},
	}
	if settings.Storage != config.StorageModeOff {
		opts.Blobs = lib.store
	}

	if lib.session, err = book.New(opts); err != nil {
		return nil, multierr.Append(err, lib.store.Close())
	}
	lib.session.Events().On(book.EventKindStored, func(book.Event) {
		env.Log.Info("Book is available offline")
	})

	if err := lib.session.Open(ctx, ref, book.OpenOptions{ForceReload: cmd.Bool("reload")}); err != nil {
		var le *book.LoadError
		if !errors.As(err, &le) || le.Stage != book.StageToc {
			return nil, multierr.Append(err, lib.close(ctx))
		}
		// book is readable without navigation document
		env.Log.Warn("Book has no usable table of contents", zap.Error(err))
	}
	return lib, nil
}

func isRemote(addr string) bool {
	return strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://")
}

// initialOnline decides connectivity at start. Unless configured it is
// detected for remote books, local ones are always reachable.
func initialOnline(ctx context.Context, cfg *config.ReaderConfig, ref string, reachable func(context.Context, string) bool) bool {
	if cfg.Online != nil {
		return *cfg.Online
	}
	if !isRemote(ref) {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return reachable(ctx, ref)
}

// watchConnectivity follows connectivity of remote book until returned stop
// is called. Stop returns after watching goroutine is gone, so nothing can
// start detached work once session is being closed.
func (lib *library) watchConnectivity(ctx context.Context, interval time.Duration) (stop func()) {
	s := lib.session
	if !isRemote(s.BookURL()) {
		return func() {}
	}
	wctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := s.Watch(wctx, func(ctx context.Context) bool {
			return lib.fetcher.Reachable(ctx, s.BookURL())
		}, interval)
		lib.log.Debug("Connectivity watch stopped", zap.Error(err))
	}()
	return func() {
		cancel()
		<-done
	}
}

func (lib *library) close(ctx context.Context) error {
	var err error
	if lib.session != nil {
		err = multierr.Append(err, lib.session.Close(context.WithoutCancel(ctx)))
	}
	return multierr.Append(err, lib.store.Close())
}
