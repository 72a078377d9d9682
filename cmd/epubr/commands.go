package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"epubr/book"
	"epubr/config"
	"epubr/epub"
	"epubr/render"
	"epubr/state"
	"epubr/utils/debug"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	checkInterval = 30 * time.Second
	checkTimeout  = 5 * time.Second
)

func runInfo(ctx context.Context, cmd *cli.Command) (err error) {
	lib, err := openLibrary(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, lib.close(ctx)) }()

	s := lib.session
	if _, err := s.Ready().Spine.Wait(ctx); err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, s.Contents().String())

	tw := debug.NewTreeWriter()
	tw.Line(1, "Address: %s", s.BookURL())
	tw.Line(1, "Available offline: %t", s.AvailableOffline())
	fmt.Fprint(os.Stdout, tw.String())
	return nil
}

func runStore(ctx context.Context, cmd *cli.Command) (err error) {
	lib, err := openLibrary(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, lib.close(ctx)) }()

	s := lib.session
	if s.Settings().Contained {
		lib.log.Info("Packaged book is kept extracted, nothing to store")
		return nil
	}
	if s.AvailableOffline() {
		lib.log.Info("Book is already available offline")
		return nil
	}
	return s.StoreOffline(ctx)
}

func runRead(ctx context.Context, cmd *cli.Command) (err error) {
	lib, err := openLibrary(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, lib.close(ctx)) }()

	s := lib.session
	width, height := pageSize(s.Settings())
	pager := render.New(width, height-2, lib.log)

	if _, err := s.RenderTo(ctx, pager); err != nil {
		return err
	}
	if at := cmd.String("at"); len(at) > 0 {
		if err := jump(ctx, s, at); err != nil {
			return err
		}
	}

	// stop runs before deferred close above
	stop := lib.watchConnectivity(ctx, checkInterval)
	defer stop()

	head, err := newHeader(state.EnvFromContext(ctx).Cfg.Terminal.HeaderTemplate)
	if err != nil {
		return err
	}
	r := &reader{s: s, pager: pager, head: head, out: os.Stdout}
	return r.loop(ctx, os.Stdin)
}

func pageSize(settings book.Settings) (int, int) {
	width, height := settings.Width, settings.Height
	if width > 0 && height > 0 {
		return width, height
	}
	w, h, ok := config.TerminalSize(os.Stdout)
	if !ok {
		w, h = defaultWidth, defaultHeight
	}
	if width <= 0 {
		width = w
	}
	if height <= 0 {
		height = h
	}
	return width, height
}

func jump(ctx context.Context, s *book.Session, at string) error {
	if epub.IsCFI(at) {
		_, ok, err := s.Display(ctx, book.AtLocation(at))
		if err == nil && !ok {
			err = fmt.Errorf("location %s is outside of the book", at)
		}
		return err
	}
	ok, err := s.Goto(ctx, at)
	if err == nil && !ok {
		err = fmt.Errorf("link %s does not point into the book", at)
	}
	return err
}

// reader is interactive terminal loop.
type reader struct {
	s     *book.Session
	pager *render.Pager
	head  *header
	out   io.Writer
}

func (r *reader) loop(ctx context.Context, in io.Reader) error {
	r.show()
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")

		var (
			ok  bool
			err error
		)
		switch cmd {
		case "", "n":
			ok, err = r.s.NextPage(ctx)
		case "p":
			ok, err = r.s.PrevPage(ctx)
		case "N":
			ok, err = r.s.NextChapter(ctx)
		case "P":
			ok, err = r.s.PrevChapter(ctx)
		case "g":
			ok = true
			err = jump(ctx, r.s, strings.TrimSpace(arg))
		case "t":
			r.toc(ctx)
			continue
		case "q":
			return nil
		default:
			fmt.Fprintf(r.out, "unknown command %q\n", cmd)
			continue
		}
		switch {
		case errors.Is(err, context.Canceled):
			return err
		case err != nil:
			fmt.Fprintf(r.out, "error: %v\n", err)
		case !ok:
			fmt.Fprintln(r.out, "-- no more --")
		default:
			r.show()
		}
	}
}

func (r *reader) show() {
	lines, page, total := r.pager.Page()
	if ch := r.s.Current(); ch != nil {
		v := HeaderValues{Href: ch.Href, Index: ch.Index + 1, Page: page, Pages: total, Online: r.s.IsOnline()}
		if c := r.s.Contents(); c != nil {
			v.Total = len(c.Spine)
			v.Title, v.Creator, v.Language = c.Metadata["title"], c.Metadata["creator"], c.Metadata["language"]
		}
		fmt.Fprintln(r.out, r.title(v))
	}
	for _, l := range lines {
		fmt.Fprintln(r.out, l)
	}
}

func (r *reader) title(v HeaderValues) string {
	if r.head != nil {
		if s, err := r.head.expand(v); err == nil {
			return s
		}
	}
	return fmt.Sprintf("[%d/%d] %s  page %d/%d", v.Index, v.Total, v.Href, v.Page, v.Pages)
}

func (r *reader) toc(ctx context.Context) {
	toc, err := r.s.TOC(ctx)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	tw := debug.NewTreeWriter()
	var walk func(depth int, entries []epub.TOCEntry)
	walk = func(depth int, entries []epub.TOCEntry) {
		for _, e := range entries {
			tw.Item(depth, "-", "%s  (g %s)", e.Label, e.Href)
			walk(depth+1, e.Children)
		}
	}
	walk(0, toc)
	fmt.Fprint(r.out, tw.String())
}
