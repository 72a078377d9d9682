// Package render implements plain text renderer used by command line reader.
// Chapter markup is reduced to wrapped paragraphs which are then split into
// pages of fixed height.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"epubr/book"
	"epubr/epub"
)

const (
	// content document body step, locators produced by pager are
	// "/4:<line>"
	bodyStep = "/4"

	minWidth  = 20
	minHeight = 3
)

var _ book.Renderer = (*Pager)(nil)

// Pager lays chapter text into pages of width columns and height lines.
type Pager struct {
	width  int
	height int
	log    *zap.Logger

	mu      sync.Mutex
	ch      *book.Chapter
	lines   []string
	anchors map[string]int
	page    int
}

// New returns pager, dimensions below usable minimum are raised to it.
func New(width, height int, log *zap.Logger) *Pager {
	return &Pager{
		width:  max(width, minWidth),
		height: max(height, minHeight),
		log:    log.Named("render"),
	}
}

// Render loads chapter document and lays it out. First page is shown.
func (p *Pager) Render(ctx context.Context, ch *book.Chapter) error {
	data, err := ch.Content(ctx)
	if err != nil {
		return err
	}
	r, err := charset.NewReader(bytes.NewReader(data), "application/xhtml+xml")
	if err != nil {
		return fmt.Errorf("unable to detect encoding of %s: %w", ch.Href, err)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("unable to parse %s: %w", ch.Href, err)
	}

	l := &layout{width: p.width, anchors: make(map[string]int)}
	l.walk(body(doc))
	l.flush()
	l.finish()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.ch, p.lines, p.anchors, p.page = ch, l.lines, l.anchors, 0

	p.log.Debug("Chapter laid out",
		zap.String("chapter", ch.Href),
		zap.Int("lines", len(p.lines)),
		zap.Int("pages", p.pages()),
		zap.Int("anchors", len(p.anchors)))
	return nil
}

func (p *Pager) pages() int {
	return max(1, (len(p.lines)+p.height-1)/p.height)
}

// GotoLocator moves to page holding line addressed by locator. Element id
// asserted in locator is used when line is not usable.
func (p *Pager) GotoLocator(locator string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	var line int
	if _, err := fmt.Sscanf(locator, bodyStep+":%d", &line); err == nil && line >= 0 && line < max(len(p.lines), 1) {
		p.page = line / p.height
		return true
	}
	if id := epub.Anchor(locator); id != "" {
		return p.gotoAnchor(id)
	}
	return false
}

// GotoEnd moves to last page of chapter.
func (p *Pager) GotoEnd() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = p.pages() - 1
}

func (p *Pager) NextPage() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.page+1 >= p.pages() {
		return false
	}
	p.page++
	return true
}

func (p *Pager) PrevPage() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.page == 0 {
		return false
	}
	p.page--
	return true
}

// GotoSection moves to page holding element with id.
func (p *Pager) GotoSection(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gotoAnchor(id)
}

func (p *Pager) gotoAnchor(id string) bool {
	line, ok := p.anchors[id]
	if !ok {
		return false
	}
	p.page = line / p.height
	return true
}

// Location returns fragment identifier of first line on current page.
func (p *Pager) Location() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return ""
	}
	return epub.CFI{
		Spine: p.ch.Index,
		IDRef: p.ch.ID,
		Path:  fmt.Sprintf("%s:%d", bodyStep, p.page*p.height),
	}.String()
}

// Page returns lines of current page and its position in chapter.
func (p *Pager) Page() (lines []string, page, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	start := min(p.page*p.height, len(p.lines))
	end := min(start+p.height, len(p.lines))
	return append([]string(nil), p.lines[start:end]...), p.page + 1, p.pages()
}

func body(doc *html.Node) *html.Node {
	var found *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	if found == nil {
		return doc
	}
	return found
}

// layout accumulates inline text of current block and wraps finished blocks.
type layout struct {
	width   int
	lines   []string
	anchors map[string]int
	// ids seen since last block was emitted
	pending []string
	text    strings.Builder
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Li, atom.Blockquote, atom.Pre, atom.Tr, atom.Dt, atom.Dd,
		atom.Figcaption, atom.Section, atom.Article, atom.Aside, atom.Hr:
		return true
	}
	return false
}

func (l *layout) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		l.words(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Head:
			return
		case atom.Br:
			l.flush()
			return
		case atom.Img:
			if alt := attr(n, "alt"); alt != "" {
				l.words("[" + alt + "]")
			}
		}
	}

	block := n.Type == html.ElementNode && isBlock(n.DataAtom)
	if block {
		l.flush()
	}
	if n.Type == html.ElementNode {
		if id := attr(n, "id"); id != "" {
			l.pending = append(l.pending, id)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		l.walk(c)
	}
	if block {
		l.flush()
	}
}

func (l *layout) words(s string) {
	for _, w := range strings.Fields(s) {
		if l.text.Len() > 0 {
			l.text.WriteByte(' ')
		}
		l.text.WriteString(w)
	}
}

// flush wraps accumulated text into lines followed by empty separator line.
func (l *layout) flush() {
	if l.text.Len() == 0 {
		return
	}
	for _, id := range l.pending {
		if _, dup := l.anchors[id]; !dup {
			l.anchors[id] = len(l.lines)
		}
	}
	l.pending = l.pending[:0]

	l.lines = append(l.lines, wrap(l.text.String(), l.width)...)
	l.lines = append(l.lines, "")
	l.text.Reset()
}

// finish drops trailing separator and binds ids found after last text.
func (l *layout) finish() {
	if n := len(l.lines); n > 0 && l.lines[n-1] == "" {
		l.lines = l.lines[:n-1]
	}
	last := max(len(l.lines)-1, 0)
	for _, id := range l.pending {
		if _, dup := l.anchors[id]; !dup {
			l.anchors[id] = last
		}
	}
	l.pending = nil
}

// wrap breaks text at word boundaries, words longer than width are split.
func wrap(text string, width int) []string {
	var (
		lines []string
		cur   strings.Builder
		n     int
	)
	emit := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		n = 0
	}
	for _, w := range strings.Fields(text) {
		for utf8.RuneCountInString(w) > width {
			if n > 0 {
				emit()
			}
			runes := []rune(w)
			lines = append(lines, string(runes[:width]))
			w = string(runes[width:])
		}
		wl := utf8.RuneCountInString(w)
		if n > 0 && n+1+wl > width {
			emit()
		}
		if n > 0 {
			cur.WriteByte(' ')
			n++
		}
		cur.WriteString(w)
		n += wl
	}
	if n > 0 {
		emit()
	}
	return lines
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key && a.Namespace == "" {
			return a.Val
		}
	}
	return ""
}
