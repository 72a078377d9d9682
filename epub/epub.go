// Package epub understands structure documents of packaged EPUB books: the
// container descriptor, the package document and the table of contents in its
// NCX or navigation document form. Parsers work on already fetched documents
// and never touch the network.
package epub

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// ContainerPath is location of container descriptor relative to book base.
const ContainerPath = "META-INF/container.xml"

var (
	ErrBadDocument      = errors.New("malformed structure document")
	ErrNoRootfile       = errors.New("container has no rootfile")
	ErrNoManifest       = errors.New("package has no manifest")
	ErrNoSpine          = errors.New("package has no spine")
	ErrUnknownSpineItem = errors.New("spine references unknown manifest item")
	ErrNoTOC            = errors.New("book has no table of contents")
)

// ReadDocument parses XML document honoring its declared encoding.
func ReadDocument(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if _, err := doc.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDocument, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrBadDocument)
	}
	return doc, nil
}

// ResolveHref makes href absolute against base. Base is either a folder
// (ending with "/") or a document address.
func ResolveHref(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return folder(base) + href
	}
	r, err := url.Parse(href)
	if err != nil {
		return folder(base) + href
	}
	return b.ResolveReference(r).String()
}

func folder(addr string) string {
	if i := strings.LastIndex(addr, "/"); i >= 0 {
		return addr[:i+1]
	}
	return ""
}

// SplitFragment separates address from optional fragment.
func SplitFragment(link string) (addr, fragment string) {
	addr, fragment, _ = strings.Cut(link, "#")
	return addr, fragment
}
