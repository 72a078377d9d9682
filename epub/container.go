package epub

import (
	"fmt"
	"path"
	"strings"

	"github.com/beevik/etree"
)

// Paths locates package document inside the book.
type Paths struct {
	// BasePath is folder holding the package document, relative to book
	// base, either empty or ending with "/".
	BasePath string
	// PackagePath is package document file name inside BasePath.
	PackagePath string
}

// ParseContainer extracts package document location from container
// descriptor. The first rootfile wins.
func ParseContainer(doc *etree.Document) (Paths, error) {
	root := doc.Root()
	if root == nil || root.Tag != "container" {
		return Paths{}, fmt.Errorf("%w: unexpected root element in container", ErrBadDocument)
	}

	var full string
	if rootfiles := root.SelectElement("rootfiles"); rootfiles != nil {
		for _, rf := range rootfiles.SelectElements("rootfile") {
			if full = strings.TrimSpace(rf.SelectAttrValue("full-path", "")); full != "" {
				break
			}
		}
	}
	if full == "" {
		return Paths{}, ErrNoRootfile
	}

	full = strings.TrimPrefix(full, "/")
	dir, file := path.Split(full)
	return Paths{BasePath: dir, PackagePath: file}, nil
}
