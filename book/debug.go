package book

import (
	"fmt"
	"strings"

	"epubr/epub"
	"epubr/utils/debug"
)

// String returns a tree-like debug representation of book structure.
func (c *Contents) String() string {
	if c == nil {
		return "<no contents>"
	}
	tw := debug.NewTreeWriter()

	tw.Line(0, "Book")
	tw.Line(1, "Package: %s", c.PackageURL)
	tw.Line(1, "Contents: %s", c.ContentsPath)
	if c.Cover != "" {
		tw.Line(1, "Cover: %s", c.rel(c.Cover))
	}

	if len(c.Metadata) > 0 {
		tw.Line(1, "Metadata:")
		tw.Fields(2, c.Metadata)
	}

	tw.Line(1, "Manifest: %d items", len(c.Manifest))

	tw.Line(1, "Spine: %d items", len(c.Spine))
	for _, si := range c.Spine {
		var flags []string
		if !si.Linear {
			flags = append(flags, "non-linear")
		}
		if it, ok := c.Manifest[si.ID]; ok && it.MediaType != "" {
			flags = append(flags, it.MediaType)
		}
		tw.Item(2, fmt.Sprintf("%d.", si.Index+1), "%s %s [%s]", si.ID, c.rel(si.Href), strings.Join(flags, ", "))
	}

	if len(c.TOC) > 0 {
		tw.Line(1, "TOC: %s", c.rel(c.TocURL))
		c.formatTOC(tw, 2, c.TOC)
	}
	return tw.String()
}

func (c *Contents) formatTOC(tw *debug.TreeWriter, depth int, entries []epub.TOCEntry) {
	for _, e := range entries {
		pos := "-"
		if e.SpinePos >= 0 {
			pos = fmt.Sprintf("%d", e.SpinePos+1)
		}
		tw.Item(depth, "-", "%q -> %s (%s)", e.Label, c.rel(e.Href), pos)
		c.formatTOC(tw, depth+1, e.Children)
	}
}

// rel shortens address to path relative to contents folder.
func (c *Contents) rel(addr string) string {
	if s, ok := strings.CutPrefix(addr, c.ContentsPath); ok && c.ContentsPath != "" {
		return s
	}
	return addr
}
