package book

import (
	"epubr/epub"
)

// Contents is parsed book structure. It is immutable once loaded and is
// persisted as is.
type Contents struct {
	// ContentsPath is absolute address of folder holding package document,
	// all relative resource references are resolved against it.
	ContentsPath string `yaml:"contents_path"`
	PackageURL   string `yaml:"package_url"`
	TocURL       string `yaml:"toc_url"`

	Manifest        map[string]epub.Item `yaml:"manifest"`
	Spine           []epub.SpineItem     `yaml:"spine"`
	SpineIndexByURL map[string]int       `yaml:"spine_index"`
	Metadata        map[string]string    `yaml:"metadata"`
	Cover           string               `yaml:"cover"`
	TOC             []epub.TOCEntry      `yaml:"toc"`
}

// Reindex rebuilds reverse spine index.
func (c *Contents) Reindex() {
	c.SpineIndexByURL = make(map[string]int, len(c.Spine))
	for i, si := range c.Spine {
		if _, dup := c.SpineIndexByURL[si.Href]; !dup {
			c.SpineIndexByURL[si.Href] = i
		}
	}
}

// complete reports whether every facet required to skip parsing is present.
func (c *Contents) complete() bool {
	return c != nil &&
		len(c.Manifest) > 0 &&
		len(c.Spine) > 0 &&
		len(c.Metadata) > 0 &&
		c.Cover != "" &&
		len(c.TOC) > 0 &&
		len(c.SpineIndexByURL) > 0
}

func hrefSet(manifest map[string]epub.Item) map[string]struct{} {
	set := make(map[string]struct{}, len(manifest))
	for _, it := range manifest {
		set[it.Href] = struct{}{}
	}
	return set
}
