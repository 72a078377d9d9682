package epub

import (
	"fmt"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/language"
)

const (
	mediaTypeNCX = "application/x-dtbncx+xml"
	propNav      = "nav"
	propCover    = "cover-image"
)

// Item is manifest resource.
type Item struct {
	ID         string   `yaml:"id"`
	Href       string   `yaml:"href"` // absolute
	MediaType  string   `yaml:"media_type"`
	Properties []string `yaml:"properties,omitempty"`
}

// HasProperty reports whether item declares property.
func (i Item) HasProperty(p string) bool {
	return slices.Contains(i.Properties, p)
}

// SpineItem is single entry of reading order.
type SpineItem struct {
	ID     string `yaml:"id"`
	Href   string `yaml:"href"` // absolute
	Index  int    `yaml:"index"`
	Linear bool   `yaml:"linear"`
}

// Package is parsed package document.
type Package struct {
	Manifest        map[string]Item
	Spine           []SpineItem
	SpineIndexByURL map[string]int
	Metadata        map[string]string
	// CoverID and TocID are manifest ids, empty when book does not declare
	// them.
	CoverID string
	TocID   string
	// CoverPath and TocPath are hrefs as written in manifest.
	CoverPath string
	TocPath   string
}

// CoverURL returns absolute cover address, same as manifest one.
func (p *Package) CoverURL() string {
	if p.CoverID == "" {
		return ""
	}
	return p.Manifest[p.CoverID].Href
}

// TocURL returns absolute address of navigation document.
func (p *Package) TocURL() string {
	if p.TocID == "" {
		return ""
	}
	return p.Manifest[p.TocID].Href
}

// ParsePackage builds book structure from package document. All resource
// addresses are made absolute against contentsPath, which is the folder
// holding the package document.
func ParsePackage(doc *etree.Document, contentsPath string) (*Package, error) {
	root := doc.Root()
	if root == nil || root.Tag != "package" {
		return nil, fmt.Errorf("%w: unexpected root element in package", ErrBadDocument)
	}

	manifestEl := root.SelectElement("manifest")
	if manifestEl == nil {
		return nil, ErrNoManifest
	}
	spineEl := root.SelectElement("spine")
	if spineEl == nil {
		return nil, ErrNoSpine
	}

	pkg := &Package{
		Manifest:        make(map[string]Item),
		SpineIndexByURL: make(map[string]int),
		Metadata:        make(map[string]string),
	}

	relative := make(map[string]string)
	for _, el := range manifestEl.SelectElements("item") {
		id := el.SelectAttrValue("id", "")
		href := el.SelectAttrValue("href", "")
		if id == "" || href == "" {
			continue
		}
		relative[id] = href
		pkg.Manifest[id] = Item{
			ID:         id,
			Href:       ResolveHref(contentsPath, href),
			MediaType:  el.SelectAttrValue("media-type", ""),
			Properties: strings.Fields(el.SelectAttrValue("properties", "")),
		}
	}

	for _, el := range spineEl.SelectElements("itemref") {
		idref := el.SelectAttrValue("idref", "")
		item, ok := pkg.Manifest[idref]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSpineItem, idref)
		}
		si := SpineItem{
			ID:     idref,
			Href:   item.Href,
			Index:  len(pkg.Spine),
			Linear: el.SelectAttrValue("linear", "yes") != "no",
		}
		pkg.Spine = append(pkg.Spine, si)
		if _, dup := pkg.SpineIndexByURL[si.Href]; !dup {
			pkg.SpineIndexByURL[si.Href] = si.Index
		}
	}
	if len(pkg.Spine) == 0 {
		return nil, ErrNoSpine
	}

	if md := root.SelectElement("metadata"); md != nil {
		parseMetadata(md, pkg.Metadata)
	}

	pkg.CoverID = findCover(root, pkg.Manifest)
	pkg.TocID = findTOC(spineEl, pkg.Manifest)
	pkg.CoverPath = relative[pkg.CoverID]
	pkg.TocPath = relative[pkg.TocID]
	return pkg, nil
}

var dcFields = map[string]string{
	"title":       "title",
	"creator":     "creator",
	"description": "description",
	"date":        "pubdate",
	"publisher":   "publisher",
	"identifier":  "identifier",
	"language":    "language",
	"rights":      "rights",
	"subject":     "subject",
}

var metaProperties = map[string]string{
	"dcterms:modified":       "modified_date",
	"rendition:layout":       "layout",
	"rendition:orientation":  "orientation",
	"rendition:spread":       "spread",
	"rendition:flow":         "flow",
	"media:active-class":     "media_active_class",
	"ibooks:specified-fonts": "specified_fonts",
}

func parseMetadata(md *etree.Element, out map[string]string) {
	// some books wrap everything into dc-metadata
	children := md.ChildElements()
	if wrapped := md.SelectElement("dc-metadata"); wrapped != nil {
		children = append(children, wrapped.ChildElements()...)
	}

	for _, el := range children {
		if key, ok := dcFields[el.Tag]; ok {
			if _, seen := out[key]; seen {
				continue
			}
			if value := strings.TrimSpace(el.Text()); value != "" {
				out[key] = value
			}
			continue
		}
		if el.Tag != "meta" {
			continue
		}
		if key, ok := metaProperties[el.SelectAttrValue("property", "")]; ok {
			if value := strings.TrimSpace(el.Text()); value != "" {
				out[key] = value
			}
		}
	}

	if lang, ok := out["language"]; ok {
		if tag, err := language.Parse(lang); err == nil {
			out["language"] = tag.String()
		}
	}
}

func findCover(root *etree.Element, manifest map[string]Item) string {
	if md := root.SelectElement("metadata"); md != nil {
		for _, el := range md.SelectElements("meta") {
			if el.SelectAttrValue("name", "") != "cover" {
				continue
			}
			if id := el.SelectAttrValue("content", ""); id != "" {
				if _, ok := manifest[id]; ok {
					return id
				}
			}
		}
	}
	return findItem(manifest, func(it Item) bool { return it.HasProperty(propCover) })
}

func findTOC(spine *etree.Element, manifest map[string]Item) string {
	if id := spine.SelectAttrValue("toc", ""); id != "" {
		if _, ok := manifest[id]; ok {
			return id
		}
	}
	if id := findItem(manifest, func(it Item) bool { return it.HasProperty(propNav) }); id != "" {
		return id
	}
	return findItem(manifest, func(it Item) bool { return it.MediaType == mediaTypeNCX })
}

// findItem returns smallest matching id so the choice does not depend on map
// iteration order.
func findItem(manifest map[string]Item, match func(Item) bool) string {
	var found string
	for id, it := range manifest {
		if match(it) && (found == "" || id < found) {
			found = id
		}
	}
	return found
}
