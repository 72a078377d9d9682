package epub

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// TOCEntry is table of contents node.
type TOCEntry struct {
	ID    string `yaml:"id,omitempty"`
	Label string `yaml:"label"`
	// Href is absolute and may carry fragment.
	Href string `yaml:"href"`
	// SpinePos is index of referenced spine item or -1 when entry points
	// outside of reading order.
	SpinePos int        `yaml:"spine_pos"`
	Children []TOCEntry `yaml:"children,omitempty"`
}

// ParseTOC reads table of contents from either NCX or navigation document.
// base is the address the document was loaded from, spineIndex maps
// absolute content addresses to spine positions.
func ParseTOC(doc *etree.Document, base string, spineIndex map[string]int) ([]TOCEntry, error) {
	root := doc.Root()
	if root == nil {
		return nil, ErrBadDocument
	}

	p := tocParser{base: base, index: spineIndex}
	switch root.Tag {
	case "ncx":
		navMap := root.SelectElement("navMap")
		if navMap == nil {
			return nil, fmt.Errorf("%w: ncx has no navMap", ErrNoTOC)
		}
		return p.navPoints(navMap), nil
	case "html":
		nav := findNav(root)
		if nav == nil {
			return nil, fmt.Errorf("%w: navigation document has no toc nav", ErrNoTOC)
		}
		if ol := nav.SelectElement("ol"); ol != nil {
			return p.listItems(ol), nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unexpected root element %q in toc", ErrBadDocument, root.Tag)
	}
}

type tocParser struct {
	base  string
	index map[string]int
}

func (p *tocParser) entry(id, label, href string) TOCEntry {
	e := TOCEntry{ID: id, Label: strings.Join(strings.Fields(label), " "), SpinePos: -1}
	if href != "" {
		e.Href = ResolveHref(p.base, href)
		addr, _ := SplitFragment(e.Href)
		if pos, ok := p.index[addr]; ok {
			e.SpinePos = pos
		}
	}
	return e
}

func (p *tocParser) navPoints(parent *etree.Element) []TOCEntry {
	var out []TOCEntry
	for _, np := range parent.SelectElements("navPoint") {
		var label, src string
		if nl := np.SelectElement("navLabel"); nl != nil {
			if t := nl.SelectElement("text"); t != nil {
				label = t.Text()
			}
		}
		if c := np.SelectElement("content"); c != nil {
			src = c.SelectAttrValue("src", "")
		}
		e := p.entry(np.SelectAttrValue("id", ""), label, src)
		e.Children = p.navPoints(np)
		out = append(out, e)
	}
	return out
}

func (p *tocParser) listItems(ol *etree.Element) []TOCEntry {
	var out []TOCEntry
	for _, li := range ol.SelectElements("li") {
		var label, href string
		if a := li.SelectElement("a"); a != nil {
			label, href = textOf(a), a.SelectAttrValue("href", "")
		} else if span := li.SelectElement("span"); span != nil {
			label = textOf(span)
		}
		e := p.entry(li.SelectAttrValue("id", ""), label, href)
		if sub := li.SelectElement("ol"); sub != nil {
			e.Children = p.listItems(sub)
		}
		out = append(out, e)
	}
	return out
}

func findNav(root *etree.Element) *etree.Element {
	navs := root.FindElements("//nav")
	for _, nav := range navs {
		if nav.SelectAttrValue("epub:type", "") == "toc" {
			return nav
		}
	}
	if len(navs) > 0 {
		return navs[0]
	}
	return nil
}

func textOf(el *etree.Element) string {
	var sb strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			sb.WriteString(textOf(t))
		}
	}
	return sb.String()
}

// Flatten returns entries in document order.
func Flatten(entries []TOCEntry) []TOCEntry {
	var out []TOCEntry
	for _, e := range entries {
		out = append(out, e)
		out = append(out, Flatten(e.Children)...)
	}
	return out
}
