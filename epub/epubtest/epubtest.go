// Package epubtest builds small but complete EPUB books for tests.
package epubtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/beevik/etree"
)

const mimetypeContent = "application/epub+zip"

// CoverImage is minimal PNG used as book cover.
var CoverImage = []byte{
	0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
}

// Chapter is single content document. Paragraph i gets id "<ID>-p<i+1>".
type Chapter struct {
	ID         string
	Title      string
	Paragraphs []string
}

// File returns chapter file name inside content folder.
func (c Chapter) File() string { return c.ID + ".xhtml" }

// Book describes generated book.
type Book struct {
	Title    string
	Creator  string
	Language string
	// Folder holding package document, empty puts everything at the root.
	Folder   string
	Chapters []Chapter
	// NoCover drops cover image from manifest.
	NoCover bool
	// CoverHref overrides manifest href of cover image. The image itself
	// always lives in images/cover.png under content folder.
	CoverHref string
	// Nav produces EPUB3 navigation document instead of NCX.
	Nav bool
	// NoTOC leaves table of contents out of the package.
	NoTOC bool
}

// New returns book with n chapters, each having paras paragraphs.
func New(n, paras int) *Book {
	b := &Book{
		Title:    "Test Book",
		Creator:  "Jane Doe",
		Language: "en-us",
		Folder:   "OEBPS",
	}
	for i := range n {
		ch := Chapter{ID: fmt.Sprintf("ch%d", i+1), Title: fmt.Sprintf("Chapter %d", i+1)}
		for j := range paras {
			ch.Paragraphs = append(ch.Paragraphs,
				fmt.Sprintf("Paragraph %d of chapter %d. Lorem ipsum dolor sit amet, consectetur adipiscing elit.", j+1, i+1))
		}
		b.Chapters = append(b.Chapters, ch)
	}
	return b
}

func (b *Book) contentPath(name string) string {
	return path.Join(b.Folder, name)
}

// PackagePath returns package document location relative to book root.
func (b *Book) PackagePath() string {
	return b.contentPath("content.opf")
}

// ContentPath returns location of named content file relative to book root.
func (b *Book) ContentPath(name string) string {
	return b.contentPath(name)
}

// Files renders every book file keyed by path relative to book root.
func (b *Book) Files() (map[string][]byte, error) {
	files := map[string][]byte{"mimetype": []byte(mimetypeContent)}

	add := func(name string, doc *etree.Document) error {
		doc.Indent(2)
		var buf bytes.Buffer
		if _, err := doc.WriteTo(&buf); err != nil {
			return fmt.Errorf("unable to write %s: %w", name, err)
		}
		files[name] = buf.Bytes()
		return nil
	}

	if err := add("META-INF/container.xml", b.container()); err != nil {
		return nil, err
	}
	if err := add(b.PackagePath(), b.opf()); err != nil {
		return nil, err
	}
	if !b.NoTOC {
		if b.Nav {
			if err := add(b.contentPath("nav.xhtml"), b.nav()); err != nil {
				return nil, err
			}
		} else {
			if err := add(b.contentPath("toc.ncx"), b.ncx()); err != nil {
				return nil, err
			}
		}
	}
	for _, ch := range b.Chapters {
		if err := add(b.contentPath(ch.File()), b.chapter(ch)); err != nil {
			return nil, err
		}
	}
	if !b.NoCover {
		files[b.contentPath("images/cover.png")] = CoverImage
	}
	return files, nil
}

// WriteDir unpacks book into dir.
func (b *Book) WriteDir(dir string) error {
	files, err := b.Files()
	if err != nil {
		return err
	}
	for name, data := range files {
		dst := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return err
		}
	}
	return nil
}

// WriteZip writes packaged book, mimetype goes first and uncompressed.
func (b *Book) WriteZip(w io.Writer) error {
	files, err := b.Files()
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	mw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return err
	}
	if _, err := io.WriteString(mw, mimetypeContent); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(files)) {
		if name == "mimetype" {
			continue
		}
		fw, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(files[name]); err != nil {
			return err
		}
	}
	return zw.Close()
}

func newDoc() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc
}

func (b *Book) container() *etree.Document {
	doc := newDoc()
	container := doc.CreateElement("container")
	container.CreateAttr("version", "1.0")
	container.CreateAttr("xmlns", "urn:oasis:names:tc:opendocument:xmlns:container")

	rootfile := container.CreateElement("rootfiles").CreateElement("rootfile")
	rootfile.CreateAttr("full-path", b.PackagePath())
	rootfile.CreateAttr("media-type", "application/oebps-package+xml")
	return doc
}

func (b *Book) opf() *etree.Document {
	doc := newDoc()
	pkg := doc.CreateElement("package")
	pkg.CreateAttr("xmlns", "http://www.idpf.org/2007/opf")
	pkg.CreateAttr("unique-identifier", "BookId")
	if b.Nav {
		pkg.CreateAttr("version", "3.0")
	} else {
		pkg.CreateAttr("version", "2.0")
	}

	md := pkg.CreateElement("metadata")
	md.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	md.CreateAttr("xmlns:opf", "http://www.idpf.org/2007/opf")
	md.CreateElement("dc:title").SetText(b.Title)
	id := md.CreateElement("dc:identifier")
	id.CreateAttr("id", "BookId")
	id.SetText("urn:uuid:0b7e1a8c-6a4c-4d7e-9a4e-3c1f2e9d5b10")
	md.CreateElement("dc:language").SetText(b.Language)
	md.CreateElement("dc:creator").SetText(b.Creator)
	if b.Nav {
		mod := md.CreateElement("meta")
		mod.CreateAttr("property", "dcterms:modified")
		mod.SetText("2024-01-01T00:00:00Z")
	}
	if !b.NoCover {
		meta := md.CreateElement("meta")
		meta.CreateAttr("name", "cover")
		meta.CreateAttr("content", "cover-image")
	}

	manifest := pkg.CreateElement("manifest")
	item := func(id, href, mediaType, props string) {
		it := manifest.CreateElement("item")
		it.CreateAttr("id", id)
		it.CreateAttr("href", href)
		it.CreateAttr("media-type", mediaType)
		if props != "" {
			it.CreateAttr("properties", props)
		}
	}
	if !b.NoTOC {
		if b.Nav {
			item("nav", "nav.xhtml", "application/xhtml+xml", "nav")
		} else {
			item("ncx", "toc.ncx", "application/x-dtbncx+xml", "")
		}
	}
	if !b.NoCover {
		props := ""
		if b.Nav {
			props = "cover-image"
		}
		href := b.CoverHref
		if href == "" {
			href = "images/cover.png"
		}
		item("cover-image", href, "image/png", props)
	}
	for _, ch := range b.Chapters {
		item(ch.ID, ch.File(), "application/xhtml+xml", "")
	}

	spine := pkg.CreateElement("spine")
	if !b.NoTOC && !b.Nav {
		spine.CreateAttr("toc", "ncx")
	}
	for _, ch := range b.Chapters {
		spine.CreateElement("itemref").CreateAttr("idref", ch.ID)
	}
	return doc
}

func (b *Book) ncx() *etree.Document {
	doc := newDoc()
	ncx := doc.CreateElement("ncx")
	ncx.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	ncx.CreateAttr("version", "2005-1")
	ncx.CreateElement("docTitle").CreateElement("text").SetText(b.Title)

	navMap := ncx.CreateElement("navMap")
	playOrder := 0
	point := func(parent *etree.Element, id, label, src string) *etree.Element {
		playOrder++
		np := parent.CreateElement("navPoint")
		np.CreateAttr("id", id)
		np.CreateAttr("playOrder", fmt.Sprintf("%d", playOrder))
		np.CreateElement("navLabel").CreateElement("text").SetText(label)
		np.CreateElement("content").CreateAttr("src", src)
		return np
	}
	for _, ch := range b.Chapters {
		np := point(navMap, "nav-"+ch.ID, ch.Title, ch.File())
		if len(ch.Paragraphs) > 1 {
			point(np, "nav-"+ch.ID+"-p2", ch.Title+" (continued)", ch.File()+"#"+ch.ID+"-p2")
		}
	}
	return doc
}

func (b *Book) nav() *etree.Document {
	doc := newDoc()
	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("xmlns:epub", "http://www.idpf.org/2007/ops")
	html.CreateElement("head").CreateElement("title").SetText("Table of Contents")

	nav := html.CreateElement("body").CreateElement("nav")
	nav.CreateAttr("epub:type", "toc")
	nav.CreateAttr("id", "toc")
	ol := nav.CreateElement("ol")
	for _, ch := range b.Chapters {
		li := ol.CreateElement("li")
		a := li.CreateElement("a")
		a.CreateAttr("href", ch.File())
		a.SetText(ch.Title)
		if len(ch.Paragraphs) > 1 {
			sub := li.CreateElement("ol").CreateElement("li").CreateElement("a")
			sub.CreateAttr("href", ch.File()+"#"+ch.ID+"-p2")
			sub.SetText(ch.Title + " (continued)")
		}
	}
	return doc
}

func (b *Book) chapter(ch Chapter) *etree.Document {
	doc := newDoc()
	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateElement("head").CreateElement("title").SetText(ch.Title)

	body := html.CreateElement("body")
	h := body.CreateElement("h1")
	h.CreateAttr("id", ch.ID+"-title")
	h.SetText(ch.Title)
	for i, text := range ch.Paragraphs {
		p := body.CreateElement("p")
		p.CreateAttr("id", fmt.Sprintf("%s-p%d", ch.ID, i+1))
		p.SetText(strings.TrimSpace(text))
	}
	return doc
}
