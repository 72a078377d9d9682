package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"epubr/epub/epubtest"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range slices.Sorted(maps.Keys(files)) {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte(files[name])); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func readerOf(t *testing.T, data []byte) *zip.Reader {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	return r
}

func TestWalk(t *testing.T) {
	r := readerOf(t, zipOf(t, map[string]string{
		"OEBPS/ch1.xhtml":        "one",
		"OEBPS/ch2.xhtml":        "two",
		"META-INF/container.xml": "container",
		"mimetype":               "application/epub+zip",
	}))

	tests := []struct {
		prefix string
		want   []string
	}{
		{"OEBPS/", []string{"OEBPS/ch1.xhtml", "OEBPS/ch2.xhtml"}},
		{"META-INF/", []string{"META-INF/container.xml"}},
		{"oebps/", nil},
		{"nothing/", nil},
		{"", []string{"META-INF/container.xml", "OEBPS/ch1.xhtml", "OEBPS/ch2.xhtml", "mimetype"}},
	}
	for _, tt := range tests {
		t.Run("prefix "+tt.prefix, func(t *testing.T) {
			var visited []string
			if err := Walk(r, tt.prefix, func(f *zip.File) error {
				visited = append(visited, f.Name)
				return nil
			}); err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if !slices.Equal(visited, tt.want) {
				t.Errorf("visited = %v, want %v", visited, tt.want)
			}
		})
	}

	t.Run("walkFn error stops processing", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := Walk(r, "", func(*zip.File) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) || calls != 1 {
			t.Errorf("Walk() = %v after %d calls", err, calls)
		}
	})
}

func TestWalk_UnsafePaths(t *testing.T) {
	for _, name := range []string{"../evil.txt", "OEBPS/../../evil.txt", "/etc/passwd"} {
		t.Run(name, func(t *testing.T) {
			data := zipOf(t, map[string]string{name: "x", "ok.txt": "y"})
			// reader may already complain depending on zipinsecurepath setting
			r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
			if r == nil {
				t.Skipf("zip.NewReader() refused archive: %v", err)
			}
			if err := Walk(r, "", func(*zip.File) error { return nil }); err == nil {
				t.Error("expected unsafe path error")
			}
		})
	}
}

func TestIsSafePath(t *testing.T) {
	tests := map[string]bool{
		"OEBPS/ch1.xhtml":   true,
		"a/..b/c":           true,
		"a/../b":            false,
		"..":                false,
		"/abs":              false,
		`\windows\style`:    false,
		"META-INF/cont.xml": true,
	}
	for name, want := range tests {
		if got := isSafePath(name); got != want {
			t.Errorf("isSafePath(%q) = %v, want %v", name, got, want)
		}
	}
}

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(_ context.Context, addr string) ([]byte, error) {
	if d, ok := m[addr]; ok {
		return d, nil
	}
	return nil, os.ErrNotExist
}

func packagedBook(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := epubtest.New(2, 1).WriteZip(&buf); err != nil {
		t.Fatalf("WriteZip() error = %v", err)
	}
	return buf.Bytes()
}

func localPath(t *testing.T, base string) string {
	t.Helper()
	u, err := url.Parse(base)
	if err != nil {
		t.Fatalf("bad base %q: %v", base, err)
	}
	if u.Scheme != "file" || !strings.HasSuffix(u.Path, "/") {
		t.Fatalf("base %q is not a file folder address", base)
	}
	return filepath.FromSlash(u.Path)
}

func TestExtractor_Local(t *testing.T) {
	src := filepath.Join(t.TempDir(), "book.epub")
	if err := os.WriteFile(src, packagedBook(t), 0644); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor(t.TempDir(), nil, zaptest.NewLogger(t))
	base, err := e.Unarchive(context.Background(), "file://"+filepath.ToSlash(src)+"/")
	if err != nil {
		t.Fatalf("Unarchive() error = %v", err)
	}

	dir := localPath(t, base)
	for _, name := range []string{"META-INF/container.xml", "OEBPS/content.opf", "OEBPS/ch2.xhtml", "mimetype"} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			t.Errorf("%s not extracted: %v", name, err)
		}
	}

	if want := e.Folder("file://" + filepath.ToSlash(src)); filepath.Clean(dir) != want {
		t.Errorf("extracted to %s, want %s", dir, want)
	}

	// stale files are dropped on repeated extraction
	stale := filepath.Join(dir, "stale.txt")
	if err := os.WriteFile(stale, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	again, err := e.Unarchive(context.Background(), "file://"+filepath.ToSlash(src))
	if err != nil || again != base {
		t.Fatalf("second Unarchive() = %q, %v", again, err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale file survived: %v", err)
	}

	if err := e.Remove("file://" + filepath.ToSlash(src)); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("extraction directory survived Remove(): %v", err)
	}
}

func TestExtractor_Remote(t *testing.T) {
	const addr = "http://example.com/library/book.epub"
	e := NewExtractor(t.TempDir(), mapFetcher{addr: packagedBook(t)}, zaptest.NewLogger(t))

	base, err := e.Unarchive(context.Background(), addr+"/")
	if err != nil {
		t.Fatalf("Unarchive() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(localPath(t, base), "OEBPS", "ch1.xhtml"))
	if err != nil || !bytes.Contains(data, []byte("Chapter 1")) {
		t.Errorf("extracted chapter = %q, %v", data, err)
	}
}

func TestExtractor_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not a zip", []byte("plain text"), ErrNotBook},
		{"wrong mimetype", zipOf(t, map[string]string{"mimetype": "application/zip", "a.txt": "a"}), ErrNotBook},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const addr = "http://example.com/x.zip"
			e := NewExtractor(t.TempDir(), mapFetcher{addr: tt.data}, zaptest.NewLogger(t))
			if _, err := e.Unarchive(context.Background(), addr); !errors.Is(err, tt.want) {
				t.Errorf("Unarchive() error = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("missing", func(t *testing.T) {
		e := NewExtractor(t.TempDir(), mapFetcher{}, zaptest.NewLogger(t))
		if _, err := e.Unarchive(context.Background(), "http://example.com/none.epub/"); err == nil {
			t.Error("expected error")
		}
	})
}
