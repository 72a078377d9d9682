package book

import (
	"strings"
	"testing"
)

func TestResolver_Resolve(t *testing.T) {
	r := Resolver{Origin: "https://reader.example.com", Location: "/app/read/index.html"}
	tests := []struct {
		raw, want string
	}{
		{"http://books.example.com/moby", "http://books.example.com/moby/"},
		{"http://books.example.com/moby/", "http://books.example.com/moby/"},
		{"/library/moby", "https://reader.example.com/library/moby/"},
		{"moby", "https://reader.example.com/app/read/moby/"},
		{"shelf/moby.epub", "https://reader.example.com/app/read/shelf/moby.epub/"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := r.Resolve(tt.raw); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLocalResolver(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	r, err := LocalResolver()
	if err != nil {
		t.Fatalf("LocalResolver() error = %v", err)
	}
	got := r.Resolve("book")
	if !strings.HasPrefix(got, "file:///") || !strings.HasSuffix(got, "/book/") {
		t.Errorf("Resolve() = %q", got)
	}
}

func TestIsContained(t *testing.T) {
	tests := map[string]bool{
		"http://x/book.epub/":     true,
		"file:///tmp/Book.EPUB/":  true,
		"http://x/a.zip?token=1/": true,
		"http://x/book/":          false,
		"http://x/book.epubx/":    false,
	}
	for addr, want := range tests {
		if got := isContained(addr); got != want {
			t.Errorf("isContained(%q) = %v, want %v", addr, got, want)
		}
	}
}
